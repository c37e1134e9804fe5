package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Mail     MailConfig     `mapstructure:"mail"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Reminder ReminderConfig `mapstructure:"reminder"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig HTTP server settings.
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
	// MaxUploadMB caps request bodies, including spreadsheet uploads.
	MaxUploadMB int64 `mapstructure:"max_upload_mb"`
	RateLimit   int   `mapstructure:"rate_limit"` // requests per minute per IP on /auth; 0 disables
}

// CORSConfig allowed origins for the dashboard.
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL settings.
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
	LogSQL          bool   `mapstructure:"log_sql"`
}

// DSN builds the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig token blacklist, rate limiting and the reminder lock.
// An empty Addr runs without Redis.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT settings.
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

// MailConfig selects and configures the outbound email driver.
type MailConfig struct {
	Driver         string `mapstructure:"driver"` // smtp | sendgrid | log
	SMTPHost       string `mapstructure:"smtp_host"`
	SMTPPort       int    `mapstructure:"smtp_port"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	SendgridAPIKey string `mapstructure:"sendgrid_api_key"`
	From           string `mapstructure:"from"`
	FromName       string `mapstructure:"from_name"`
	SubjectPrefix  string `mapstructure:"subject_prefix"`
}

// StorageConfig selects where submitted workbooks are archived.
type StorageConfig struct {
	Driver     string           `mapstructure:"driver"` // local | sharepoint
	LocalDir   string           `mapstructure:"local_dir"`
	BaseURL    string           `mapstructure:"base_url"`
	SharePoint SharePointConfig `mapstructure:"sharepoint"`
}

// SharePointConfig Microsoft Graph app registration.
type SharePointConfig struct {
	TenantID     string        `mapstructure:"tenant_id"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	SiteID       string        `mapstructure:"site_id"`
	DriveID      string        `mapstructure:"drive_id"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// ReminderConfig periodic reminder sweep.
type ReminderConfig struct {
	Interval     time.Duration `mapstructure:"interval"` // 0 disables the in-process timer
	DedupeWindow time.Duration `mapstructure:"dedupe_window"`
	LockTTL      time.Duration `mapstructure:"lock_ttl"`
}

// LogConfig zap and error reporting.
type LogConfig struct {
	Level        string `mapstructure:"level"`
	Format       string `mapstructure:"format"`
	RollbarToken string `mapstructure:"rollbar_token"`
	Environment  string `mapstructure:"environment"`
}

// Load reads configuration.
// Priority: environment > config file > defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── Defaults ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.max_upload_mb", 10)
	v.SetDefault("server.rate_limit", 20)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "reporting")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Ho_Chi_Minh")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)
	v.SetDefault("db.log_sql", false)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "30m")
	v.SetDefault("auth.refresh_token_ttl", "168h")

	v.SetDefault("mail.driver", "log")
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.from", "noreply@localhost")
	v.SetDefault("mail.from_name", "Reporting Portal")
	v.SetDefault("mail.subject_prefix", "[Reporting]")

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_dir", "./data/documents")
	v.SetDefault("storage.base_url", "http://localhost:8080/files")
	v.SetDefault("storage.sharepoint.timeout", "30s")

	v.SetDefault("reminder.interval", "0")
	v.SetDefault("reminder.dedupe_window", "24h")
	v.SetDefault("reminder.lock_ttl", "5m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.environment", "development")

	// ── Config file ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── Environment ──
	v.SetEnvPrefix("REPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("invalid config: auth.jwt_secret is required")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("invalid config: auth.jwt_secret must be at least 16 characters")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port must be within 1-65535")
	}
	switch c.Mail.Driver {
	case "log":
	case "smtp":
		if c.Mail.SMTPHost == "" {
			return fmt.Errorf("invalid config: mail.smtp_host is required for the smtp driver")
		}
	case "sendgrid":
		if c.Mail.SendgridAPIKey == "" {
			return fmt.Errorf("invalid config: mail.sendgrid_api_key is required for the sendgrid driver")
		}
	default:
		return fmt.Errorf("invalid config: unknown mail.driver %q", c.Mail.Driver)
	}
	switch c.Storage.Driver {
	case "local":
	case "sharepoint":
		sp := c.Storage.SharePoint
		if sp.TenantID == "" || sp.ClientID == "" || sp.ClientSecret == "" || sp.SiteID == "" {
			return fmt.Errorf("invalid config: storage.sharepoint requires tenant_id, client_id, client_secret and site_id")
		}
	default:
		return fmt.Errorf("invalid config: unknown storage.driver %q", c.Storage.Driver)
	}
	return nil
}
