package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9090
auth:
  jwt_secret: "0123456789abcdef-file"
reminder:
  interval: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("REPORT_MAIL_DRIVER", "log")
	t.Setenv("REPORT_DB_NAME", "from_env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "from_env", cfg.Database.Name)
	assert.Equal(t, time.Hour, cfg.Reminder.Interval)
	assert.Equal(t, 24*time.Hour, cfg.Reminder.DedupeWindow)
	assert.Equal(t, "local", cfg.Storage.Driver)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:  ServerConfig{Port: 8080},
			Auth:    AuthConfig{JWTSecret: "0123456789abcdef"},
			Mail:    MailConfig{Driver: "log"},
			Storage: StorageConfig{Driver: "local"},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Auth.JWTSecret = "short"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Mail.Driver = "sendgrid"
	assert.Error(t, cfg.Validate(), "sendgrid without api key")

	cfg = base()
	cfg.Mail.Driver = "pigeon"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Storage.Driver = "sharepoint"
	assert.Error(t, cfg.Validate(), "sharepoint without credentials")
}
