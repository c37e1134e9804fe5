// Command admin runs one-off maintenance tasks against the portal database.
//
//	admin [-config path] seed [-file seed.yaml]
//	admin [-config path] adduser -username u -password p -name n -email e -role r [-company-code C] [-department D]
//	admin [-config path] send-reminders
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/blackrosevn/Dev02-Reporting/config"
	"github.com/blackrosevn/Dev02-Reporting/internal/dto"
	"github.com/blackrosevn/Dev02-Reporting/internal/repository"
	"github.com/blackrosevn/Dev02-Reporting/internal/seed"
	"github.com/blackrosevn/Dev02-Reporting/internal/service"
	"github.com/blackrosevn/Dev02-Reporting/pkg/database"
	applogger "github.com/blackrosevn/Dev02-Reporting/pkg/logger"
	"github.com/blackrosevn/Dev02-Reporting/pkg/mail"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: admin [-config path] <seed|adduser|send-reminders> [flags]\n")
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "path to config file (default ./config/config.yaml)")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg, logger)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	repo := repository.NewRepository(db)

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "seed":
		err = runSeed(ctx, repo, args, logger)
	case "adduser":
		err = runAddUser(ctx, repo, args, logger)
	case "send-reminders":
		err = runReminders(ctx, cfg, repo, logger)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error(cmd+" failed", zap.Error(err))
		os.Exit(1)
	}
}

func openDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		return nil, err
	}
	return db, nil
}

func runSeed(ctx context.Context, repo *repository.Repository, args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	file := fs.String("file", "", "seed YAML (default: built-in Vinatex seed)")
	_ = fs.Parse(args)

	f, err := seed.Load(*file)
	if err != nil {
		return err
	}
	res, err := seed.Apply(ctx, repo, f, logger)
	if err != nil {
		return err
	}
	fmt.Printf("companies=%d users=%d templates=%d skipped=%d\n",
		res.Companies, res.Users, res.Templates, res.Skipped)
	return nil
}

func runAddUser(ctx context.Context, repo *repository.Repository, args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("adduser", flag.ExitOnError)
	var req dto.CreateUserRequest
	var companyCode, department string
	fs.StringVar(&req.Username, "username", "", "login name")
	fs.StringVar(&req.Password, "password", "", "initial password, at least 8 characters")
	fs.StringVar(&req.Name, "name", "", "display name")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Role, "role", "admin", "admin, department or member_unit")
	fs.StringVar(&companyCode, "company-code", "", "company code for member_unit users")
	fs.StringVar(&department, "department", "", "department for department users")
	_ = fs.Parse(args)

	if req.Username == "" || req.Name == "" || req.Email == "" {
		return fmt.Errorf("-username, -name and -email are required")
	}
	if len(req.Password) < 8 {
		return fmt.Errorf("-password must be at least 8 characters")
	}
	if companyCode != "" {
		req.CompanyCode = &companyCode
	}
	if department != "" {
		req.Department = &department
	}

	user, err := service.NewUserService(repo, logger).Create(ctx, &req)
	if err != nil {
		return err
	}
	fmt.Printf("created %s (%s) id=%s\n", user.Username, user.Role, user.ID)
	return nil
}

func runReminders(ctx context.Context, cfg *config.Config, repo *repository.Repository, logger *zap.Logger) error {
	mailer, err := mail.New(&cfg.Mail, logger)
	if err != nil {
		return err
	}
	res, err := service.NewNotificationService(repo, mailer, cfg.Reminder, logger).SendReminders(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("reports=%d notifications=%d skipped=%d emails_sent=%d emails_failed=%d\n",
		res.Reports, res.Notifications, res.Skipped, res.EmailsSent, res.EmailsFailed)
	return nil
}
