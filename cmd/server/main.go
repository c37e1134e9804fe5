package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/blackrosevn/Dev02-Reporting/config"
	"github.com/blackrosevn/Dev02-Reporting/internal/api/handler"
	"github.com/blackrosevn/Dev02-Reporting/internal/api/middleware"
	"github.com/blackrosevn/Dev02-Reporting/internal/api/router"
	"github.com/blackrosevn/Dev02-Reporting/internal/repository"
	"github.com/blackrosevn/Dev02-Reporting/internal/service"
	"github.com/blackrosevn/Dev02-Reporting/pkg/database"
	"github.com/blackrosevn/Dev02-Reporting/pkg/docstore"
	"github.com/blackrosevn/Dev02-Reporting/pkg/jwt"
	applogger "github.com/blackrosevn/Dev02-Reporting/pkg/logger"
	"github.com/blackrosevn/Dev02-Reporting/pkg/mail"
	"github.com/blackrosevn/Dev02-Reporting/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ./config/config.yaml)")
	flag.Parse()

	// 1. Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting reporting portal",
		zap.Int("port", cfg.Server.Port),
		zap.String("environment", cfg.Log.Environment),
	)

	// 3. Database and migrations
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	// 4. Redis is optional: without it there is no token revocation, no
	// rate limiting and no cross-instance reminder lock.
	var (
		rdb       *redis.Client
		blacklist service.TokenBlacklist
		locker    service.Locker
		limiter   middleware.Limiter
		tokenList middleware.Blacklist
	)
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, continuing without it", zap.Error(err))
			rdb = nil
		}
	}
	if rdb != nil {
		blacklist, locker, limiter, tokenList = rdb, rdb, rdb, rdb
	}

	// 5. Collaborators
	mailer, err := mail.New(&cfg.Mail, logger)
	if err != nil {
		logger.Fatal("init mailer", zap.Error(err))
	}
	docs, err := docstore.New(&cfg.Storage)
	if err != nil {
		logger.Fatal("init document store", zap.Error(err))
	}

	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(service.Deps{
		Config:    cfg,
		Repo:      repo,
		JWT:       jwtMgr,
		Blacklist: blacklist,
		Mailer:    mailer,
		Docs:      docs,
		Logger:    logger,
	})
	h := handler.NewHandler(svc, cfg.Server.MaxUploadMB<<20)

	engine := router.Setup(router.Deps{
		Config:    cfg,
		Handler:   h,
		JWT:       jwtMgr,
		Blacklist: tokenList,
		Limiter:   limiter,
		Logger:    logger,
	})

	// 7. Reminder sweep
	schedCtx, stopScheduler := context.WithCancel(context.Background())
	scheduler := service.NewReminderScheduler(svc.Notification, locker, cfg.Reminder, logger)
	go scheduler.Run(schedCtx)

	// 8. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))
	stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	sqlDB.Close()
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
