package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/blackrosevn/Dev02-Reporting/config"
	"github.com/blackrosevn/Dev02-Reporting/internal/repository"
	"github.com/blackrosevn/Dev02-Reporting/pkg/docstore"
	"github.com/blackrosevn/Dev02-Reporting/pkg/jwt"
	"github.com/blackrosevn/Dev02-Reporting/pkg/mail"
)

// TokenBlacklist revokes token ids. *redis.Client satisfies it.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Deps are the collaborators shared by the services. Blacklist may be nil.
type Deps struct {
	Config    *config.Config
	Repo      *repository.Repository
	JWT       *jwt.Manager
	Blacklist TokenBlacklist
	Mailer    mail.Sender
	Docs      docstore.Store
	Logger    *zap.Logger
}

// Service aggregates every service.
type Service struct {
	Auth         AuthService
	User         UserService
	Company      CompanyService
	Template     TemplateService
	Period       PeriodService
	Report       ReportService
	Notification NotificationService
	Dashboard    DashboardService
	Export       ExportService
	Calendar     CalendarService
	Audit        AuditService
}

// NewService wires the aggregate.
func NewService(d Deps) *Service {
	policy := newAccessPolicy(d.Repo)
	notifications := NewNotificationService(d.Repo, d.Mailer, d.Config.Reminder, d.Logger)

	return &Service{
		Auth:         NewAuthService(d.Repo, d.JWT, d.Blacklist, d.Logger),
		User:         NewUserService(d.Repo, d.Logger),
		Company:      NewCompanyService(d.Repo, d.Logger),
		Template:     NewTemplateService(d.Repo, d.Logger),
		Period:       NewPeriodService(d.Repo, d.Logger),
		Report:       NewReportService(d.Repo, policy, notifications, d.Docs, d.Logger),
		Notification: notifications,
		Dashboard:    NewDashboardService(d.Repo, policy, d.Logger),
		Export:       NewExportService(d.Repo, policy, d.Logger),
		Calendar:     NewCalendarService(d.Repo, policy, d.Config.Server.BaseURL, d.Logger),
		Audit:        NewAuditService(d.Repo, d.Logger),
	}
}

// isDuplicate reports a unique-key violation. The database layer runs gorm
// with TranslateError, so driver errors arrive as gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
