package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates every table repository.
type Repository struct {
	db *gorm.DB

	User         UserRepository
	Company      CompanyRepository
	Template     TemplateRepository
	Period       PeriodRepository
	Report       ReportRepository
	Notification NotificationRepository
	AuditLog     AuditLogRepository
}

// NewRepository builds the aggregate over db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		User:         NewUserRepo(db),
		Company:      NewCompanyRepo(db),
		Template:     NewTemplateRepo(db),
		Period:       NewPeriodRepo(db),
		Report:       NewReportRepo(db),
		Notification: NewNotificationRepo(db),
		AuditLog:     NewAuditLogRepo(db),
	}
}

// BeginTx starts a transaction. It returns a nil tx when the aggregate has
// no database, which is the case for in-memory test doubles; callers treat
// a nil tx as "run without a transaction".
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx returns an aggregate bound to tx, or r itself when tx is nil.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
