package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/blackrosevn/Dev02-Reporting/internal/model"
)

// AuditLogRepository append-only access to audit_logs.
type AuditLogRepository interface {
	Create(ctx context.Context, log *model.AuditLog) error
	// ListRecent returns the newest entries first.
	ListRecent(ctx context.Context, limit int) ([]model.AuditLog, error)
}

type auditLogRepo struct {
	db *gorm.DB
}

// NewAuditLogRepo creates an AuditLogRepository.
func NewAuditLogRepo(db *gorm.DB) AuditLogRepository {
	return &auditLogRepo{db: db}
}

func (r *auditLogRepo) Create(ctx context.Context, log *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *auditLogRepo) ListRecent(ctx context.Context, limit int) ([]model.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logs []model.AuditLog
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
