package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/blackrosevn/Dev02-Reporting/internal/model"
	"github.com/blackrosevn/Dev02-Reporting/internal/repository"
)

// AuditService read access to administrative overrides.
type AuditService interface {
	ListRecent(ctx context.Context, limit int) ([]model.AuditLog, error)
}

type auditService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAuditService creates an AuditService.
func NewAuditService(repo *repository.Repository, logger *zap.Logger) AuditService {
	return &auditService{repo: repo, logger: logger}
}

func (s *auditService) ListRecent(ctx context.Context, limit int) ([]model.AuditLog, error) {
	logs, err := s.repo.AuditLog.ListRecent(ctx, limit)
	if err != nil {
		s.logger.Error("list audit logs failed", zap.Error(err))
		return nil, err
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}
