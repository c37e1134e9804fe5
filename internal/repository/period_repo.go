package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/blackrosevn/Dev02-Reporting/internal/model"
)

// PeriodFilter narrows period listings.
type PeriodFilter struct {
	TemplateID string
	ActiveOnly bool
}

// PeriodRepository data access for report periods.
type PeriodRepository interface {
	Create(ctx context.Context, period *model.ReportPeriod) error
	GetByID(ctx context.Context, id string) (*model.ReportPeriod, error)
	GetByTemplateAndLabel(ctx context.Context, templateID, label string) (*model.ReportPeriod, error)
	List(ctx context.Context, filter PeriodFilter) ([]model.ReportPeriod, error)
}

type periodRepo struct {
	db *gorm.DB
}

// NewPeriodRepo creates a PeriodRepository.
func NewPeriodRepo(db *gorm.DB) PeriodRepository {
	return &periodRepo{db: db}
}

func (r *periodRepo) Create(ctx context.Context, period *model.ReportPeriod) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *periodRepo) GetByID(ctx context.Context, id string) (*model.ReportPeriod, error) {
	var p model.ReportPeriod
	err := r.db.WithContext(ctx).
		Preload("Template").
		Where("period_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *periodRepo) GetByTemplateAndLabel(ctx context.Context, templateID, label string) (*model.ReportPeriod, error) {
	var p model.ReportPeriod
	err := r.db.WithContext(ctx).
		Where("template_id = ? AND period = ?", templateID, label).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *periodRepo) List(ctx context.Context, filter PeriodFilter) ([]model.ReportPeriod, error) {
	var periods []model.ReportPeriod
	db := r.db.WithContext(ctx).Preload("Template")
	if filter.TemplateID != "" {
		db = db.Where("template_id = ?", filter.TemplateID)
	}
	if filter.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("due_date DESC").Find(&periods).Error
	return periods, err
}
