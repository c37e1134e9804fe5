package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/blackrosevn/Dev02-Reporting/internal/model"
)

// TemplateRepository data access for report templates.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *model.ReportTemplate) error
	GetByID(ctx context.Context, id string) (*model.ReportTemplate, error)
	GetByName(ctx context.Context, name string) (*model.ReportTemplate, error)
	List(ctx context.Context, activeOnly bool) ([]model.ReportTemplate, error)
}

type templateRepo struct {
	db *gorm.DB
}

// NewTemplateRepo creates a TemplateRepository.
func NewTemplateRepo(db *gorm.DB) TemplateRepository {
	return &templateRepo{db: db}
}

func (r *templateRepo) Create(ctx context.Context, tpl *model.ReportTemplate) error {
	return r.db.WithContext(ctx).Create(tpl).Error
}

func (r *templateRepo) GetByID(ctx context.Context, id string) (*model.ReportTemplate, error) {
	var tpl model.ReportTemplate
	if err := r.db.WithContext(ctx).Where("template_id = ?", id).First(&tpl).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *templateRepo) GetByName(ctx context.Context, name string) (*model.ReportTemplate, error) {
	var tpl model.ReportTemplate
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tpl).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *templateRepo) List(ctx context.Context, activeOnly bool) ([]model.ReportTemplate, error) {
	var tpls []model.ReportTemplate
	db := r.db.WithContext(ctx)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("created_at DESC").Find(&tpls).Error
	return tpls, err
}
