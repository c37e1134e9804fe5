package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/blackrosevn/Dev02-Reporting/internal/model"
)

// CompanyRepository data access for companies.
type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	GetByID(ctx context.Context, id string) (*model.Company, error)
	GetByCode(ctx context.Context, code string) (*model.Company, error)
	GetByName(ctx context.Context, name string) (*model.Company, error)
	Update(ctx context.Context, company *model.Company) error
	List(ctx context.Context, activeOnly bool) ([]model.Company, error)
	// ListActiveByCodes returns the active companies whose code is in codes.
	ListActiveByCodes(ctx context.Context, codes []string) ([]model.Company, error)
}

type companyRepo struct {
	db *gorm.DB
}

// NewCompanyRepo creates a CompanyRepository.
func NewCompanyRepo(db *gorm.DB) CompanyRepository {
	return &companyRepo{db: db}
}

func (r *companyRepo) Create(ctx context.Context, company *model.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *companyRepo) GetByID(ctx context.Context, id string) (*model.Company, error) {
	return r.first(ctx, "company_id = ?", id)
}

func (r *companyRepo) GetByCode(ctx context.Context, code string) (*model.Company, error) {
	return r.first(ctx, "code = ?", code)
}

func (r *companyRepo) GetByName(ctx context.Context, name string) (*model.Company, error) {
	return r.first(ctx, "name = ?", name)
}

func (r *companyRepo) first(ctx context.Context, query string, arg interface{}) (*model.Company, error) {
	var company model.Company
	if err := r.db.WithContext(ctx).Where(query, arg).First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepo) Update(ctx context.Context, company *model.Company) error {
	return r.db.WithContext(ctx).Save(company).Error
}

func (r *companyRepo) List(ctx context.Context, activeOnly bool) ([]model.Company, error) {
	var companies []model.Company
	db := r.db.WithContext(ctx)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("code ASC").Find(&companies).Error
	return companies, err
}

func (r *companyRepo) ListActiveByCodes(ctx context.Context, codes []string) ([]model.Company, error) {
	var companies []model.Company
	if len(codes) == 0 {
		return companies, nil
	}
	err := r.db.WithContext(ctx).
		Where("code IN ? AND is_active = ?", codes, true).
		Order("code ASC").
		Find(&companies).Error
	return companies, err
}
