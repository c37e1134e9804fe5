package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/blackrosevn/Dev02-Reporting/internal/dto"
	"github.com/blackrosevn/Dev02-Reporting/internal/model"
	"github.com/blackrosevn/Dev02-Reporting/internal/repository"
	pkgerrors "github.com/blackrosevn/Dev02-Reporting/pkg/errors"
)

// ── Company errors ──

var (
	ErrCompanyNotFound  = pkgerrors.New(pkgerrors.ErrNotFound, "company not found")
	ErrCompanyCodeTaken = pkgerrors.New(pkgerrors.ErrConflict, "company code already exists")
	ErrCompanyNameTaken = pkgerrors.New(pkgerrors.ErrConflict, "company name already exists")
)

// CompanyService member unit registry.
type CompanyService interface {
	List(ctx context.Context, req *dto.CompanyListRequest) ([]model.Company, error)
	GetByID(ctx context.Context, id string) (*model.Company, error)
	Create(ctx context.Context, req *dto.CreateCompanyRequest) (*model.Company, error)
	Update(ctx context.Context, id string, req *dto.UpdateCompanyRequest) (*model.Company, error)
}

type companyService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCompanyService creates a CompanyService.
func NewCompanyService(repo *repository.Repository, logger *zap.Logger) CompanyService {
	return &companyService{repo: repo, logger: logger}
}

func (s *companyService) List(ctx context.Context, req *dto.CompanyListRequest) ([]model.Company, error) {
	companies, err := s.repo.Company.List(ctx, req.ActiveOnly)
	if err != nil {
		s.logger.Error("list companies failed", zap.Error(err))
		return nil, err
	}
	return companies, nil
}

func (s *companyService) GetByID(ctx context.Context, id string) (*model.Company, error) {
	company, err := s.repo.Company.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		s.logger.Error("load company failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return company, nil
}

func (s *companyService) Create(ctx context.Context, req *dto.CreateCompanyRequest) (*model.Company, error) {
	if err := s.ensureUnique(ctx, "", req.Name, req.Code); err != nil {
		return nil, err
	}

	company := &model.Company{
		Name:     req.Name,
		Code:     req.Code,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		IsActive: true,
	}
	if err := s.repo.Company.Create(ctx, company); err != nil {
		if isDuplicate(err) {
			if _, lookupErr := s.repo.Company.GetByCode(ctx, req.Code); lookupErr == nil {
				return nil, ErrCompanyCodeTaken
			}
			return nil, ErrCompanyNameTaken
		}
		s.logger.Error("create company failed", zap.String("code", req.Code), zap.Error(err))
		return nil, err
	}
	return company, nil
}

// Update leaves the code alone; reports snapshot it.
func (s *companyService) Update(ctx context.Context, id string, req *dto.UpdateCompanyRequest) (*model.Company, error) {
	company, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != company.Name {
		if err := s.ensureUnique(ctx, company.CompanyID, *req.Name, ""); err != nil {
			return nil, err
		}
		company.Name = *req.Name
	}
	if req.Email != nil {
		company.Email = req.Email
	}
	if req.Phone != nil {
		company.Phone = req.Phone
	}
	if req.Address != nil {
		company.Address = req.Address
	}
	if req.IsActive != nil {
		company.IsActive = *req.IsActive
	}

	if err := s.repo.Company.Update(ctx, company); err != nil {
		if isDuplicate(err) {
			return nil, ErrCompanyNameTaken
		}
		s.logger.Error("update company failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return company, nil
}

// ensureUnique checks name and code against other companies. Empty values
// are skipped.
func (s *companyService) ensureUnique(ctx context.Context, selfID, name, code string) error {
	if code != "" {
		existing, err := s.repo.Company.GetByCode(ctx, code)
		if err == nil && existing.CompanyID != selfID {
			return ErrCompanyCodeTaken
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("check company code failed", zap.Error(err))
			return err
		}
	}
	if name != "" {
		existing, err := s.repo.Company.GetByName(ctx, name)
		if err == nil && existing.CompanyID != selfID {
			return ErrCompanyNameTaken
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("check company name failed", zap.Error(err))
			return err
		}
	}
	return nil
}
