package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/blackrosevn/Dev02-Reporting/internal/dto"
	"github.com/blackrosevn/Dev02-Reporting/internal/model"
	"github.com/blackrosevn/Dev02-Reporting/internal/repository"
	pkgerrors "github.com/blackrosevn/Dev02-Reporting/pkg/errors"
)

// ── Template errors ──

var (
	ErrTemplateNotFound  = pkgerrors.New(pkgerrors.ErrNotFound, "report template not found")
	ErrTemplateNameTaken = pkgerrors.New(pkgerrors.ErrConflict, "report template name already exists")
)

const defaultDaysBeforeReminder = 7

// TemplateService report form definitions.
type TemplateService interface {
	List(ctx context.Context, req *dto.TemplateListRequest) ([]model.ReportTemplate, error)
	GetByID(ctx context.Context, id string) (*model.ReportTemplate, error)
	Create(ctx context.Context, caller Caller, req *dto.CreateTemplateRequest) (*model.ReportTemplate, error)
}

type templateService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTemplateService creates a TemplateService.
func NewTemplateService(repo *repository.Repository, logger *zap.Logger) TemplateService {
	return &templateService{repo: repo, logger: logger}
}

func (s *templateService) List(ctx context.Context, req *dto.TemplateListRequest) ([]model.ReportTemplate, error) {
	tpls, err := s.repo.Template.List(ctx, req.ActiveOnly)
	if err != nil {
		s.logger.Error("list templates failed", zap.Error(err))
		return nil, err
	}
	return tpls, nil
}

func (s *templateService) GetByID(ctx context.Context, id string) (*model.ReportTemplate, error) {
	tpl, err := s.repo.Template.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("load template failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return tpl, nil
}

// ────────────────────── Create ──────────────────────

func (s *templateService) Create(ctx context.Context, caller Caller, req *dto.CreateTemplateRequest) (*model.ReportTemplate, error) {
	if !CanAuthor(caller.Role) {
		return nil, ErrAccessDenied
	}

	fields, err := ValidateFieldSpecs(req.Fields)
	if err != nil {
		return nil, err
	}

	days := defaultDaysBeforeReminder
	if req.DaysBeforeReminder != nil {
		days = *req.DaysBeforeReminder
	}
	if days < 1 {
		return nil, pkgerrors.NewValidation("days_before_reminder", "must be at least 1")
	}

	units := dedupeUnits(req.RequiredUnits)
	if len(units) == 0 {
		return nil, pkgerrors.NewValidation("required_units", "must name at least one company")
	}

	if _, err := s.repo.Template.GetByName(ctx, req.Name); err == nil {
		return nil, ErrTemplateNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("check template name failed", zap.Error(err))
		return nil, err
	}

	tpl := &model.ReportTemplate{
		Name:               strings.TrimSpace(req.Name),
		Description:        req.Description,
		Fields:             fields,
		Department:         req.Department,
		RequiredUnits:      units,
		PeriodType:         req.PeriodType,
		DaysBeforeReminder: days,
		SharePointPath:     req.SharePointPath,
		IsActive:           true,
		CreatedBy:          caller.UserID,
	}
	if err := s.repo.Template.Create(ctx, tpl); err != nil {
		if isDuplicate(err) {
			return nil, ErrTemplateNameTaken
		}
		s.logger.Error("create template failed", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}

	s.logger.Info("template created",
		zap.String("template_id", tpl.TemplateID),
		zap.String("name", tpl.Name),
		zap.Strings("required_units", units),
	)
	return tpl, nil
}

// ValidateFieldSpecs checks a template's field list: ids present and unique,
// known types, options on select fields, and no two fields on the same cell.
func ValidateFieldSpecs(fields []model.FieldSpec) ([]model.FieldSpec, error) {
	verr := &pkgerrors.ValidationError{}
	if len(fields) == 0 {
		verr.Add("fields", "at least one field is required")
		return nil, verr
	}

	out := make([]model.FieldSpec, 0, len(fields))
	ids := make(map[string]bool, len(fields))
	cells := make(map[string]string, len(fields))
	for i, f := range fields {
		key := fmt.Sprintf("fields[%d]", i)
		f.ID = strings.TrimSpace(f.ID)
		f.Label = strings.TrimSpace(f.Label)
		f.ExcelColumn = strings.ToUpper(strings.TrimSpace(f.ExcelColumn))

		switch {
		case f.ID == "":
			verr.Add(key+".id", "is required")
			continue
		case ids[f.ID]:
			verr.Add(key+".id", fmt.Sprintf("duplicate field id %q", f.ID))
			continue
		}
		ids[f.ID] = true

		if f.Label == "" {
			f.Label = f.ID
		}
		switch f.Type {
		case model.FieldText, model.FieldNumber, model.FieldDate, model.FieldTextarea:
		case model.FieldSelect:
			if len(f.Options) == 0 {
				verr.Add(key+".options", "select fields need options")
			}
		default:
			verr.Add(key+".type", fmt.Sprintf("unknown field type %q", f.Type))
		}

		if f.ExcelColumn != "" {
			cell := f.SheetName() + "!" + f.ExcelColumn
			if other, ok := cells[cell]; ok {
				verr.Add(key+".excel_column", fmt.Sprintf("cell %s already used by %q", cell, other))
			}
			cells[cell] = f.ID
		}
		out = append(out, f)
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

func dedupeUnits(units []string) []string {
	seen := make(map[string]bool, len(units))
	out := make([]string, 0, len(units))
	for _, u := range units {
		u = strings.ToUpper(strings.TrimSpace(u))
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
