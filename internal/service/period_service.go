package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/blackrosevn/Dev02-Reporting/internal/dto"
	"github.com/blackrosevn/Dev02-Reporting/internal/model"
	"github.com/blackrosevn/Dev02-Reporting/internal/repository"
	pkgerrors "github.com/blackrosevn/Dev02-Reporting/pkg/errors"
)

// ── Period errors ──

var (
	ErrPeriodNotFound  = pkgerrors.New(pkgerrors.ErrNotFound, "report period not found")
	ErrPeriodExists    = pkgerrors.New(pkgerrors.ErrConflict, "period already exists for this template")
	ErrTemplateDormant = pkgerrors.NewValidation("template_id", "template is inactive")
)

var periodLabelByType = map[string]*regexp.Regexp{
	model.PeriodAnnual:    regexp.MustCompile(`^\d{4}$`),
	model.PeriodQuarterly: regexp.MustCompile(`^\d{4}-Q[1-4]$`),
	model.PeriodMonthly:   regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`),
}

var periodLabelExample = map[string]string{
	model.PeriodAnnual:    "2024",
	model.PeriodQuarterly: "2024-Q1",
	model.PeriodMonthly:   "2024-03",
}

// PeriodService reporting cycles. Creating a period fans out one pending
// report per required active company.
type PeriodService interface {
	List(ctx context.Context, req *dto.PeriodListRequest) ([]model.ReportPeriod, error)
	GetByID(ctx context.Context, id string) (*model.ReportPeriod, error)
	Create(ctx context.Context, caller Caller, req *dto.CreatePeriodRequest) (*dto.CreatePeriodResponse, error)
}

type periodService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPeriodService creates a PeriodService.
func NewPeriodService(repo *repository.Repository, logger *zap.Logger) PeriodService {
	return &periodService{repo: repo, logger: logger}
}

func (s *periodService) List(ctx context.Context, req *dto.PeriodListRequest) ([]model.ReportPeriod, error) {
	periods, err := s.repo.Period.List(ctx, repository.PeriodFilter{
		TemplateID: req.TemplateID,
		ActiveOnly: req.ActiveOnly,
	})
	if err != nil {
		s.logger.Error("list periods failed", zap.Error(err))
		return nil, err
	}
	return periods, nil
}

func (s *periodService) GetByID(ctx context.Context, id string) (*model.ReportPeriod, error) {
	p, err := s.repo.Period.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("load period failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

// ────────────────────── Create ──────────────────────

func (s *periodService) Create(ctx context.Context, caller Caller, req *dto.CreatePeriodRequest) (*dto.CreatePeriodResponse, error) {
	if !CanAuthor(caller.Role) {
		return nil, ErrAccessDenied
	}

	tpl, err := s.repo.Template.GetByID(ctx, req.TemplateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("load template failed", zap.String("template_id", req.TemplateID), zap.Error(err))
		return nil, err
	}
	if !tpl.IsActive {
		return nil, ErrTemplateDormant
	}
	if err := CheckPeriodLabel(tpl.PeriodType, req.Period); err != nil {
		return nil, err
	}

	if _, err := s.repo.Period.GetByTemplateAndLabel(ctx, tpl.TemplateID, req.Period); err == nil {
		return nil, ErrPeriodExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("check period failed", zap.Error(err))
		return nil, err
	}

	period := &model.ReportPeriod{
		TemplateID: tpl.TemplateID,
		Period:     req.Period,
		DueDate:    req.DueDate.UTC(),
		IsActive:   true,
	}
	if caller.UserID != "" {
		createdBy := caller.UserID
		period.CreatedBy = &createdBy
	}

	// period row and its reports commit together
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("begin transaction failed", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()
	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}

	txRepo := s.repo.WithTx(tx)
	if err := txRepo.Period.Create(ctx, period); err != nil {
		rollback()
		if isDuplicate(err) {
			return nil, ErrPeriodExists
		}
		s.logger.Error("create period failed", zap.String("template_id", tpl.TemplateID), zap.Error(err))
		return nil, err
	}

	companies, err := txRepo.Company.ListActiveByCodes(ctx, tpl.RequiredUnits)
	if err != nil {
		rollback()
		s.logger.Error("load required companies failed", zap.Error(err))
		return nil, err
	}

	reports := FanOutReports(tpl, period, companies)
	if err := txRepo.Report.BatchCreate(ctx, reports); err != nil {
		rollback()
		if isDuplicate(err) {
			return nil, ErrPeriodExists
		}
		s.logger.Error("fan out reports failed", zap.String("period", req.Period), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("commit failed", zap.Error(err))
			return nil, err
		}
	}

	period.Template = tpl
	s.logger.Info("period created",
		zap.String("period_id", period.PeriodID),
		zap.String("template", tpl.Name),
		zap.String("period", period.Period),
		zap.Int("reports", len(reports)),
	)
	return &dto.CreatePeriodResponse{Period: period, ReportsCount: len(reports)}, nil
}

// CheckPeriodLabel requires label to match the template's period type.
func CheckPeriodLabel(periodType, label string) error {
	re, ok := periodLabelByType[periodType]
	if !ok {
		return pkgerrors.NewValidation("period", fmt.Sprintf("template has unknown period type %q", periodType))
	}
	if !re.MatchString(label) {
		return pkgerrors.NewValidation("period",
			fmt.Sprintf("%s templates use labels like %s", periodType, periodLabelExample[periodType]))
	}
	return nil
}

// FanOutReports builds one pending report per company. Companies not in the
// template's required units are skipped. Company and period fields are
// copied onto the report.
func FanOutReports(tpl *model.ReportTemplate, period *model.ReportPeriod, companies []model.Company) []model.Report {
	reports := make([]model.Report, 0, len(companies))
	seen := make(map[string]bool, len(companies))
	for _, c := range companies {
		if !c.IsActive || !tpl.Requires(c.Code) || seen[c.Code] {
			continue
		}
		seen[c.Code] = true
		r := model.Report{
			TemplateID:  tpl.TemplateID,
			PeriodID:    period.PeriodID,
			CompanyID:   c.CompanyID,
			CompanyName: c.Name,
			CompanyCode: c.Code,
			Period:      period.Period,
			DueDate:     period.DueDate,
			Status:      model.StatusPending,
			Data:        map[string]interface{}{},
		}
		r.Version = 1
		reports = append(reports, r)
	}
	return reports
}
