package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/blackrosevn/Dev02-Reporting/internal/dto"
	"github.com/blackrosevn/Dev02-Reporting/internal/model"
	"github.com/blackrosevn/Dev02-Reporting/internal/repository"
	"github.com/blackrosevn/Dev02-Reporting/pkg/docstore"
	pkgerrors "github.com/blackrosevn/Dev02-Reporting/pkg/errors"
	"github.com/blackrosevn/Dev02-Reporting/pkg/spreadsheet"
)

// ── Report errors ──

var (
	ErrReportNotFound         = pkgerrors.New(pkgerrors.ErrNotFound, "report not found")
	ErrReportAlreadySubmitted = pkgerrors.New(pkgerrors.ErrConflict, "report has already been submitted")
	ErrReopenSubmitted        = pkgerrors.New(pkgerrors.ErrConflict, "a submitted report cannot be set back to pending")
	ErrReportNoFile           = pkgerrors.New(pkgerrors.ErrNotFound, "report has no archived file")
)

// ArchivedFile is a report's archived workbook: either its content, or a
// link into an external store that does its own access control.
type ArchivedFile struct {
	Name        string
	Content     []byte
	RedirectURL string
}

// submissionNotifier is the part of NotificationService the report flow uses.
type submissionNotifier interface {
	NotifyLate(ctx context.Context, report *model.Report, tpl *model.ReportTemplate) error
	NotifySubmitted(ctx context.Context, report *model.Report, tpl *model.ReportTemplate) error
}

// ReportService the report lifecycle: listing, submission, admin override
// and per-report export.
type ReportService interface {
	List(ctx context.Context, caller Caller, req *dto.ReportListRequest) (*dto.PagedResult[dto.ReportResponse], error)
	GetByID(ctx context.Context, caller Caller, id string) (*dto.ReportResponse, error)
	Submit(ctx context.Context, caller Caller, id string, data map[string]interface{}) (*dto.ReportResponse, error)
	Upload(ctx context.Context, caller Caller, id string, content []byte) (*dto.ReportResponse, error)
	ForceStatus(ctx context.Context, caller Caller, id string, req *dto.ForceStatusRequest) (*dto.ReportResponse, error)
	Export(ctx context.Context, caller Caller, id string) (*bytes.Buffer, string, error)
	File(ctx context.Context, caller Caller, id string) (*ArchivedFile, error)
}

type reportService struct {
	repo     *repository.Repository
	policy   *accessPolicy
	notifier submissionNotifier
	docs     docstore.Store
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService docs may be nil, which disables archiving.
func NewReportService(
	repo *repository.Repository,
	policy *accessPolicy,
	notifier submissionNotifier,
	docs docstore.Store,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		repo:     repo,
		policy:   policy,
		notifier: notifier,
		docs:     docs,
		logger:   logger,
		now:      time.Now,
	}
}

// ────────────────────── List ──────────────────────

// List applies the caller's scope before the query filters.
func (s *reportService) List(ctx context.Context, caller Caller, req *dto.ReportListRequest) (*dto.PagedResult[dto.ReportResponse], error) {
	scope, err := s.policy.reportScope(ctx, caller)
	if err != nil {
		return nil, err
	}

	now := s.now()
	filter := repository.ReportFilter{
		CompanyID:  scope.CompanyID,
		TemplateID: req.TemplateID,
		PeriodID:   req.PeriodID,
		Period:     req.Period,
		Status:     req.Status,
		Now:        now,
	}
	reports, total, err := s.repo.Report.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list reports failed", zap.Error(err))
		return nil, err
	}

	list := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		list = append(list, dto.NewReportResponse(&reports[i], EffectiveStatus(&reports[i], now)))
	}
	return &dto.PagedResult[dto.ReportResponse]{
		List:     list,
		Total:    total,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
	}, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *reportService) GetByID(ctx context.Context, caller Caller, id string) (*dto.ReportResponse, error) {
	report, err := s.loadVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewReportResponse(report, EffectiveStatus(report, s.now()))
	return &resp, nil
}

// ────────────────────── Submit ──────────────────────

func (s *reportService) Submit(ctx context.Context, caller Caller, id string, data map[string]interface{}) (*dto.ReportResponse, error) {
	return s.submit(ctx, caller, id, data, nil)
}

// Upload decodes a filled workbook with the template's layout and submits
// its values. The uploaded file itself is archived.
func (s *reportService) Upload(ctx context.Context, caller Caller, id string, content []byte) (*dto.ReportResponse, error) {
	if !canSubmit(caller) {
		return nil, ErrAccessDenied
	}
	report, err := s.loadVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	tpl, err := s.template(ctx, report)
	if err != nil {
		return nil, err
	}

	data, err := spreadsheet.Decode(content, codecFields(tpl.Fields))
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, caller, id, data, content)
}

// submit runs the pending -> submitted|late transition. archive, when set,
// is stored instead of a freshly encoded workbook.
func (s *reportService) submit(ctx context.Context, caller Caller, id string, data map[string]interface{}, archive []byte) (*dto.ReportResponse, error) {
	if !canSubmit(caller) {
		return nil, ErrAccessDenied
	}

	report, err := s.loadVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if report.Status != model.StatusPending {
		return nil, ErrReportAlreadySubmitted
	}

	tpl, err := s.template(ctx, report)
	if err != nil {
		return nil, err
	}
	clean, err := ValidateFormData(tpl.Fields, data)
	if err != nil {
		return nil, err
	}

	now := s.now()
	outcome := DecideOutcome(report.DueDate, now)
	submittedBy := caller.UserID

	report.Status = outcome.Status()
	report.SubmittedAt = &now
	report.SubmittedBy = &submittedBy
	report.Data = clean

	if err := s.repo.Report.Submit(ctx, report); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrReportAlreadySubmitted
		}
		s.logger.Error("submit report failed", zap.String("report_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("report submitted",
		zap.String("report_id", report.ReportID),
		zap.String("company", report.CompanyCode),
		zap.String("period", report.Period),
		zap.String("status", report.Status),
	)

	s.archive(ctx, report, tpl, archive)

	if outcome == OutcomeLate {
		if err := s.notifier.NotifyLate(ctx, report, tpl); err != nil {
			s.logger.Error("late alert failed", zap.String("report_id", report.ReportID), zap.Error(err))
		}
	} else {
		if err := s.notifier.NotifySubmitted(ctx, report, tpl); err != nil {
			s.logger.Error("submission notice failed", zap.String("report_id", report.ReportID), zap.Error(err))
		}
	}

	resp := dto.NewReportResponse(report, EffectiveStatus(report, now))
	return &resp, nil
}

// archive stores the filled form in the document store when the template
// names a destination. Failures leave FileURL empty.
func (s *reportService) archive(ctx context.Context, report *model.Report, tpl *model.ReportTemplate, content []byte) {
	if s.docs == nil || tpl.SharePointPath == nil || *tpl.SharePointPath == "" {
		return
	}

	if content == nil {
		encoded, err := spreadsheet.Encode(report.Data, codecFields(tpl.Fields))
		if err != nil {
			s.logger.Warn("encode report workbook failed", zap.String("report_id", report.ReportID), zap.Error(err))
			return
		}
		content = encoded
	}

	fileName := archiveFileName(report, s.now())
	url, err := s.docs.Upload(ctx, content, path.Join(*tpl.SharePointPath, report.Period), fileName)
	if err != nil {
		s.logger.Warn("archive report failed",
			zap.String("report_id", report.ReportID),
			zap.Error(pkgerrors.External("document upload", err)),
		)
		return
	}

	report.FileURL = &url
	if err := s.repo.Report.SetFileURL(ctx, report); err != nil {
		report.FileURL = nil
		s.logger.Warn("save file url failed", zap.String("report_id", report.ReportID), zap.Error(err))
	}
}

// canSubmit department users review reports; they never file them.
func canSubmit(caller Caller) bool {
	return caller.Role != model.RoleDepartment
}

func archiveFileName(r *model.Report, now time.Time) string {
	return fmt.Sprintf("%s_%s_%d.xlsx", r.CompanyCode, r.Period, now.UnixMilli())
}

// ────────────────────── ForceStatus ──────────────────────

// ForceStatus is the audited administrative correction. It never runs as
// part of submission.
func (s *reportService) ForceStatus(ctx context.Context, caller Caller, id string, req *dto.ForceStatusRequest) (*dto.ReportResponse, error) {
	if !CanOverrideStatus(caller.Role) {
		return nil, ErrAccessDenied
	}
	if !model.StoredStatus(req.Status) {
		return nil, pkgerrors.NewValidation("status", "must be pending, submitted or late")
	}

	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	oldStatus := report.Status
	if oldStatus == req.Status {
		resp := dto.NewReportResponse(report, EffectiveStatus(report, now))
		return &resp, nil
	}
	if req.Status == model.StatusPending && report.SubmittedAt != nil {
		return nil, ErrReopenSubmitted
	}

	report.Status = req.Status

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

	txRepo := s.repo.WithTx(tx)
	if err := txRepo.Report.ForceStatus(ctx, report); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("force status failed", zap.String("report_id", id), zap.Error(err))
		}
		return nil, err
	}

	entry := &model.AuditLog{
		ActorID:    caller.UserID,
		Action:     model.AuditForceStatus,
		EntityType: "report",
		EntityID:   report.ReportID,
		Detail: map[string]interface{}{
			"from":   oldStatus,
			"to":     req.Status,
			"reason": req.Reason,
		},
		CreatedAt: now,
	}
	if err := txRepo.AuditLog.Create(ctx, entry); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("write audit log failed", zap.String("report_id", id), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("commit failed", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("report status overridden",
		zap.String("actor", caller.UserID),
		zap.String("report_id", report.ReportID),
		zap.String("from", oldStatus),
		zap.String("to", req.Status),
		zap.String("reason", req.Reason),
	)

	resp := dto.NewReportResponse(report, EffectiveStatus(report, now))
	return &resp, nil
}

// ────────────────────── Export ──────────────────────

// Export renders the report's current form data as a workbook.
func (s *reportService) Export(ctx context.Context, caller Caller, id string) (*bytes.Buffer, string, error) {
	report, err := s.loadVisible(ctx, caller, id)
	if err != nil {
		return nil, "", err
	}
	tpl, err := s.template(ctx, report)
	if err != nil {
		return nil, "", err
	}

	content, err := spreadsheet.Encode(report.Data, codecFields(tpl.Fields))
	if err != nil {
		s.logger.Error("encode report workbook failed", zap.String("report_id", id), zap.Error(err))
		return nil, "", err
	}
	return bytes.NewBuffer(content), fmt.Sprintf("%s_%s.xlsx", report.CompanyCode, report.Period), nil
}

// ────────────────────── File ──────────────────────

// File returns the archived workbook of a report the caller can see.
func (s *reportService) File(ctx context.Context, caller Caller, id string) (*ArchivedFile, error) {
	report, err := s.loadVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if report.FileURL == nil || *report.FileURL == "" {
		return nil, ErrReportNoFile
	}
	fileURL := *report.FileURL

	reader, ok := s.docs.(docstore.Reader)
	if !ok {
		return &ArchivedFile{Name: path.Base(fileURL), RedirectURL: fileURL}, nil
	}
	content, err := reader.Read(ctx, fileURL)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrReportNoFile
		}
		s.logger.Error("read archived file failed", zap.String("report_id", id), zap.Error(err))
		return nil, err
	}
	return &ArchivedFile{
		Name:    fmt.Sprintf("%s_%s.xlsx", report.CompanyCode, report.Period),
		Content: content,
	}, nil
}

// ── helpers ──

func (s *reportService) load(ctx context.Context, id string) (*model.Report, error) {
	report, err := s.repo.Report.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		s.logger.Error("load report failed", zap.String("report_id", id), zap.Error(err))
		return nil, err
	}
	return report, nil
}

// loadVisible looks the report up, then applies the caller's scope.
func (s *reportService) loadVisible(ctx context.Context, caller Caller, id string) (*model.Report, error) {
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.checkReport(ctx, caller, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *reportService) template(ctx context.Context, report *model.Report) (*model.ReportTemplate, error) {
	if report.Template != nil {
		return report.Template, nil
	}
	tpl, err := s.repo.Template.GetByID(ctx, report.TemplateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("load template failed", zap.String("template_id", report.TemplateID), zap.Error(err))
		return nil, err
	}
	report.Template = tpl
	return tpl, nil
}

func codecFields(fields []model.FieldSpec) []spreadsheet.Field {
	out := make([]spreadsheet.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, spreadsheet.Field{
			ID:     f.ID,
			Label:  f.Label,
			Type:   f.Type,
			Sheet:  f.Sheet,
			Column: f.ExcelColumn,
		})
	}
	return out
}
