package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/blackrosevn/Dev02-Reporting/internal/model"
	pkgerrors "github.com/blackrosevn/Dev02-Reporting/pkg/errors"
)

// ReportFilter narrows report queries. Status is an effective status:
// "overdue" selects pending reports past Now, and "pending" excludes them.
type ReportFilter struct {
	CompanyID  string
	TemplateID string
	PeriodID   string
	Period     string
	Status     string
	Now        time.Time
}

// StatusCount is one (period, effective status) bucket.
type StatusCount struct {
	Period          string `gorm:"column:period"`
	EffectiveStatus string `gorm:"column:effective_status"`
	Count           int64  `gorm:"column:count"`
}

// ReportRepository data access for reports.
type ReportRepository interface {
	BatchCreate(ctx context.Context, reports []model.Report) error
	GetByID(ctx context.Context, id string) (*model.Report, error)
	// List pages through matching reports; limit <= 0 returns all of them.
	List(ctx context.Context, filter ReportFilter, offset, limit int) ([]model.Report, int64, error)
	// ListPendingDueBetween returns pending reports with from < due_date <= to.
	ListPendingDueBetween(ctx context.Context, from, to time.Time) ([]model.Report, error)
	// Submit moves a pending report to report.Status. It matches on status
	// and version and returns ErrOptimisticLock when another call won.
	Submit(ctx context.Context, report *model.Report) error
	SetFileURL(ctx context.Context, report *model.Report) error
	ForceStatus(ctx context.Context, report *model.Report) error
	CountByStatus(ctx context.Context, filter ReportFilter) ([]StatusCount, error)
}

type reportRepo struct {
	db *gorm.DB
}

// NewReportRepo creates a ReportRepository.
func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) BatchCreate(ctx context.Context, reports []model.Report) error {
	if len(reports) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&reports).Error
}

func (r *reportRepo) GetByID(ctx context.Context, id string) (*model.Report, error) {
	var report model.Report
	err := r.db.WithContext(ctx).
		Preload("Template").
		Where("report_id = ?", id).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func applyReportFilter(db *gorm.DB, f ReportFilter) *gorm.DB {
	if f.CompanyID != "" {
		db = db.Where("company_id = ?", f.CompanyID)
	}
	if f.TemplateID != "" {
		db = db.Where("template_id = ?", f.TemplateID)
	}
	if f.PeriodID != "" {
		db = db.Where("period_id = ?", f.PeriodID)
	}
	if f.Period != "" {
		db = db.Where("period = ?", f.Period)
	}
	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}
	switch f.Status {
	case "":
	case model.StatusOverdue:
		db = db.Where("status = ? AND due_date < ?", model.StatusPending, now)
	case model.StatusPending:
		db = db.Where("status = ? AND due_date >= ?", model.StatusPending, now)
	default:
		db = db.Where("status = ?", f.Status)
	}
	return db
}

func (r *reportRepo) List(ctx context.Context, filter ReportFilter, offset, limit int) ([]model.Report, int64, error) {
	var reports []model.Report
	var total int64

	db := applyReportFilter(r.db.WithContext(ctx).Model(&model.Report{}), filter)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Preload("Template").Order("due_date DESC, company_code ASC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&reports).Error; err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

func (r *reportRepo) ListPendingDueBetween(ctx context.Context, from, to time.Time) ([]model.Report, error) {
	var reports []model.Report
	err := r.db.WithContext(ctx).
		Preload("Template").
		Where("status = ? AND due_date > ? AND due_date <= ?", model.StatusPending, from, to).
		Order("company_id ASC, due_date ASC").
		Find(&reports).Error
	return reports, err
}

func (r *reportRepo) Submit(ctx context.Context, report *model.Report) error {
	oldVersion := report.Version
	result := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("report_id = ? AND status = ? AND version = ?", report.ReportID, model.StatusPending, oldVersion).
		Updates(map[string]interface{}{
			"status":       report.Status,
			"submitted_at": report.SubmittedAt,
			"submitted_by": report.SubmittedBy,
			"data":         report.Data,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	report.Version = oldVersion + 1
	return nil
}

func (r *reportRepo) SetFileURL(ctx context.Context, report *model.Report) error {
	return r.versionedUpdate(ctx, report, map[string]interface{}{
		"file_url": report.FileURL,
	})
}

func (r *reportRepo) ForceStatus(ctx context.Context, report *model.Report) error {
	return r.versionedUpdate(ctx, report, map[string]interface{}{
		"status": report.Status,
	})
}

func (r *reportRepo) versionedUpdate(ctx context.Context, report *model.Report, fields map[string]interface{}) error {
	oldVersion := report.Version
	fields["version"] = oldVersion + 1
	result := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("report_id = ? AND version = ?", report.ReportID, oldVersion).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	report.Version = oldVersion + 1
	return nil
}

func (r *reportRepo) CountByStatus(ctx context.Context, filter ReportFilter) ([]StatusCount, error) {
	now := filter.Now
	if now.IsZero() {
		now = time.Now()
	}
	filter.Status = ""

	var counts []StatusCount
	err := applyReportFilter(r.db.WithContext(ctx).Model(&model.Report{}), filter).
		Select("period, CASE WHEN status = ? AND due_date < ? THEN ? ELSE status END AS effective_status, COUNT(*) AS count",
			model.StatusPending, now, model.StatusOverdue).
		Group("1, 2").
		Order("1, 2").
		Scan(&counts).Error
	return counts, err
}
