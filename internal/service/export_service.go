package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/blackrosevn/Dev02-Reporting/internal/dto"
	"github.com/blackrosevn/Dev02-Reporting/internal/model"
	"github.com/blackrosevn/Dev02-Reporting/internal/repository"
	pkgerrors "github.com/blackrosevn/Dev02-Reporting/pkg/errors"
)

// ── Export errors ──

var (
	ErrExportNoReports = pkgerrors.New(pkgerrors.ErrNotFound, "no reports match the export filter")
)

// ExportService builds xlsx summaries. Output is returned as a buffer and
// the handler sets the download headers.
type ExportService interface {
	ExportReports(ctx context.Context, caller Caller, req *dto.ReportListRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	policy *accessPolicy
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService creates an ExportService.
func NewExportService(repo *repository.Repository, policy *accessPolicy, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, policy: policy, logger: logger, now: time.Now}
}

var exportColumns = []struct {
	title string
	width float64
}{
	{"Company", 36},
	{"Code", 10},
	{"Template", 30},
	{"Period", 12},
	{"Due date", 18},
	{"Status", 12},
	{"Submitted at", 18},
	{"File", 50},
}

var statusLabels = map[string]string{
	model.StatusPending:   "Pending",
	model.StatusSubmitted: "Submitted",
	model.StatusLate:      "Late",
	model.StatusOverdue:   "Overdue",
}

// ═══════════════════════════════════════════════════════════
// ExportReports
// ═══════════════════════════════════════════════════════════
//
// Sheet "Reports": one row per visible report matching the filter, with the
// effective status. Sheet "Summary": per-period counts.

func (s *exportService) ExportReports(ctx context.Context, caller Caller, req *dto.ReportListRequest) (*bytes.Buffer, string, error) {
	scope, err := s.policy.reportScope(ctx, caller)
	if err != nil {
		return nil, "", err
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
	reports, _, err := s.repo.Report.List(ctx, filter, 0, 0)
	if err != nil {
		s.logger.Error("list reports for export failed", zap.Error(err))
		return nil, "", err
	}
	if len(reports) == 0 {
		return nil, "", ErrExportNoReports
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Reports"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, c := range exportColumns {
		col := colName(i)
		f.SetColWidth(sheet, col, col, c.width)
		f.SetCellValue(sheet, cell(col, 1), c.title)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(exportColumns)-1), 1), headerStyle)
	f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	counts := make([]repository.StatusCount, 0)
	countIdx := make(map[string]int)

	for i := range reports {
		r := &reports[i]
		row := i + 2
		status := EffectiveStatus(r, now)

		templateName := r.TemplateID
		if r.Template != nil {
			templateName = r.Template.Name
		}
		submittedAt := ""
		if r.SubmittedAt != nil {
			submittedAt = r.SubmittedAt.UTC().Format("2006-01-02 15:04")
		}
		fileURL := ""
		if r.FileURL != nil {
			fileURL = *r.FileURL
		}

		values := []interface{}{
			r.CompanyName,
			r.CompanyCode,
			templateName,
			r.Period,
			r.DueDate.UTC().Format("2006-01-02 15:04"),
			statusLabels[status],
			submittedAt,
			fileURL,
		}
		for j, v := range values {
			f.SetCellValue(sheet, cell(colName(j), row), v)
		}

		key := r.Period + "\x00" + status
		if k, ok := countIdx[key]; ok {
			counts[k].Count++
		} else {
			countIdx[key] = len(counts)
			counts = append(counts, repository.StatusCount{Period: r.Period, EffectiveStatus: status, Count: 1})
		}
	}

	if err := writeSummarySheet(f, ComputeStats(counts), headerStyle); err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write workbook failed", zap.Error(err))
		return nil, "", err
	}

	filename := fmt.Sprintf("reports_%s.xlsx", now.Format("20060102_1504"))
	if req.Period != "" {
		filename = fmt.Sprintf("reports_%s_%s.xlsx", req.Period, now.Format("20060102_1504"))
	}
	return buf, filename, nil
}

func writeSummarySheet(f *excelize.File, stats *dto.StatsResponse, headerStyle int) error {
	sheet := "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	headers := []string{"Period", "Total", "Submitted", "Late", "Pending", "Overdue", "Completion %"}
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)
	f.SetColWidth(sheet, "A", "A", 14)

	row := 2
	write := func(label string, b dto.StatusBreakdown) {
		values := []interface{}{label, b.Total, b.Submitted, b.Late, b.Pending, b.Overdue, b.CompletionPercent}
		for i, v := range values {
			f.SetCellValue(sheet, cell(colName(i), row), v)
		}
		row++
	}
	for _, p := range stats.Periods {
		write(p.Period, p.StatusBreakdown)
	}
	write("All", stats.Overall)
	return nil
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
