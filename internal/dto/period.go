package dto

import (
	"time"

	"github.com/blackrosevn/Dev02-Reporting/internal/model"
)

// ── Periods ──

// PeriodListRequest GET /periods
type PeriodListRequest struct {
	TemplateID string `form:"template_id" binding:"omitempty,uuid"`
	ActiveOnly bool   `form:"active_only"`
}

// CreatePeriodRequest POST /periods
type CreatePeriodRequest struct {
	TemplateID string    `json:"template_id" binding:"required,uuid"`
	Period     string    `json:"period"      binding:"required,period_label"`
	DueDate    time.Time `json:"due_date"    binding:"required"`
}

// CreatePeriodResponse the period plus the number of reports fanned out.
type CreatePeriodResponse struct {
	Period       *model.ReportPeriod `json:"period"`
	ReportsCount int                 `json:"reports_count"`
}
