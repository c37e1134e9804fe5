package dto

import (
	"time"

	"github.com/blackrosevn/Dev02-Reporting/internal/model"
)

// ── Reports ──

// ReportListRequest GET /reports
type ReportListRequest struct {
	PaginationRequest
	TemplateID string `form:"template_id" binding:"omitempty,uuid"`
	PeriodID   string `form:"period_id"   binding:"omitempty,uuid"`
	Period     string `form:"period"      binding:"omitempty,max=50"`
	Status     string `form:"status"      binding:"omitempty,oneof=pending submitted late overdue"`
}

// SubmitReportRequest POST /reports/:id/submit
type SubmitReportRequest struct {
	Data map[string]interface{} `json:"data" binding:"required"`
}

// ForceStatusRequest PUT /reports/:id/status
type ForceStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending submitted late"`
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}

// ReportResponse a report with its effective status.
type ReportResponse struct {
	ID           string                 `json:"id"`
	TemplateID   string                 `json:"template_id"`
	TemplateName string                 `json:"template_name,omitempty"`
	PeriodID     string                 `json:"period_id"`
	CompanyID    string                 `json:"company_id"`
	CompanyName  string                 `json:"company_name"`
	CompanyCode  string                 `json:"company_code"`
	Period       string                 `json:"period"`
	DueDate      time.Time              `json:"due_date"`
	Status       string                 `json:"status"`
	SubmittedAt  *time.Time             `json:"submitted_at,omitempty"`
	SubmittedBy  *string                `json:"submitted_by,omitempty"`
	Data         map[string]interface{} `json:"data"`
	FileURL      *string                `json:"file_url,omitempty"`
	Version      int                    `json:"version"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// NewReportResponse maps a model, replacing the stored status with status.
func NewReportResponse(r *model.Report, status string) ReportResponse {
	resp := ReportResponse{
		ID:          r.ReportID,
		TemplateID:  r.TemplateID,
		PeriodID:    r.PeriodID,
		CompanyID:   r.CompanyID,
		CompanyName: r.CompanyName,
		CompanyCode: r.CompanyCode,
		Period:      r.Period,
		DueDate:     r.DueDate,
		Status:      status,
		SubmittedAt: r.SubmittedAt,
		SubmittedBy: r.SubmittedBy,
		Data:        map[string]interface{}(r.Data),
		FileURL:     r.FileURL,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if resp.Data == nil {
		resp.Data = map[string]interface{}{}
	}
	if r.Template != nil {
		resp.TemplateName = r.Template.Name
	}
	return resp
}
