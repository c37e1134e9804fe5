package dto

import "github.com/blackrosevn/Dev02-Reporting/internal/model"

// ── Templates ──

// TemplateListRequest GET /templates
type TemplateListRequest struct {
	ActiveOnly bool `form:"active_only"`
}

// CreateTemplateRequest POST /templates
type CreateTemplateRequest struct {
	Name               string            `json:"name"                 binding:"required,max=255"`
	Description        *string           `json:"description"`
	Fields             []model.FieldSpec `json:"fields"               binding:"required,min=1"`
	Department         string            `json:"department"           binding:"required,max=100"`
	RequiredUnits      []string          `json:"required_units"       binding:"required,min=1,dive,company_code"`
	PeriodType         string            `json:"period_type"          binding:"required,oneof=annual quarterly monthly"`
	DaysBeforeReminder *int              `json:"days_before_reminder" binding:"omitempty,min=1,max=365"`
	SharePointPath     *string           `json:"sharepoint_path"      binding:"omitempty,max=500"`
}
