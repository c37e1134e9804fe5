package model

import (
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Field types
const (
	FieldText     = "text"
	FieldNumber   = "number"
	FieldDate     = "date"
	FieldSelect   = "select"
	FieldTextarea = "textarea"
)

// Period types
const (
	PeriodAnnual    = "annual"
	PeriodQuarterly = "quarterly"
	PeriodMonthly   = "monthly"
)

// DefaultSheet is used for fields without an explicit sheet.
const DefaultSheet = "Sheet1"

// FieldSpec describes one input of a template form.
type FieldSpec struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Options     []string `json:"options,omitempty"`
	Sheet       string   `json:"sheet,omitempty"`
	ExcelColumn string   `json:"excel_column,omitempty"`
}

// SheetName returns the field's sheet or DefaultSheet.
func (f FieldSpec) SheetName() string {
	if f.Sheet == "" {
		return DefaultSheet
	}
	return f.Sheet
}

// ReportTemplate table report_templates.
type ReportTemplate struct {
	TemplateID         string                         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"template_id"`
	Name               string                         `gorm:"type:varchar(255);not null"                     json:"name"`
	Description        *string                        `gorm:"type:text"                                      json:"description,omitempty"`
	Fields             datatypes.JSONSlice[FieldSpec] `gorm:"type:jsonb;not null"                            json:"fields"`
	Department         string                         `gorm:"type:varchar(100);not null"                     json:"department"`
	RequiredUnits      pq.StringArray                 `gorm:"type:text[];not null"                           json:"required_units"`
	PeriodType         string                         `gorm:"type:varchar(20);not null"                      json:"period_type"`
	DaysBeforeReminder int                            `gorm:"not null;default:7"                             json:"days_before_reminder"`
	SharePointPath     *string                        `gorm:"type:varchar(500)"                              json:"sharepoint_path,omitempty"`
	IsActive           bool                           `gorm:"not null"                                       json:"is_active"`
	CreatedBy          string                         `gorm:"type:uuid;not null"                             json:"created_by"`
	BaseModel
}

// TableName report_templates
func (ReportTemplate) TableName() string { return "report_templates" }

// Requires reports whether code is in the template's required units.
func (t *ReportTemplate) Requires(code string) bool {
	for _, u := range t.RequiredUnits {
		if u == code {
			return true
		}
	}
	return false
}
