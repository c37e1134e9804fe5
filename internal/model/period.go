package model

import "time"

// ReportPeriod table report_periods. One reporting cycle of a template.
type ReportPeriod struct {
	PeriodID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"period_id"`
	TemplateID string    `gorm:"type:uuid;not null;index"                       json:"template_id"`
	Period     string    `gorm:"type:varchar(50);not null"                      json:"period"`
	DueDate    time.Time `gorm:"type:timestamptz;not null"                      json:"due_date"`
	IsActive   bool      `gorm:"not null"                                       json:"is_active"`
	CreatedBy  *string   `gorm:"type:uuid"                                      json:"created_by,omitempty"`
	BaseModel

	Template *ReportTemplate `gorm:"foreignKey:TemplateID;references:TemplateID" json:"template,omitempty"`
}

// TableName report_periods
func (ReportPeriod) TableName() string { return "report_periods" }
