package model

import (
	"time"

	"gorm.io/datatypes"
)

// Report statuses. StatusOverdue is never stored.
const (
	StatusPending   = "pending"
	StatusSubmitted = "submitted"
	StatusLate      = "late"
	StatusOverdue   = "overdue"
)

// StoredStatus reports whether s may be persisted.
func StoredStatus(s string) bool {
	switch s {
	case StatusPending, StatusSubmitted, StatusLate:
		return true
	}
	return false
}

// Report table reports. CompanyName, CompanyCode, Period and DueDate are
// snapshots taken at fan-out and are not updated when the source rows change.
type Report struct {
	ReportID    string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"report_id"`
	TemplateID  string            `gorm:"type:uuid;not null;index"                       json:"template_id"`
	PeriodID    string            `gorm:"type:uuid;not null;index"                       json:"period_id"`
	CompanyID   string            `gorm:"type:uuid;not null;index"                       json:"company_id"`
	CompanyName string            `gorm:"type:varchar(255);not null"                     json:"company_name"`
	CompanyCode string            `gorm:"type:varchar(20);not null"                      json:"company_code"`
	Period      string            `gorm:"type:varchar(50);not null"                      json:"period"`
	DueDate     time.Time         `gorm:"type:timestamptz;not null"                      json:"due_date"`
	SubmittedAt *time.Time        `gorm:"type:timestamptz"                               json:"submitted_at,omitempty"`
	SubmittedBy *string           `gorm:"type:uuid"                                      json:"submitted_by,omitempty"`
	Status      string            `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	Data        datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"               json:"data"`
	FileURL     *string           `gorm:"type:text"                                      json:"file_url,omitempty"`
	VersionedModel

	Template *ReportTemplate `gorm:"foreignKey:TemplateID;references:TemplateID" json:"template,omitempty"`
}

// TableName reports
func (Report) TableName() string { return "reports" }
