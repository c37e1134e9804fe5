package model

import "time"

// Notification types
const (
	NotificationReminder   = "reminder"
	NotificationSubmission = "submission"
	NotificationLate       = "late"
)

// Notification table notifications. Only IsRead changes after creation.
type Notification struct {
	NotificationID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string    `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Title          string    `gorm:"type:varchar(255);not null"                     json:"title"`
	Message        string    `gorm:"type:text;not null"                             json:"message"`
	Type           string    `gorm:"type:varchar(20);not null"                      json:"type"`
	ReportID       *string   `gorm:"type:uuid"                                      json:"report_id,omitempty"`
	IsRead         bool      `gorm:"not null;default:false"                         json:"read"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName notifications
func (Notification) TableName() string { return "notifications" }
