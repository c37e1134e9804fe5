package model

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions
const (
	AuditForceStatus = "report.force_status"
)

// AuditLog table audit_logs. Append-only.
type AuditLog struct {
	AuditLogID string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"audit_log_id"`
	ActorID    string            `gorm:"type:uuid;not null"                             json:"actor_id"`
	Action     string            `gorm:"type:varchar(50);not null"                      json:"action"`
	EntityType string            `gorm:"type:varchar(50);not null"                      json:"entity_type"`
	EntityID   string            `gorm:"type:uuid;not null"                             json:"entity_id"`
	Detail     datatypes.JSONMap `gorm:"type:jsonb"                                     json:"detail,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName audit_logs
func (AuditLog) TableName() string { return "audit_logs" }
