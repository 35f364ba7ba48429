package models

import (
	"time"
)

// AuditLog 操作审计记录
type AuditLog struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string    `gorm:"type:uuid;index" json:"user_id"`
	Action     string    `gorm:"size:64;not null;index" json:"action"`
	EntityType string    `gorm:"size:64" json:"entity_type"`
	EntityID   string    `gorm:"size:64" json:"entity_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
