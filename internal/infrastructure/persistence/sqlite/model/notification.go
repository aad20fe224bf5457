package model

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	ID                string    `gorm:"column:id;type:text;primaryKey"`
	UserID            string    `gorm:"column:user_id;type:text;not null;index"`
	NotificationType  string    `gorm:"column:notification_type;type:text;not null;index"`
	Title             string    `gorm:"column:title;type:text;not null"`
	Message           string    `gorm:"column:message;type:text;not null"`
	Priority          string    `gorm:"column:priority;type:text;not null"`
	RelatedContractID *string   `gorm:"column:related_contract_id;type:text;index"`
	RelatedTaskID     *string   `gorm:"column:related_task_id;type:text"`
	IsRead            bool      `gorm:"column:is_read;not null;default:false"`
	CreatedAt         time.Time `gorm:"column:created_at;not null"`
}

func (Notification) TableName() string {
	return "notifications"
}

// AuditLog is append-only.
type AuditLog struct {
	ID          string            `gorm:"column:id;type:text;primaryKey"`
	UserID      *string           `gorm:"column:user_id;type:text"`
	ContractID  *string           `gorm:"column:contract_id;type:text;index"`
	ActionType  string            `gorm:"column:action_type;type:text;not null"`
	Description string            `gorm:"column:description;type:text;not null"`
	Metadata    datatypes.JSONMap `gorm:"column:metadata"`
	CreatedAt   time.Time         `gorm:"column:created_at;not null;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
