package model

import "time"

type Task struct {
	ID                 string    `gorm:"column:id;type:text;primaryKey"`
	ContractID         string    `gorm:"column:contract_id;type:text;not null;index"`
	ClientID           string    `gorm:"column:client_id;type:text;not null;index"`
	AssignedTo         *string   `gorm:"column:assigned_to;type:text"`
	TaskType           string    `gorm:"column:task_type;type:text;not null"`
	Title              string    `gorm:"column:title;type:text;not null"`
	Description        string    `gorm:"column:description;type:text;not null;default:''"`
	DueDate            time.Time `gorm:"column:due_date;not null;index"`
	Priority           string    `gorm:"column:priority;type:text;not null"`
	IsAutoGenerated    bool      `gorm:"column:is_auto_generated;not null;default:false"`
	AutoGenerationRule string    `gorm:"column:auto_generation_rule;type:text;not null;default:''"`
	GenerationKey      *string   `gorm:"column:generation_key;type:text;uniqueIndex"`
	Status             string    `gorm:"column:status;type:text;not null;index"`
	CreatedAt          time.Time `gorm:"column:created_at;not null"`
	UpdatedAt          time.Time `gorm:"column:updated_at;not null"`
}

func (Task) TableName() string {
	return "tasks"
}
