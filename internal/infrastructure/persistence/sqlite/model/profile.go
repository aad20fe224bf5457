package model

import "time"

type Profile struct {
	UserID    string    `gorm:"column:user_id;type:text;primaryKey"`
	ClientID  string    `gorm:"column:client_id;type:text;not null;index"`
	FullName  string    `gorm:"column:full_name;type:text;not null;default:''"`
	Email     string    `gorm:"column:email;type:text;not null;default:''"`
	Role      string    `gorm:"column:role;type:text;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (Profile) TableName() string {
	return "profiles"
}

type ComplianceForm struct {
	ID          string     `gorm:"column:id;type:text;primaryKey"`
	ContractID  string     `gorm:"column:contract_id;type:text;not null;index"`
	FormType    string     `gorm:"column:form_type;type:text;not null"`
	PeriodStart time.Time  `gorm:"column:period_start;not null"`
	PeriodEnd   time.Time  `gorm:"column:period_end;not null"`
	SubmittedAt *time.Time `gorm:"column:submitted_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null"`
}

func (ComplianceForm) TableName() string {
	return "compliance_forms"
}
