package model

import "time"

type Contract struct {
	ID               string    `gorm:"column:id;type:text;primaryKey"`
	ClientID         string    `gorm:"column:client_id;type:text;not null;index"`
	ContractNumber   string    `gorm:"column:contract_number;type:text;not null;default:''"`
	Title            string    `gorm:"column:title;type:text;not null;default:''"`
	ContractType     string    `gorm:"column:contract_type;type:text;not null"`
	HUDFundingAmount *float64  `gorm:"column:hud_funding_amount"`
	TotalProjectCost *float64  `gorm:"column:total_project_cost"`
	StartDate        time.Time `gorm:"column:start_date;not null"`
	EndDate          time.Time `gorm:"column:end_date;not null"`
	Status           string    `gorm:"column:status;type:text;not null;index"`

	Section3Applicable        *bool      `gorm:"column:section3_applicable;index"`
	ApplicabilitySubpart      *string    `gorm:"column:applicability_subpart;type:text"`
	ApplicabilityThreshold    *float64   `gorm:"column:applicability_threshold"`
	LaborHourBenchmark        *float64   `gorm:"column:labor_hour_benchmark"`
	TargetedSection3Benchmark *float64   `gorm:"column:targeted_section3_benchmark"`
	ApplicabilityReason       *string    `gorm:"column:applicability_reason;type:text"`
	ApplicabilityCalculatedAt *time.Time `gorm:"column:applicability_calculated_at"`

	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (Contract) TableName() string {
	return "contracts"
}
