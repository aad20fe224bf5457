package model

import "time"

type FundingSource struct {
	ID               string    `gorm:"column:id;type:text;primaryKey"`
	Name             string    `gorm:"column:name;type:text;not null;uniqueIndex"`
	SourceType       string    `gorm:"column:source_type;type:text;not null;default:''"`
	DefaultThreshold float64   `gorm:"column:default_threshold;not null;default:0"`
	Subpart          string    `gorm:"column:subpart;type:text;not null;default:''"`
	CreatedAt        time.Time `gorm:"column:created_at;not null"`
	UpdatedAt        time.Time `gorm:"column:updated_at;not null"`
}

func (FundingSource) TableName() string {
	return "funding_sources"
}

// ContractFundingSource links a contract to its funding sources in attachment order.
type ContractFundingSource struct {
	ContractID      string `gorm:"column:contract_id;type:text;primaryKey"`
	FundingSourceID string `gorm:"column:funding_source_id;type:text;primaryKey"`
	Position        int    `gorm:"column:position;not null;default:0"`
}

func (ContractFundingSource) TableName() string {
	return "contract_funding_sources"
}
