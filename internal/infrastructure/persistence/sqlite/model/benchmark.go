package model

import "time"

type Benchmark struct {
	ID               string    `gorm:"column:id;type:text;primaryKey"`
	ContractID       string    `gorm:"column:contract_id;type:text;not null;uniqueIndex:idx_benchmarks_contract_type"`
	BenchmarkType    string    `gorm:"column:benchmark_type;type:text;not null;uniqueIndex:idx_benchmarks_contract_type"`
	Name             string    `gorm:"column:name;type:text;not null"`
	TargetPercentage float64   `gorm:"column:target_percentage;not null"`
	MeasurementUnit  string    `gorm:"column:measurement_unit;type:text;not null"`
	PeriodStart      time.Time `gorm:"column:period_start;not null"`
	PeriodEnd        time.Time `gorm:"column:period_end;not null"`
	Description      string    `gorm:"column:description;type:text;not null;default:''"`
	CreatedAt        time.Time `gorm:"column:created_at;not null"`
}

func (Benchmark) TableName() string {
	return "benchmarks"
}
