package model

import "time"

type Worker struct {
	ID                       string    `gorm:"column:id;type:text;primaryKey"`
	ClientID                 string    `gorm:"column:client_id;type:text;not null;default:'';index"`
	FullName                 string    `gorm:"column:full_name;type:text;not null"`
	IsSection3Worker         bool      `gorm:"column:is_section3_worker;not null;default:false"`
	IsTargetedSection3Worker bool      `gorm:"column:is_targeted_section3_worker;not null;default:false"`
	CreatedAt                time.Time `gorm:"column:created_at;not null"`
}

func (Worker) TableName() string {
	return "workers"
}

// LaborHours references exactly one worker; the worker row may be missing.
type LaborHours struct {
	ID          string    `gorm:"column:id;type:text;primaryKey"`
	ContractID  string    `gorm:"column:contract_id;type:text;not null;index"`
	WorkerID    string    `gorm:"column:worker_id;type:text;not null;index"`
	WorkDate    time.Time `gorm:"column:work_date;not null;index"`
	HoursWorked float64   `gorm:"column:hours_worked;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

func (LaborHours) TableName() string {
	return "labor_hours"
}

type ContractLaborSummary struct {
	ID                     string    `gorm:"column:id;type:text;primaryKey"`
	ContractID             string    `gorm:"column:contract_id;type:text;not null;uniqueIndex:idx_labor_summary_period"`
	PeriodType             string    `gorm:"column:period_type;type:text;not null;uniqueIndex:idx_labor_summary_period"`
	PeriodStart            time.Time `gorm:"column:period_start;not null;uniqueIndex:idx_labor_summary_period"`
	PeriodEnd              time.Time `gorm:"column:period_end;not null;uniqueIndex:idx_labor_summary_period"`
	TotalHours             float64   `gorm:"column:total_hours;not null"`
	Section3Hours          float64   `gorm:"column:section3_hours;not null"`
	TargetedHours          float64   `gorm:"column:targeted_hours;not null"`
	TotalWorkers           int       `gorm:"column:total_workers;not null"`
	Section3Workers        int       `gorm:"column:section3_workers;not null"`
	TargetedWorkers        int       `gorm:"column:targeted_workers;not null"`
	Section3ComplianceRate float64   `gorm:"column:section3_compliance_rate;not null"`
	TargetedComplianceRate float64   `gorm:"column:targeted_compliance_rate;not null"`
	MeetsSection3Benchmark bool      `gorm:"column:meets_section3_benchmark;not null;index"`
	MeetsTargetedBenchmark bool      `gorm:"column:meets_targeted_benchmark;not null"`
	LastCalculatedAt       time.Time `gorm:"column:last_calculated_at;not null"`
}

func (ContractLaborSummary) TableName() string {
	return "contract_labor_summaries"
}
