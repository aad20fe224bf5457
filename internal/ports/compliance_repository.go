package ports

import (
	"context"
	"errors"
	"time"

	"section3/internal/errs"
)

var ErrContractNotFound = errs.E(errs.KindNotFound, errors.New("contract not found"))

type Contract struct {
	ID               string    `json:"id"`
	ClientID         string    `json:"client_id"`
	ContractNumber   string    `json:"contract_number"`
	Title            string    `json:"title"`
	ContractType     string    `json:"contract_type"`
	HUDFundingAmount *float64  `json:"hud_funding_amount"`
	TotalProjectCost *float64  `json:"total_project_cost"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	Status           string    `json:"status"`
	// Applicability is nil until the contract has been evaluated.
	Applicability  *ContractApplicability `json:"applicability,omitempty"`
	FundingSources []FundingSource        `json:"funding_sources"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// Label is the human handle used in notifications.
func (c Contract) Label() string {
	if c.ContractNumber != "" {
		return c.ContractNumber
	}
	if c.Title != "" {
		return c.Title
	}
	return c.ID
}

type ContractApplicability struct {
	Section3Applicable bool      `json:"section3_applicable"`
	Subpart            string    `json:"subpart"`
	Threshold          float64   `json:"threshold"`
	LaborHourBenchmark float64   `json:"labor_hour_benchmark"`
	TargetedBenchmark  float64   `json:"targeted_benchmark"`
	Reason             string    `json:"reason"`
	CalculatedAt       time.Time `json:"calculated_at"`
}

type FundingSource struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	DefaultThreshold float64 `json:"default_threshold"`
	Subpart          string  `json:"subpart"`
}

type Task struct {
	ID                 string
	ContractID         string
	ClientID           string
	AssignedTo         *string
	TaskType           string
	Title              string
	Description        string
	DueDate            time.Time
	Priority           string
	IsAutoGenerated    bool
	AutoGenerationRule string
	// GenerationKey is unique when set; auto-generated tasks use it to stay idempotent.
	GenerationKey string
	Status        string
	CreatedAt     time.Time
}

type Benchmark struct {
	ID               string
	ContractID       string
	BenchmarkType    string
	Name             string
	TargetPercentage float64
	MeasurementUnit  string
	PeriodStart      time.Time
	PeriodEnd        time.Time
	Description      string
}

type Worker struct {
	ID                       string
	ClientID                 string
	FullName                 string
	IsSection3Worker         bool
	IsTargetedSection3Worker bool
}

type LaborHoursRecord struct {
	ID          string
	ContractID  string
	WorkerID    string
	WorkDate    time.Time
	HoursWorked float64
	// Worker is nil when the referenced worker row does not exist.
	Worker *Worker
}

type LaborSummary struct {
	ID                     string    `json:"id"`
	ContractID             string    `json:"contract_id"`
	PeriodType             string    `json:"period_type"`
	PeriodStart            time.Time `json:"period_start"`
	PeriodEnd              time.Time `json:"period_end"`
	TotalHours             float64   `json:"total_hours"`
	Section3Hours          float64   `json:"section3_hours"`
	TargetedHours          float64   `json:"targeted_hours"`
	TotalWorkers           int       `json:"total_workers"`
	Section3Workers        int       `json:"section3_workers"`
	TargetedWorkers        int       `json:"targeted_workers"`
	Section3ComplianceRate float64   `json:"section3_compliance_rate"`
	TargetedComplianceRate float64   `json:"targeted_compliance_rate"`
	MeetsSection3Benchmark bool      `json:"meets_section3_benchmark"`
	MeetsTargetedBenchmark bool      `json:"meets_targeted_benchmark"`
	LastCalculatedAt       time.Time `json:"last_calculated_at"`
}

type Notification struct {
	ID                string
	UserID            string
	Type              string
	Title             string
	Message           string
	Priority          string
	RelatedContractID *string
	RelatedTaskID     *string
	IsRead            bool
	CreatedAt         time.Time
}

type AuditLogEntry struct {
	ID string
	// UserID is nil for system actions.
	UserID      *string
	ContractID  *string
	ActionType  string
	Description string
	Metadata    map[string]any
	CreatedAt   time.Time
}

type Profile struct {
	UserID   string
	ClientID string
	FullName string
	Email    string
	Role     string
}

type ComplianceForm struct {
	ID          string
	ContractID  string
	FormType    string
	PeriodStart time.Time
	PeriodEnd   time.Time
	SubmittedAt *time.Time
}

type ContractFilter struct {
	Section3Applicable *bool
	Status             string
}

type TaskFilter struct {
	ID                 string
	ContractID         string
	TaskType           string
	AutoGenerationRule string
	Statuses           []string
	DueOnOrBefore      *time.Time
	DueOnOrAfter       *time.Time
}

type LaborSummaryFilter struct {
	ContractID string
	PeriodType string
}

type NotificationFilter struct {
	UserID            string
	Type              string
	RelatedContractID string
}

type ComplianceReadRepository interface {
	GetContract(ctx context.Context, contractID string) (Contract, error)
	ListContracts(ctx context.Context, filter ContractFilter) ([]Contract, error)
	ListFundingSourcesByName(ctx context.Context, names []string) ([]FundingSource, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error)
	CountTasks(ctx context.Context, filter TaskFilter) (int64, error)
	ListBenchmarks(ctx context.Context, contractID string) ([]Benchmark, error)
	ListLaborHours(ctx context.Context, contractID string, from, to time.Time) ([]LaborHoursRecord, error)
	ListLaborSummaries(ctx context.Context, filter LaborSummaryFilter) ([]LaborSummary, error)
	ListProfilesForClient(ctx context.Context, clientID string, roles []string) ([]Profile, error)
	CountComplianceForms(ctx context.Context, contractID string, formType string) (int64, error)
	ListNotifications(ctx context.Context, filter NotificationFilter) ([]Notification, error)
	ListAuditLogs(ctx context.Context, contractID string) ([]AuditLogEntry, error)
}

type ComplianceRepository interface {
	ComplianceReadRepository
	CreateContract(ctx context.Context, contract Contract, fundingSourceIDs []string) (Contract, error)
	UpdateContractApplicability(ctx context.Context, contractID string, applicability ContractApplicability) error
	UpsertFundingSources(ctx context.Context, sources []FundingSource) (int, error)
	// CreateTasks inserts the batch in one statement and skips rows whose generation key exists.
	CreateTasks(ctx context.Context, tasks []Task) (int, error)
	UpdateTaskStatus(ctx context.Context, taskID string, status string) error
	AssignTask(ctx context.Context, taskID string, assigneeID string) error
	CreateBenchmarks(ctx context.Context, benchmarks []Benchmark) (int, error)
	UpsertLaborSummary(ctx context.Context, summary LaborSummary) (LaborSummary, error)
	CreateNotifications(ctx context.Context, notifications []Notification) ([]Notification, error)
	AppendAuditLog(ctx context.Context, entry AuditLogEntry) error
	CreateWorker(ctx context.Context, worker Worker) (Worker, error)
	CreateLaborHours(ctx context.Context, records []LaborHoursRecord) error
	CreateProfile(ctx context.Context, profile Profile) error
	CreateComplianceForm(ctx context.Context, form ComplianceForm) (ComplianceForm, error)
}
