package compliance

const (
	ContractTypeConstruction    = "construction"
	ContractTypeNonConstruction = "non_construction"
	ContractTypeOther           = "other"

	ContractStatusActive = "active"
)

const (
	SubpartC             = "subpart_c"
	SubpartD             = "subpart_d"
	SubpartNotApplicable = "not_applicable"
)

const (
	TaskTypeDocumentUpload     = "document_upload"
	TaskTypeWorkerVerification = "worker_verification"
	TaskTypeReportSubmission   = "report_submission"

	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"

	RuleOnCreateContract = "onCreateContract"
	RuleOnQuarterEnd     = "onQuarterEnd"
)

const (
	BenchmarkTypeLaborHours    = "labor_hours"
	BenchmarkTypeTargetedHours = "targeted_hours"

	MeasurementUnitPercentage = "percentage"
)

// Period selects the labor summary window.
type Period string

const (
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodTotal     Period = "total"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodMonthly, PeriodQuarterly, PeriodTotal:
		return true
	default:
		return false
	}
}

const (
	NotificationOverdueTask    = "overdue_task"
	NotificationMissingReport  = "missing_report"
	NotificationBelowBenchmark = "below_benchmark"
)

const (
	RoleAdmin             = "admin"
	RoleClientAdmin       = "client_admin"
	RoleComplianceManager = "compliance_manager"
)

const (
	FormTypeQuarterly = "quarterly"
)

const (
	AuditActionTasksGenerated     = "auto_generate_tasks"
	AuditActionBenchmarksCreated  = "create_benchmarks"
	AuditActionApplicabilityCheck = "calculate_applicability"
	AuditActionTaskStatusChanged  = "update_task_status"
	AuditActionTaskAssigned       = "assign_task"
	AuditActionLaborRecorded      = "record_labor_hours"
	AuditActionFormSubmitted      = "submit_compliance_form"
)

// MissingReportRoles are notified when a contract is behind on quarterly reports.
var MissingReportRoles = []string{RoleClientAdmin, RoleComplianceManager}

// BelowBenchmarkRoles are notified when a contract's total-period rate misses its benchmark.
var BelowBenchmarkRoles = []string{RoleClientAdmin, RoleComplianceManager, RoleAdmin}

// OpenTaskStatuses are the statuses the overdue scan considers.
var OpenTaskStatuses = []string{TaskStatusPending, TaskStatusInProgress}
