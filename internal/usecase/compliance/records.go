package compliance

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"section3/internal/bootstrap/logging"
	domain "section3/internal/domain/compliance"
	"section3/internal/errs"
	"section3/internal/ports"
)

type AssignTaskInput struct {
	TaskID     string  `json:"task_id"`
	AssigneeID string  `json:"assignee_id"`
	ActorID    *string `json:"actor_id"`
}

type TaskAssignmentResult struct {
	TaskID     string  `json:"task_id"`
	ContractID string  `json:"contract_id"`
	Previous   *string `json:"previous_assignee"`
	AssigneeID string  `json:"assignee_id"`
	Changed    bool    `json:"changed"`
}

type AddWorkerInput struct {
	ClientID                 string `json:"client_id"`
	FullName                 string `json:"full_name"`
	IsSection3Worker         bool   `json:"is_section3_worker"`
	IsTargetedSection3Worker bool   `json:"is_targeted_section3_worker"`
}

type RecordLaborHoursInput struct {
	ContractID  string    `json:"contract_id"`
	WorkerID    string    `json:"worker_id"`
	WorkDate    time.Time `json:"work_date"`
	HoursWorked float64   `json:"hours_worked"`
	ActorID     *string   `json:"actor_id"`
}

type LaborHoursRecorded struct {
	ID          string    `json:"id"`
	ContractID  string    `json:"contract_id"`
	WorkerID    string    `json:"worker_id"`
	WorkDate    time.Time `json:"work_date"`
	HoursWorked float64   `json:"hours_worked"`
}

type AddProfileInput struct {
	UserID   string `json:"user_id"`
	ClientID string `json:"client_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type SubmitComplianceFormInput struct {
	ContractID  string    `json:"contract_id"`
	FormType    string    `json:"form_type"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	ActorID     *string   `json:"actor_id"`
}

// AssignTask hands a task to a user so the overdue scan can notify them.
// Assigning the current assignee again is a no-op.
func (s *Service) AssignTask(ctx context.Context, input AssignTaskInput) (TaskAssignmentResult, error) {
	if err := s.ready(ctx); err != nil {
		return TaskAssignmentResult{}, err
	}

	taskID := strings.TrimSpace(input.TaskID)
	if taskID == "" {
		return TaskAssignmentResult{}, errs.Ef(errs.KindInvalidInput, "task id is required")
	}
	assignee := strings.TrimSpace(input.AssigneeID)
	if assignee == "" {
		return TaskAssignmentResult{}, errs.Ef(errs.KindInvalidInput, "assignee id is required")
	}

	var out TaskAssignmentResult
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		tasks, err := s.repo.ListTasks(txCtx, ports.TaskFilter{ID: taskID})
		if err != nil {
			return errs.Wrap(err, "load task")
		}
		if len(tasks) == 0 {
			return errs.Ef(errs.KindNotFound, "task %s not found", taskID)
		}
		task := tasks[0]

		out = TaskAssignmentResult{
			TaskID:     task.ID,
			ContractID: task.ContractID,
			Previous:   task.AssignedTo,
			AssigneeID: assignee,
		}
		if task.AssignedTo != nil && *task.AssignedTo == assignee {
			return nil
		}

		if err := s.repo.AssignTask(txCtx, task.ID, assignee); err != nil {
			return errs.Wrap(err, "assign task")
		}
		if err := s.repo.AppendAuditLog(txCtx, ports.AuditLogEntry{
			UserID:      input.ActorID,
			ContractID:  stringPtr(task.ContractID),
			ActionType:  domain.AuditActionTaskAssigned,
			Description: "Task " + task.Title + " assigned to " + assignee,
			Metadata: map[string]any{
				"task_id":  task.ID,
				"assignee": assignee,
			},
			CreatedAt: s.now(),
		}); err != nil {
			return errs.Wrap(err, "audit task assignment")
		}
		out.Changed = true
		return nil
	})
	if err != nil {
		return TaskAssignmentResult{}, err
	}

	logging.Info(logContext(ctx, "usecase.compliance.records"), "task assigned",
		slog.String("task_id", out.TaskID),
		slog.String("assignee_id", out.AssigneeID),
		slog.Bool("changed", out.Changed),
	)
	return out, nil
}

// AddWorker stores a worker of a client. Targeted Section 3 workers are a
// subset of Section 3 workers.
func (s *Service) AddWorker(ctx context.Context, input AddWorkerInput) (ports.Worker, error) {
	if err := s.ready(ctx); err != nil {
		return ports.Worker{}, err
	}

	clientID := strings.TrimSpace(input.ClientID)
	name := strings.TrimSpace(input.FullName)
	if clientID == "" || name == "" {
		return ports.Worker{}, errs.Ef(errs.KindInvalidInput, "client id and full name are required")
	}
	if input.IsTargetedSection3Worker && !input.IsSection3Worker {
		return ports.Worker{}, errs.Ef(errs.KindInvalidInput, "a targeted Section 3 worker must also be a Section 3 worker")
	}

	worker, err := s.repo.CreateWorker(ctx, ports.Worker{
		ClientID:                 clientID,
		FullName:                 name,
		IsSection3Worker:         input.IsSection3Worker,
		IsTargetedSection3Worker: input.IsTargetedSection3Worker,
	})
	if err != nil {
		return ports.Worker{}, errs.Wrap(err, "add worker")
	}
	return worker, nil
}

// RecordLaborHours stores hours one worker spent on a contract on one day.
func (s *Service) RecordLaborHours(ctx context.Context, input RecordLaborHoursInput) (LaborHoursRecorded, error) {
	if err := s.ready(ctx); err != nil {
		return LaborHoursRecorded{}, err
	}

	contractID := strings.TrimSpace(input.ContractID)
	workerID := strings.TrimSpace(input.WorkerID)
	if contractID == "" || workerID == "" {
		return LaborHoursRecorded{}, errs.Ef(errs.KindInvalidInput, "contract id and worker id are required")
	}
	if input.WorkDate.IsZero() {
		return LaborHoursRecorded{}, errs.Ef(errs.KindInvalidInput, "work date is required")
	}
	if input.HoursWorked < 0 {
		return LaborHoursRecorded{}, errs.E(errs.KindInvalidInput, domain.ErrNegativeHours)
	}
	if input.HoursWorked == 0 || input.HoursWorked > 24 {
		return LaborHoursRecorded{}, errs.Ef(errs.KindInvalidInput, "hours worked must be within (0, 24], got %v", input.HoursWorked)
	}

	record := LaborHoursRecorded{
		ID:          uuid.NewString(),
		ContractID:  contractID,
		WorkerID:    workerID,
		WorkDate:    domain.StartOfDay(input.WorkDate),
		HoursWorked: input.HoursWorked,
	}
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetContract(txCtx, contractID); err != nil {
			return err
		}
		if err := s.repo.CreateLaborHours(txCtx, []ports.LaborHoursRecord{{
			ID:          record.ID,
			ContractID:  record.ContractID,
			WorkerID:    record.WorkerID,
			WorkDate:    record.WorkDate,
			HoursWorked: record.HoursWorked,
		}}); err != nil {
			return errs.Wrap(err, "insert labor hours")
		}
		return s.repo.AppendAuditLog(txCtx, ports.AuditLogEntry{
			UserID:      input.ActorID,
			ContractID:  stringPtr(contractID),
			ActionType:  domain.AuditActionLaborRecorded,
			Description: "Labor hours recorded for " + record.WorkDate.Format("2006-01-02"),
			Metadata: map[string]any{
				"labor_hours_id": record.ID,
				"worker_id":      workerID,
				"hours_worked":   record.HoursWorked,
			},
			CreatedAt: s.now(),
		})
	})
	if err != nil {
		return LaborHoursRecorded{}, errs.Wrap(err, "record labor hours")
	}
	return record, nil
}

// AddProfile stores or refreshes the profile that decides who receives
// contract-level notifications.
func (s *Service) AddProfile(ctx context.Context, input AddProfileInput) (ports.Profile, error) {
	if err := s.ready(ctx); err != nil {
		return ports.Profile{}, err
	}

	profile := ports.Profile{
		UserID:   strings.TrimSpace(input.UserID),
		ClientID: strings.TrimSpace(input.ClientID),
		FullName: strings.TrimSpace(input.FullName),
		Email:    strings.TrimSpace(input.Email),
		Role:     strings.ToLower(strings.TrimSpace(input.Role)),
	}
	if profile.UserID == "" || profile.ClientID == "" || profile.Role == "" {
		return ports.Profile{}, errs.Ef(errs.KindInvalidInput, "user id, client id and role are required")
	}
	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		return ports.Profile{}, errs.Wrap(err, "add profile")
	}
	return profile, nil
}

// SubmitComplianceForm records a submitted report. Quarterly forms count
// toward the missing report scan.
func (s *Service) SubmitComplianceForm(ctx context.Context, input SubmitComplianceFormInput) (ports.ComplianceForm, error) {
	if err := s.ready(ctx); err != nil {
		return ports.ComplianceForm{}, err
	}

	contractID := strings.TrimSpace(input.ContractID)
	if contractID == "" {
		return ports.ComplianceForm{}, errContractRequired
	}
	formType := strings.ToLower(strings.TrimSpace(input.FormType))
	if formType == "" {
		formType = domain.FormTypeQuarterly
	}
	if input.PeriodStart.IsZero() || input.PeriodEnd.IsZero() {
		return ports.ComplianceForm{}, errs.Ef(errs.KindInvalidInput, "form period start and end are required")
	}
	if input.PeriodEnd.Before(input.PeriodStart) {
		return ports.ComplianceForm{}, errs.Ef(errs.KindInvalidInput, "form period end is before its start")
	}

	submittedAt := s.now()
	var out ports.ComplianceForm
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetContract(txCtx, contractID); err != nil {
			return err
		}
		form, err := s.repo.CreateComplianceForm(txCtx, ports.ComplianceForm{
			ContractID:  contractID,
			FormType:    formType,
			PeriodStart: domain.StartOfDay(input.PeriodStart),
			PeriodEnd:   domain.StartOfDay(input.PeriodEnd),
			SubmittedAt: &submittedAt,
		})
		if err != nil {
			return errs.Wrap(err, "insert compliance form")
		}
		out = form
		return s.repo.AppendAuditLog(txCtx, ports.AuditLogEntry{
			UserID:      input.ActorID,
			ContractID:  stringPtr(contractID),
			ActionType:  domain.AuditActionFormSubmitted,
			Description: "Compliance form " + formType + " submitted",
			Metadata: map[string]any{
				"form_id":   form.ID,
				"form_type": formType,
			},
			CreatedAt: submittedAt,
		})
	})
	if err != nil {
		return ports.ComplianceForm{}, errs.Wrap(err, "submit compliance form")
	}

	logging.Info(logContext(ctx, "usecase.compliance.records"), "compliance form submitted",
		slog.String("contract_id", contractID),
		slog.String("form_type", formType),
	)
	return out, nil
}
