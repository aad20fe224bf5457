package compliance

import (
	"context"
	"log/slog"
	"strings"

	"section3/internal/bootstrap/logging"
	domain "section3/internal/domain/compliance"
	"section3/internal/errs"
	"section3/internal/ports"
)

type UpdateTaskStatusInput struct {
	TaskID  string  `json:"task_id"`
	Status  string  `json:"status"`
	ActorID *string `json:"actor_id"`
}

type TaskStatusResult struct {
	TaskID     string `json:"task_id"`
	ContractID string `json:"contract_id"`
	Previous   string `json:"previous_status"`
	Status     string `json:"status"`
	Changed    bool   `json:"changed"`
}

// UpdateTaskStatus moves a task to a new status and audits the change.
// Setting the current status again is a no-op.
func (s *Service) UpdateTaskStatus(ctx context.Context, input UpdateTaskStatusInput) (TaskStatusResult, error) {
	if err := s.ready(ctx); err != nil {
		return TaskStatusResult{}, err
	}

	taskID := strings.TrimSpace(input.TaskID)
	if taskID == "" {
		return TaskStatusResult{}, errs.Ef(errs.KindInvalidInput, "task id is required")
	}
	status, err := domain.NormalizeTaskStatus(input.Status)
	if err != nil {
		return TaskStatusResult{}, errs.E(errs.KindInvalidInput, err)
	}

	logCtx := logContext(ctx, "usecase.compliance.task_status")

	var out TaskStatusResult
	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		tasks, err := s.repo.ListTasks(txCtx, ports.TaskFilter{ID: taskID})
		if err != nil {
			return errs.Wrap(err, "load task")
		}
		if len(tasks) == 0 {
			return errs.Ef(errs.KindNotFound, "task %s not found", taskID)
		}
		task := tasks[0]

		out = TaskStatusResult{
			TaskID:     task.ID,
			ContractID: task.ContractID,
			Previous:   task.Status,
			Status:     status,
		}
		if task.Status == status {
			return nil
		}

		if err := s.repo.UpdateTaskStatus(txCtx, task.ID, status); err != nil {
			return errs.Wrap(err, "update task status")
		}
		if err := s.repo.AppendAuditLog(txCtx, ports.AuditLogEntry{
			UserID:      input.ActorID,
			ContractID:  stringPtr(task.ContractID),
			ActionType:  domain.AuditActionTaskStatusChanged,
			Description: "Task " + task.Title + " moved from " + task.Status + " to " + status,
			Metadata: map[string]any{
				"task_id": task.ID,
				"from":    task.Status,
				"to":      status,
			},
			CreatedAt: s.now(),
		}); err != nil {
			return errs.Wrap(err, "audit task status")
		}
		out.Changed = true
		return nil
	})
	if err != nil {
		return TaskStatusResult{}, err
	}

	logging.Info(
		logCtx,
		"task status updated",
		slog.String("task_id", out.TaskID),
		slog.String("status", out.Status),
		slog.Bool("changed", out.Changed),
	)
	return out, nil
}
