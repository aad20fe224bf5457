package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"section3/internal/bootstrap/logging"
	domain "section3/internal/domain/compliance"
	"section3/internal/errs"
	"section3/internal/ports"
)

const JobQuarterlyReminders = "quarterly_reminders"

type ReminderResult struct {
	Quarter          string    `json:"quarter"`
	DueDate          time.Time `json:"due_date"`
	ContractsScanned int       `json:"contracts_scanned"`
	TasksCreated     int       `json:"tasks_created"`
}

// GenerateQuarterlyReportReminders queues one report_submission task per
// active applicable contract that has none due between the current quarter end
// and the reminder due date.
func (s *Service) GenerateQuarterlyReportReminders(ctx context.Context) (ReminderResult, error) {
	if err := s.ready(ctx); err != nil {
		return ReminderResult{}, err
	}

	started := s.now()
	result, err := s.generateQuarterlyReminders(ctx)
	s.recordJob(ctx, JobQuarterlyReminders, started, result.TasksCreated, err)
	if err != nil {
		return ReminderResult{}, errs.Wrap(err, "generate quarterly report reminders")
	}
	return result, nil
}

func (s *Service) generateQuarterlyReminders(ctx context.Context) (ReminderResult, error) {
	logCtx := logContext(ctx, "usecase.quarterly_reminders")

	applicable := true
	contracts, err := s.repo.ListContracts(ctx, ports.ContractFilter{
		Section3Applicable: &applicable,
		Status:             domain.ContractStatusActive,
	})
	if err != nil {
		return ReminderResult{}, err
	}

	now := s.now()
	year, quarter := domain.Quarter(now)
	quarterEnd := domain.QuarterEnd(now)
	dueDate := quarterEnd.AddDate(0, 0, s.rules.QuarterlyReportDueDays)
	title := domain.QuarterlyReminderTitle(year, quarter)

	result := ReminderResult{
		Quarter:          fmt.Sprintf("%dQ%d", year, quarter),
		DueDate:          dueDate,
		ContractsScanned: len(contracts),
	}

	queued := make([]ports.Task, 0, len(contracts))
	for _, contract := range contracts {
		existing, err := s.repo.CountTasks(ctx, ports.TaskFilter{
			ContractID:    contract.ID,
			TaskType:      domain.TaskTypeReportSubmission,
			DueOnOrAfter:  &quarterEnd,
			DueOnOrBefore: &dueDate,
		})
		if err != nil {
			return ReminderResult{}, errs.Wrapf(err, "check reminders for contract %s", contract.ID)
		}
		if existing > 0 {
			continue
		}
		queued = append(queued, ports.Task{
			ContractID:         contract.ID,
			ClientID:           contract.ClientID,
			TaskType:           domain.TaskTypeReportSubmission,
			Title:              title,
			Description:        fmt.Sprintf("Submit the Section 3 quarterly report for contract %s covering Q%d %d.", contract.Label(), quarter, year),
			DueDate:            dueDate,
			Priority:           domain.PriorityMedium,
			IsAutoGenerated:    true,
			AutoGenerationRule: domain.RuleOnQuarterEnd,
			GenerationKey:      domain.QuarterlyGenerationKey(contract.ID, year, quarter),
			Status:             domain.TaskStatusPending,
		})
	}

	created, err := s.repo.CreateTasks(ctx, queued)
	if err != nil {
		return ReminderResult{}, errs.Wrap(err, "insert quarterly reminders")
	}
	result.TasksCreated = created

	logging.Info(logCtx, "quarterly reminders generated",
		slog.String("quarter", result.Quarter),
		slog.Int("contracts_scanned", result.ContractsScanned),
		slog.Int("tasks_created", created),
	)
	return result, nil
}
