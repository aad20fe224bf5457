package compliance

import (
	"context"
	"testing"
	"time"

	domain "section3/internal/domain/compliance"
	"section3/internal/ports"
)

func TestGenerateQuarterlyReportRemindersIsIdempotent(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	first := seedContract(t, env, ports.Contract{
		ContractNumber: "HA-1",
		ContractType:   domain.ContractTypeConstruction,
		StartDate:      day(2026, time.January, 1),
		EndDate:        day(2027, time.December, 31),
	})
	second := seedContract(t, env, ports.Contract{
		ContractNumber: "HA-2",
		ContractType:   domain.ContractTypeConstruction,
		StartDate:      day(2026, time.February, 1),
		EndDate:        day(2027, time.December, 31),
	})
	seedContract(t, env, ports.Contract{
		ContractNumber: "HA-not-evaluated",
		ContractType:   domain.ContractTypeConstruction,
		StartDate:      day(2026, time.February, 1),
		EndDate:        day(2027, time.December, 31),
	})
	closed := seedContract(t, env, ports.Contract{
		ContractNumber: "HA-closed",
		ContractType:   domain.ContractTypeConstruction,
		StartDate:      day(2025, time.February, 1),
		EndDate:        day(2026, time.March, 31),
		Status:         "closed",
	})
	for _, id := range []string{first.ID, second.ID, closed.ID} {
		markApplicable(t, env, id)
	}

	result, err := env.svc.GenerateQuarterlyReportReminders(ctx)
	if err != nil {
		t.Fatalf("GenerateQuarterlyReportReminders() error = %v", err)
	}
	if result.TasksCreated != 2 || result.ContractsScanned != 2 || result.Quarter != "2026Q4" {
		t.Fatalf("GenerateQuarterlyReportReminders() = %#v", result)
	}
	if !result.DueDate.Equal(day(2027, time.January, 15)) {
		t.Fatalf("due date = %s", result.DueDate)
	}

	again, err := env.svc.GenerateQuarterlyReportReminders(ctx)
	if err != nil {
		t.Fatalf("GenerateQuarterlyReportReminders(second) error = %v", err)
	}
	if again.TasksCreated != 0 {
		t.Fatalf("GenerateQuarterlyReportReminders(second) created = %d", again.TasksCreated)
	}

	tasks, err := env.repo.ListTasks(ctx, ports.TaskFilter{ContractID: first.ID, AutoGenerationRule: domain.RuleOnQuarterEnd})
	if err != nil || len(tasks) != 1 {
		t.Fatalf("ListTasks() = %d, err=%v", len(tasks), err)
	}
	if tasks[0].Title != "Q4 2026 Section 3 Quarterly Report" || tasks[0].TaskType != domain.TaskTypeReportSubmission {
		t.Fatalf("reminder = %#v", tasks[0])
	}
}

func TestGenerateQuarterlyReportRemindersRespectsExistingReport(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	contract := seedContract(t, env, ports.Contract{
		ContractType: domain.ContractTypeConstruction,
		StartDate:    day(2026, time.January, 1),
		EndDate:      day(2027, time.December, 31),
	})
	markApplicable(t, env, contract.ID)
	if _, err := env.repo.CreateTasks(ctx, []ports.Task{{
		ContractID: contract.ID,
		ClientID:   contract.ClientID,
		TaskType:   domain.TaskTypeReportSubmission,
		Title:      "Manually scheduled Q4 report",
		DueDate:    day(2027, time.January, 10),
		Priority:   domain.PriorityHigh,
		Status:     domain.TaskStatusPending,
	}}); err != nil {
		t.Fatalf("CreateTasks() error = %v", err)
	}

	result, err := env.svc.GenerateQuarterlyReportReminders(ctx)
	if err != nil {
		t.Fatalf("GenerateQuarterlyReportReminders() error = %v", err)
	}
	if result.TasksCreated != 0 {
		t.Fatalf("GenerateQuarterlyReportReminders() created = %d", result.TasksCreated)
	}
}

func TestGenerateQuarterlyReportRemindersIgnoresLaterFinalReport(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	contract := seedContract(t, env, ports.Contract{
		ContractType: domain.ContractTypeConstruction,
		StartDate:    day(2026, time.January, 1),
		EndDate:      day(2027, time.March, 31),
	})
	markApplicable(t, env, contract.ID)
	// Final Report falls due after the Q4 reminder window ends on Jan 15.
	if _, err := env.repo.CreateTasks(ctx, []ports.Task{{
		ContractID: contract.ID,
		ClientID:   contract.ClientID,
		TaskType:   domain.TaskTypeReportSubmission,
		Title:      "Final Report",
		DueDate:    day(2027, time.April, 15),
		Priority:   domain.PriorityHigh,
		Status:     domain.TaskStatusPending,
	}}); err != nil {
		t.Fatalf("CreateTasks() error = %v", err)
	}

	result, err := env.svc.GenerateQuarterlyReportReminders(ctx)
	if err != nil {
		t.Fatalf("GenerateQuarterlyReportReminders() error = %v", err)
	}
	if result.TasksCreated != 1 {
		t.Fatalf("GenerateQuarterlyReportReminders() created = %d, want 1", result.TasksCreated)
	}
}
