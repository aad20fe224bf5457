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

type ProcessNewContractInput struct {
	ContractID string
	// ActorID attributes the audit entries; nil records a system action.
	ActorID *string
}

type OnboardingResult struct {
	ContractID        string                       `json:"contract_id"`
	Applicability     domain.ApplicabilityDecision `json:"applicability"`
	TasksCreated      int                          `json:"tasks_created"`
	BenchmarksCreated int                          `json:"benchmarks_created"`
	// AlreadyOnboarded is set when the onboarding task set existed before this run.
	AlreadyOnboarded bool `json:"already_onboarded"`
}

// ProcessNewContract evaluates Section 3 applicability for a contract and, when
// it applies, generates the onboarding task set and the two benchmarks. All
// writes share one transaction; re-running never duplicates tasks or benchmarks.
func (s *Service) ProcessNewContract(ctx context.Context, input ProcessNewContractInput) (OnboardingResult, error) {
	if err := s.ready(ctx); err != nil {
		return OnboardingResult{}, err
	}

	contractID := strings.TrimSpace(input.ContractID)
	if contractID == "" {
		return OnboardingResult{}, errContractRequired
	}

	started := s.now()
	logCtx := logContext(ctx, "usecase.onboarding")

	var result OnboardingResult
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		result, err = s.onboard(txCtx, contractID, input.ActorID)
		return err
	})
	s.observe("process_new_contract", started, result.TasksCreated, err)
	if err != nil {
		logging.Error(logCtx, "contract onboarding failed", slog.String("contract_id", contractID), slog.Any("err", errs.Loggable(err)))
		return OnboardingResult{}, errs.Wrapf(err, "process new contract %s", contractID)
	}

	logging.Info(logCtx, "contract onboarding completed",
		slog.String("contract_id", contractID),
		slog.Bool("is_applicable", result.Applicability.IsApplicable),
		slog.String("subpart", result.Applicability.Subpart),
		slog.Int("tasks_created", result.TasksCreated),
		slog.Int("benchmarks_created", result.BenchmarksCreated),
	)
	return result, nil
}

func (s *Service) onboard(ctx context.Context, contractID string, actorID *string) (OnboardingResult, error) {
	contract, err := s.repo.GetContract(ctx, contractID)
	if err != nil {
		return OnboardingResult{}, err
	}

	decision := domain.CalculateApplicability(s.rules, applicabilityInput(contract))
	now := s.now()
	if err := s.repo.UpdateContractApplicability(ctx, contract.ID, ports.ContractApplicability{
		Section3Applicable: decision.IsApplicable,
		Subpart:            decision.Subpart,
		Threshold:          decision.Threshold,
		LaborHourBenchmark: decision.LaborHourBenchmark,
		TargetedBenchmark:  decision.TargetedBenchmark,
		Reason:             decision.Reason,
		CalculatedAt:       now,
	}); err != nil {
		return OnboardingResult{}, errs.Wrap(err, "persist applicability")
	}
	if err := s.repo.AppendAuditLog(ctx, ports.AuditLogEntry{
		UserID:      actorID,
		ContractID:  stringPtr(contract.ID),
		ActionType:  domain.AuditActionApplicabilityCheck,
		Description: decision.Reason,
		Metadata: map[string]any{
			"is_applicable":          decision.IsApplicable,
			"subpart":                decision.Subpart,
			"threshold":              decision.Threshold,
			"missing_financial_data": decision.MissingFinancialData,
		},
		CreatedAt: now,
	}); err != nil {
		return OnboardingResult{}, errs.Wrap(err, "audit applicability")
	}

	result := OnboardingResult{
		ContractID:    contract.ID,
		Applicability: decision,
	}
	if !decision.IsApplicable {
		return result, nil
	}

	existing, err := s.repo.CountTasks(ctx, ports.TaskFilter{
		ContractID:         contract.ID,
		AutoGenerationRule: domain.RuleOnCreateContract,
	})
	if err != nil {
		return OnboardingResult{}, errs.Wrap(err, "count onboarding tasks")
	}
	if existing > 0 {
		result.AlreadyOnboarded = true
	} else {
		created, err := s.createOnboardingTasks(ctx, contract, actorID)
		if err != nil {
			return OnboardingResult{}, err
		}
		result.TasksCreated = created
	}

	created, err := s.createBenchmarks(ctx, contract, decision, actorID)
	if err != nil {
		return OnboardingResult{}, err
	}
	result.BenchmarksCreated = created
	return result, nil
}

func (s *Service) createOnboardingTasks(ctx context.Context, contract ports.Contract, actorID *string) (int, error) {
	schedule, err := domain.OnboardingSchedule(s.rules, contract.StartDate, contract.EndDate)
	if err != nil {
		return 0, errs.E(errs.KindInvalidInput, err)
	}

	tasks := make([]ports.Task, 0, len(schedule))
	for _, item := range schedule {
		tasks = append(tasks, ports.Task{
			ContractID:         contract.ID,
			ClientID:           contract.ClientID,
			TaskType:           item.TaskType,
			Title:              item.Title,
			Description:        item.Description,
			DueDate:            item.DueDate,
			Priority:           item.Priority,
			IsAutoGenerated:    true,
			AutoGenerationRule: domain.RuleOnCreateContract,
			GenerationKey:      domain.OnboardingGenerationKey(contract.ID, item.Slot),
			Status:             domain.TaskStatusPending,
		})
	}

	created, err := s.repo.CreateTasks(ctx, tasks)
	if err != nil {
		return 0, errs.Wrap(err, "insert onboarding tasks")
	}
	if created == 0 {
		return 0, nil
	}

	if err := s.repo.AppendAuditLog(ctx, ports.AuditLogEntry{
		UserID:      actorID,
		ContractID:  stringPtr(contract.ID),
		ActionType:  domain.AuditActionTasksGenerated,
		Description: "Auto-generated Section 3 onboarding tasks for contract " + contract.Label(),
		Metadata: map[string]any{
			"tasks_created":        created,
			"auto_generation_rule": domain.RuleOnCreateContract,
		},
		CreatedAt: s.now(),
	}); err != nil {
		return 0, errs.Wrap(err, "audit onboarding tasks")
	}
	return created, nil
}

func (s *Service) createBenchmarks(ctx context.Context, contract ports.Contract, decision domain.ApplicabilityDecision, actorID *string) (int, error) {
	benchmarks := []ports.Benchmark{
		{
			ContractID:       contract.ID,
			BenchmarkType:    domain.BenchmarkTypeLaborHours,
			Name:             "Section 3 Labor Hours",
			TargetPercentage: decision.LaborHourBenchmark,
			MeasurementUnit:  domain.MeasurementUnitPercentage,
			PeriodStart:      contract.StartDate,
			PeriodEnd:        contract.EndDate,
			Description:      "Share of total labor hours worked by Section 3 workers.",
		},
		{
			ContractID:       contract.ID,
			BenchmarkType:    domain.BenchmarkTypeTargetedHours,
			Name:             "Targeted Section 3 Labor Hours",
			TargetPercentage: decision.TargetedBenchmark,
			MeasurementUnit:  domain.MeasurementUnitPercentage,
			PeriodStart:      contract.StartDate,
			PeriodEnd:        contract.EndDate,
			Description:      "Share of total labor hours worked by targeted Section 3 workers.",
		},
	}

	created, err := s.repo.CreateBenchmarks(ctx, benchmarks)
	if err != nil {
		return 0, errs.Wrap(err, "insert benchmarks")
	}
	if created == 0 {
		return 0, nil
	}

	if err := s.repo.AppendAuditLog(ctx, ports.AuditLogEntry{
		UserID:      actorID,
		ContractID:  stringPtr(contract.ID),
		ActionType:  domain.AuditActionBenchmarksCreated,
		Description: "Created Section 3 benchmarks for contract " + contract.Label(),
		Metadata: map[string]any{
			"benchmarks_created":   created,
			"labor_hour_benchmark": decision.LaborHourBenchmark,
			"targeted_benchmark":   decision.TargetedBenchmark,
		},
		CreatedAt: s.now(),
	}); err != nil {
		return 0, errs.Wrap(err, "audit benchmarks")
	}
	return created, nil
}

func applicabilityInput(contract ports.Contract) domain.ApplicabilityInput {
	sources := make([]domain.FundingSourceRule, 0, len(contract.FundingSources))
	for _, src := range contract.FundingSources {
		sources = append(sources, domain.FundingSourceRule{
			Name:             src.Name,
			DefaultThreshold: src.DefaultThreshold,
			Subpart:          src.Subpart,
		})
	}
	return domain.ApplicabilityInput{
		ContractType:     contract.ContractType,
		HUDFundingAmount: contract.HUDFundingAmount,
		TotalProjectCost: contract.TotalProjectCost,
		FundingSources:   sources,
	}
}
