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

type LaborSummaryResult struct {
	Summary ports.LaborSummary `json:"summary"`
	// MissingWorkers counts labor records whose worker row could not be found.
	MissingWorkers int `json:"missing_workers"`
}

// UpdateContractLaborSummary aggregates the contract's labor hours over period
// and upserts the summary row for that window.
func (s *Service) UpdateContractLaborSummary(ctx context.Context, contractID string, period domain.Period) (LaborSummaryResult, error) {
	if err := s.ready(ctx); err != nil {
		return LaborSummaryResult{}, err
	}

	contractID = strings.TrimSpace(contractID)
	if contractID == "" {
		return LaborSummaryResult{}, errContractRequired
	}
	if !period.Valid() {
		return LaborSummaryResult{}, errs.E(errs.KindInvalidInput, errs.Wrapf(domain.ErrInvalidPeriod, "period %q", period))
	}

	started := s.now()
	result, err := s.updateLaborSummary(ctx, contractID, period)
	s.observe("update_labor_summary", started, 1, err)
	if err != nil {
		return LaborSummaryResult{}, errs.Wrapf(err, "update labor summary for contract %s", contractID)
	}
	return result, nil
}

func (s *Service) updateLaborSummary(ctx context.Context, contractID string, period domain.Period) (LaborSummaryResult, error) {
	logCtx := logContext(ctx, "usecase.labor_summary")

	contract, err := s.repo.GetContract(ctx, contractID)
	if err != nil {
		return LaborSummaryResult{}, err
	}
	laborHourBenchmark, targetedBenchmark := contractBenchmarks(s.rules, contract)

	now := s.now()
	periodStart, periodEnd, err := domain.PeriodWindow(period, now, contract.StartDate)
	if err != nil {
		return LaborSummaryResult{}, errs.E(errs.KindInvalidInput, err)
	}

	records, err := s.repo.ListLaborHours(ctx, contract.ID, periodStart, periodEnd)
	if err != nil {
		return LaborSummaryResult{}, err
	}

	missing := 0
	entries := make([]domain.LaborEntry, 0, len(records))
	for _, record := range records {
		entry := domain.LaborEntry{
			WorkerID: record.WorkerID,
			Hours:    record.HoursWorked,
		}
		if record.Worker != nil {
			entry.IsSection3 = record.Worker.IsSection3Worker
			entry.IsTargetedWorker = record.Worker.IsTargetedSection3Worker
		} else {
			missing++
			logging.Warn(logCtx, "labor record references unknown worker",
				slog.String("contract_id", contract.ID),
				slog.String("labor_hours_id", record.ID),
				slog.String("worker_id", record.WorkerID),
			)
		}
		entries = append(entries, entry)
	}

	totals, err := domain.AggregateLabor(entries)
	if err != nil {
		return LaborSummaryResult{}, errs.E(errs.KindInvalidInput, err)
	}

	section3Rate := domain.CalculateComplianceRate(totals.TotalHours, totals.Section3Hours)
	targetedRate := domain.CalculateComplianceRate(totals.TotalHours, totals.TargetedHours)

	summary, err := s.repo.UpsertLaborSummary(ctx, ports.LaborSummary{
		ContractID:             contract.ID,
		PeriodType:             string(period),
		PeriodStart:            periodStart,
		PeriodEnd:              periodEnd,
		TotalHours:             totals.TotalHours,
		Section3Hours:          totals.Section3Hours,
		TargetedHours:          totals.TargetedHours,
		TotalWorkers:           totals.TotalWorkers,
		Section3Workers:        totals.Section3Workers,
		TargetedWorkers:        totals.TargetedWorkers,
		Section3ComplianceRate: section3Rate,
		TargetedComplianceRate: targetedRate,
		MeetsSection3Benchmark: domain.CheckBenchmarkCompliance(section3Rate, laborHourBenchmark).IsMet,
		MeetsTargetedBenchmark: domain.CheckBenchmarkCompliance(targetedRate, targetedBenchmark).IsMet,
		LastCalculatedAt:       now,
	})
	if err != nil {
		return LaborSummaryResult{}, err
	}

	logging.Info(logCtx, "labor summary updated",
		slog.String("contract_id", contract.ID),
		slog.String("period", string(period)),
		slog.Float64("total_hours", summary.TotalHours),
		slog.Float64("section3_rate", summary.Section3ComplianceRate),
		slog.Bool("meets_section3_benchmark", summary.MeetsSection3Benchmark),
	)
	return LaborSummaryResult{Summary: summary, MissingWorkers: missing}, nil
}
