package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm/clause"

	"section3/internal/errs"
	"section3/internal/infrastructure/persistence/sqlite/model"
	"section3/internal/ports"
)

func (r *ComplianceRepository) CreateWorker(ctx context.Context, worker ports.Worker) (ports.Worker, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Worker{}, err
	}

	row := model.Worker{
		ID:                       strings.TrimSpace(worker.ID),
		ClientID:                 worker.ClientID,
		FullName:                 worker.FullName,
		IsSection3Worker:         worker.IsSection3Worker,
		IsTargetedSection3Worker: worker.IsTargetedSection3Worker,
		CreatedAt:                r.now(),
	}
	if row.ID == "" {
		row.ID = newID()
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Worker{}, errs.Store(err, "insert worker")
	}
	return mapWorker(row), nil
}

func (r *ComplianceRepository) CreateLaborHours(ctx context.Context, records []ports.LaborHoursRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	now := r.now()
	rows := make([]model.LaborHours, 0, len(records))
	for _, record := range records {
		id := strings.TrimSpace(record.ID)
		if id == "" {
			id = newID()
		}
		rows = append(rows, model.LaborHours{
			ID:          id,
			ContractID:  record.ContractID,
			WorkerID:    record.WorkerID,
			WorkDate:    dayOf(record.WorkDate),
			HoursWorked: record.HoursWorked,
			CreatedAt:   now,
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return errs.Store(err, "insert labor hours")
	}
	return nil
}

// ListLaborHours returns records whose work day falls in [from, to], joined to their worker.
func (r *ComplianceRepository) ListLaborHours(ctx context.Context, contractID string, from, to time.Time) ([]ports.LaborHoursRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.LaborHours
	if err := db.
		Where("contract_id = ?", contractID).
		Where("work_date >= ? AND work_date < ?", dayOf(from), dayOf(to).AddDate(0, 0, 1)).
		Order("work_date asc, id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Store(err, "query labor hours")
	}

	workerIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		workerIDs = append(workerIDs, row.WorkerID)
	}
	workers := make(map[string]model.Worker)
	if ids := sortedUnique(workerIDs); len(ids) > 0 {
		var workerRows []model.Worker
		if err := db.Where("id IN ?", ids).Find(&workerRows).Error; err != nil {
			return nil, errs.Store(err, "query workers")
		}
		for _, worker := range workerRows {
			workers[worker.ID] = worker
		}
	}

	items := make([]ports.LaborHoursRecord, 0, len(rows))
	for _, row := range rows {
		record := ports.LaborHoursRecord{
			ID:          row.ID,
			ContractID:  row.ContractID,
			WorkerID:    row.WorkerID,
			WorkDate:    row.WorkDate.UTC(),
			HoursWorked: row.HoursWorked,
		}
		if worker, ok := workers[row.WorkerID]; ok {
			mapped := mapWorker(worker)
			record.Worker = &mapped
		}
		items = append(items, record)
	}
	return items, nil
}

// UpsertLaborSummary replaces the figures of the row keyed by
// (contract, period type, period start, period end) and returns the stored row.
func (r *ComplianceRepository) UpsertLaborSummary(ctx context.Context, summary ports.LaborSummary) (ports.LaborSummary, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.LaborSummary{}, err
	}

	row := model.ContractLaborSummary{
		ID:                     newID(),
		ContractID:             summary.ContractID,
		PeriodType:             summary.PeriodType,
		PeriodStart:            summary.PeriodStart.UTC(),
		PeriodEnd:              summary.PeriodEnd.UTC(),
		TotalHours:             summary.TotalHours,
		Section3Hours:          summary.Section3Hours,
		TargetedHours:          summary.TargetedHours,
		TotalWorkers:           summary.TotalWorkers,
		Section3Workers:        summary.Section3Workers,
		TargetedWorkers:        summary.TargetedWorkers,
		Section3ComplianceRate: summary.Section3ComplianceRate,
		TargetedComplianceRate: summary.TargetedComplianceRate,
		MeetsSection3Benchmark: summary.MeetsSection3Benchmark,
		MeetsTargetedBenchmark: summary.MeetsTargetedBenchmark,
		LastCalculatedAt:       summary.LastCalculatedAt.UTC(),
	}

	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "contract_id"},
			{Name: "period_type"},
			{Name: "period_start"},
			{Name: "period_end"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_hours",
			"section3_hours",
			"targeted_hours",
			"total_workers",
			"section3_workers",
			"targeted_workers",
			"section3_compliance_rate",
			"targeted_compliance_rate",
			"meets_section3_benchmark",
			"meets_targeted_benchmark",
			"last_calculated_at",
		}),
	}).Create(&row).Error; err != nil {
		return ports.LaborSummary{}, errs.Store(err, "upsert labor summary")
	}

	var stored model.ContractLaborSummary
	if err := db.Where(
		"contract_id = ? AND period_type = ? AND period_start = ? AND period_end = ?",
		row.ContractID, row.PeriodType, row.PeriodStart, row.PeriodEnd,
	).Take(&stored).Error; err != nil {
		return ports.LaborSummary{}, errs.Store(err, "reload labor summary")
	}
	return mapLaborSummary(stored), nil
}

func (r *ComplianceRepository) ListLaborSummaries(ctx context.Context, filter ports.LaborSummaryFilter) ([]ports.LaborSummary, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.ContractLaborSummary{})
	if contractID := strings.TrimSpace(filter.ContractID); contractID != "" {
		query = query.Where("contract_id = ?", contractID)
	}
	if periodType := strings.TrimSpace(filter.PeriodType); periodType != "" {
		query = query.Where("period_type = ?", periodType)
	}

	var rows []model.ContractLaborSummary
	if err := query.Order("period_end desc, last_calculated_at desc").Find(&rows).Error; err != nil {
		return nil, errs.Store(err, "query labor summaries")
	}

	items := make([]ports.LaborSummary, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapLaborSummary(row))
	}
	return items, nil
}

func mapWorker(row model.Worker) ports.Worker {
	return ports.Worker{
		ID:                       row.ID,
		ClientID:                 row.ClientID,
		FullName:                 row.FullName,
		IsSection3Worker:         row.IsSection3Worker,
		IsTargetedSection3Worker: row.IsTargetedSection3Worker,
	}
}

func mapLaborSummary(row model.ContractLaborSummary) ports.LaborSummary {
	return ports.LaborSummary{
		ID:                     row.ID,
		ContractID:             row.ContractID,
		PeriodType:             row.PeriodType,
		PeriodStart:            row.PeriodStart.UTC(),
		PeriodEnd:              row.PeriodEnd.UTC(),
		TotalHours:             row.TotalHours,
		Section3Hours:          row.Section3Hours,
		TargetedHours:          row.TargetedHours,
		TotalWorkers:           row.TotalWorkers,
		Section3Workers:        row.Section3Workers,
		TargetedWorkers:        row.TargetedWorkers,
		Section3ComplianceRate: row.Section3ComplianceRate,
		TargetedComplianceRate: row.TargetedComplianceRate,
		MeetsSection3Benchmark: row.MeetsSection3Benchmark,
		MeetsTargetedBenchmark: row.MeetsTargetedBenchmark,
		LastCalculatedAt:       row.LastCalculatedAt.UTC(),
	}
}

// Labor hours are recorded for a calendar day in UTC.
func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
