package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"section3/internal/errs"
	"section3/internal/infrastructure/persistence/sqlite/model"
	"section3/internal/ports"
)

func applyTaskFilter(query *gorm.DB, filter ports.TaskFilter) *gorm.DB {
	if id := strings.TrimSpace(filter.ID); id != "" {
		query = query.Where("id = ?", id)
	}
	if contractID := strings.TrimSpace(filter.ContractID); contractID != "" {
		query = query.Where("contract_id = ?", contractID)
	}
	if taskType := strings.TrimSpace(filter.TaskType); taskType != "" {
		query = query.Where("task_type = ?", taskType)
	}
	if rule := strings.TrimSpace(filter.AutoGenerationRule); rule != "" {
		query = query.Where("auto_generation_rule = ?", rule)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.DueOnOrBefore != nil {
		query = query.Where("due_date <= ?", filter.DueOnOrBefore.UTC())
	}
	if filter.DueOnOrAfter != nil {
		query = query.Where("due_date >= ?", filter.DueOnOrAfter.UTC())
	}
	return query
}

func (r *ComplianceRepository) ListTasks(ctx context.Context, filter ports.TaskFilter) ([]ports.Task, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Task
	if err := applyTaskFilter(db.Model(&model.Task{}), filter).
		Order("due_date asc, id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Store(err, "query tasks")
	}

	items := make([]ports.Task, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapTask(row))
	}
	return items, nil
}

func (r *ComplianceRepository) CountTasks(ctx context.Context, filter ports.TaskFilter) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := applyTaskFilter(db.Model(&model.Task{}), filter).Count(&count).Error; err != nil {
		return 0, errs.Store(err, "count tasks")
	}
	return count, nil
}

func (r *ComplianceRepository) CreateTasks(ctx context.Context, tasks []ports.Task) (int, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}
	if len(tasks) == 0 {
		return 0, nil
	}

	now := r.now()
	rows := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		id := strings.TrimSpace(task.ID)
		if id == "" {
			id = newID()
		}
		rows = append(rows, model.Task{
			ID:                 id,
			ContractID:         task.ContractID,
			ClientID:           task.ClientID,
			AssignedTo:         task.AssignedTo,
			TaskType:           task.TaskType,
			Title:              task.Title,
			Description:        task.Description,
			DueDate:            task.DueDate.UTC(),
			Priority:           task.Priority,
			IsAutoGenerated:    task.IsAutoGenerated,
			AutoGenerationRule: task.AutoGenerationRule,
			GenerationKey:      optionalString(task.GenerationKey),
			Status:             task.Status,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "generation_key"}},
		DoNothing: true,
	}).Create(&rows)
	if result.Error != nil {
		return 0, errs.Store(result.Error, "insert tasks")
	}
	return int(result.RowsAffected), nil
}

func (r *ComplianceRepository) UpdateTaskStatus(ctx context.Context, taskID string, status string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Task{}).
		Where("id = ?", taskID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": r.now(),
		})
	if result.Error != nil {
		return errs.Store(result.Error, "update task status")
	}
	if result.RowsAffected == 0 {
		return errs.Ef(errs.KindNotFound, "task %s not found", taskID)
	}
	return nil
}

func (r *ComplianceRepository) AssignTask(ctx context.Context, taskID string, assigneeID string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Task{}).
		Where("id = ?", taskID).
		Updates(map[string]any{
			"assigned_to": assigneeID,
			"updated_at":  r.now(),
		})
	if result.Error != nil {
		return errs.Store(result.Error, "assign task")
	}
	if result.RowsAffected == 0 {
		return errs.Ef(errs.KindNotFound, "task %s not found", taskID)
	}
	return nil
}

func (r *ComplianceRepository) ListBenchmarks(ctx context.Context, contractID string) ([]ports.Benchmark, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Benchmark
	if err := db.Where("contract_id = ?", contractID).
		Order("benchmark_type asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Store(err, "query benchmarks")
	}

	items := make([]ports.Benchmark, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.Benchmark{
			ID:               row.ID,
			ContractID:       row.ContractID,
			BenchmarkType:    row.BenchmarkType,
			Name:             row.Name,
			TargetPercentage: row.TargetPercentage,
			MeasurementUnit:  row.MeasurementUnit,
			PeriodStart:      row.PeriodStart.UTC(),
			PeriodEnd:        row.PeriodEnd.UTC(),
			Description:      row.Description,
		})
	}
	return items, nil
}

// CreateBenchmarks keeps at most one benchmark per (contract, type).
func (r *ComplianceRepository) CreateBenchmarks(ctx context.Context, benchmarks []ports.Benchmark) (int, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}
	if len(benchmarks) == 0 {
		return 0, nil
	}

	now := r.now()
	rows := make([]model.Benchmark, 0, len(benchmarks))
	for _, benchmark := range benchmarks {
		id := strings.TrimSpace(benchmark.ID)
		if id == "" {
			id = newID()
		}
		rows = append(rows, model.Benchmark{
			ID:               id,
			ContractID:       benchmark.ContractID,
			BenchmarkType:    benchmark.BenchmarkType,
			Name:             benchmark.Name,
			TargetPercentage: benchmark.TargetPercentage,
			MeasurementUnit:  benchmark.MeasurementUnit,
			PeriodStart:      benchmark.PeriodStart.UTC(),
			PeriodEnd:        benchmark.PeriodEnd.UTC(),
			Description:      benchmark.Description,
			CreatedAt:        now,
		})
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "contract_id"}, {Name: "benchmark_type"}},
		DoNothing: true,
	}).Create(&rows)
	if result.Error != nil {
		return 0, errs.Store(result.Error, "insert benchmarks")
	}
	return int(result.RowsAffected), nil
}

func mapTask(row model.Task) ports.Task {
	return ports.Task{
		ID:                 row.ID,
		ContractID:         row.ContractID,
		ClientID:           row.ClientID,
		AssignedTo:         row.AssignedTo,
		TaskType:           row.TaskType,
		Title:              row.Title,
		Description:        row.Description,
		DueDate:            row.DueDate.UTC(),
		Priority:           row.Priority,
		IsAutoGenerated:    row.IsAutoGenerated,
		AutoGenerationRule: row.AutoGenerationRule,
		GenerationKey:      derefString(row.GenerationKey),
		Status:             row.Status,
		CreatedAt:          row.CreatedAt.UTC(),
	}
}
