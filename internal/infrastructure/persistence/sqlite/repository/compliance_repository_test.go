package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"section3/internal/errs"
	"section3/internal/infrastructure/persistence/sqlite/model"
	"section3/internal/ports"
)

func setupComplianceRepository(t *testing.T) *ComplianceRepository {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "section3.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewComplianceRepository(db)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func floatPtr(v float64) *float64 { return &v }

func createContract(t *testing.T, repo *ComplianceRepository, sourceIDs ...string) ports.Contract {
	t.Helper()

	contract, err := repo.CreateContract(context.Background(), ports.Contract{
		ClientID:         "client-1",
		ContractNumber:   "HA-2026-001",
		Title:            "Riverside rehab",
		ContractType:     "construction",
		HUDFundingAmount: floatPtr(250000),
		StartDate:        day(2026, time.January, 1),
		EndDate:          day(2026, time.December, 31),
		Status:           "active",
	}, sourceIDs)
	if err != nil {
		t.Fatalf("CreateContract() error = %v", err)
	}
	return contract
}

func TestCreateContractWithFundingSources(t *testing.T) {
	repo := setupComplianceRepository(t)
	ctx := context.Background()

	if _, err := repo.UpsertFundingSources(ctx, []ports.FundingSource{
		{Name: "HOME", Type: "federal", DefaultThreshold: 200000, Subpart: "subpart_c"},
		{Name: "CDBG", Type: "federal", DefaultThreshold: 200000, Subpart: "subpart_c"},
	}); err != nil {
		t.Fatalf("UpsertFundingSources() error = %v", err)
	}
	sources, err := repo.ListFundingSourcesByName(ctx, []string{"HOME", "CDBG"})
	if err != nil || len(sources) != 2 {
		t.Fatalf("ListFundingSourcesByName() = %d, err=%v", len(sources), err)
	}

	// sources are ordered by name: CDBG then HOME; attach HOME first.
	contract := createContract(t, repo, sources[1].ID, sources[0].ID)
	if contract.ID == "" {
		t.Fatalf("CreateContract() returned empty id")
	}

	got, err := repo.GetContract(ctx, contract.ID)
	if err != nil {
		t.Fatalf("GetContract() error = %v", err)
	}
	if len(got.FundingSources) != 2 || got.FundingSources[0].Name != "HOME" || got.FundingSources[1].Name != "CDBG" {
		t.Fatalf("GetContract() funding sources = %#v", got.FundingSources)
	}
	if got.Applicability != nil {
		t.Fatalf("GetContract() applicability = %#v, want nil", got.Applicability)
	}
	if !got.StartDate.Equal(day(2026, time.January, 1)) {
		t.Fatalf("GetContract() start = %s", got.StartDate)
	}
}

func TestUpsertFundingSourcesKeepsID(t *testing.T) {
	repo := setupComplianceRepository(t)
	ctx := context.Background()

	if _, err := repo.UpsertFundingSources(ctx, []ports.FundingSource{{Name: "HOME", DefaultThreshold: 200000}}); err != nil {
		t.Fatalf("UpsertFundingSources() error = %v", err)
	}
	first, _ := repo.ListFundingSourcesByName(ctx, []string{"HOME"})

	if _, err := repo.UpsertFundingSources(ctx, []ports.FundingSource{{Name: "HOME", DefaultThreshold: 150000, Subpart: "subpart_c"}}); err != nil {
		t.Fatalf("UpsertFundingSources(update) error = %v", err)
	}
	second, _ := repo.ListFundingSourcesByName(ctx, []string{"HOME"})
	if len(second) != 1 || second[0].ID != first[0].ID || second[0].DefaultThreshold != 150000 || second[0].Subpart != "subpart_c" {
		t.Fatalf("after upsert = %#v (first id %s)", second, first[0].ID)
	}
}

func TestGetContractNotFound(t *testing.T) {
	repo := setupComplianceRepository(t)

	_, err := repo.GetContract(context.Background(), "missing")
	if !errors.Is(err, ports.ErrContractNotFound) {
		t.Fatalf("GetContract() error = %v", err)
	}
	if errs.KindOf(err) != errs.KindNotFound {
		t.Fatalf("KindOf() = %q", errs.KindOf(err))
	}
}

func TestUpdateContractApplicability(t *testing.T) {
	repo := setupComplianceRepository(t)
	ctx := context.Background()
	contract := createContract(t, repo)

	if err := repo.UpdateContractApplicability(ctx, contract.ID, ports.ContractApplicability{
		Section3Applicable: true,
		Subpart:            "subpart_c",
		Threshold:          200000,
		LaborHourBenchmark: 25,
		TargetedBenchmark:  5,
		Reason:             "Subpart C applies",
		CalculatedAt:       day(2026, time.January, 2),
	}); err != nil {
		t.Fatalf("UpdateContractApplicability() error = %v", err)
	}

	applicable := true
	items, err := repo.ListContracts(ctx, ports.ContractFilter{Section3Applicable: &applicable, Status: "active"})
	if err != nil {
		t.Fatalf("ListContracts() error = %v", err)
	}
	if len(items) != 1 || items[0].Applicability == nil || items[0].Applicability.LaborHourBenchmark != 25 {
		t.Fatalf("ListContracts() = %#v", items)
	}

	if err := repo.UpdateContractApplicability(ctx, "missing", ports.ContractApplicability{}); !errors.Is(err, ports.ErrContractNotFound) {
		t.Fatalf("UpdateContractApplicability(missing) error = %v", err)
	}
}

func TestCreateTasksSkipsExistingGenerationKeys(t *testing.T) {
	repo := setupComplianceRepository(t)
	ctx := context.Background()
	contract := createContract(t, repo)

	task := func(key string) ports.Task {
		return ports.Task{
			ContractID:         contract.ID,
			ClientID:           contract.ClientID,
			TaskType:           "report_submission",
			Title:              "Q1 2026 Section 3 Quarterly Report",
			DueDate:            day(2026, time.April, 15),
			Priority:           "medium",
			IsAutoGenerated:    true,
			AutoGenerationRule: "onQuarterEnd",
			GenerationKey:      key,
			Status:             "pending",
		}
	}

	created, err := repo.CreateTasks(ctx, []ports.Task{task("k1"), task("k2")})
	if err != nil || created != 2 {
		t.Fatalf("CreateTasks() = %d, err=%v", created, err)
	}
	created, err = repo.CreateTasks(ctx, []ports.Task{task("k2"), task("k3"), task(""), task("")})
	if err != nil {
		t.Fatalf("CreateTasks(second) error = %v", err)
	}
	if created != 3 {
		t.Fatalf("CreateTasks(second) = %d, want 3", created)
	}

	count, err := repo.CountTasks(ctx, ports.TaskFilter{ContractID: contract.ID, AutoGenerationRule: "onQuarterEnd"})
	if err != nil || count != 5 {
		t.Fatalf("CountTasks() = %d, err=%v", count, err)
	}
}

func TestListTasksFilters(t *testing.T) {
	repo := setupComplianceRepository(t)
	ctx := context.Background()
	contract := createContract(t, repo)

	tasks := []ports.Task{
		{ContractID: contract.ID, ClientID: "client-1", TaskType: "document_upload", Title: "a", DueDate: day(2026, time.March, 1), Priority: "high", Status: "pending"},
		{ContractID: contract.ID, ClientID: "client-1", TaskType: "document_upload", Title: "b", DueDate: day(2026, time.March, 20), Priority: "high", Status: "in_progress"},
		{ContractID: contract.ID, ClientID: "client-1", TaskType: "document_upload", Title: "c", DueDate: day(2026, time.March, 2), Priority: "high", Status: "completed"},
	}
	if _, err := repo.CreateTasks(ctx, tasks); err != nil {
		t.Fatalf("CreateTasks() error = %v", err)
	}

	cutoff := day(2026, time.March, 10)
	items, err := repo.ListTasks(ctx, ports.TaskFilter{
		Statuses:      []string{"pending", "in_progress"},
		DueOnOrBefore: &cutoff,
	})
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(items) != 1 || items[0].Title != "a" {
		t.Fatalf("ListTasks() = %#v", items)
	}

	if err := repo.UpdateTaskStatus(ctx, items[0].ID, "completed"); err != nil {
		t.Fatalf("UpdateTaskStatus() error = %v", err)
	}
	if err := repo.UpdateTaskStatus(ctx, "missing", "completed"); errs.KindOf(err) != errs.KindNotFound {
		t.Fatalf("UpdateTaskStatus(missing) error = %v", err)
	}

	if err := repo.AssignTask(ctx, items[0].ID, "u-contractor"); err != nil {
		t.Fatalf("AssignTask() error = %v", err)
	}
	assigned, err := repo.ListTasks(ctx, ports.TaskFilter{ID: items[0].ID})
	if err != nil || len(assigned) != 1 || assigned[0].AssignedTo == nil || *assigned[0].AssignedTo != "u-contractor" {
		t.Fatalf("ListTasks(assigned) = %#v, err=%v", assigned, err)
	}
	if err := repo.AssignTask(ctx, "missing", "u-contractor"); errs.KindOf(err) != errs.KindNotFound {
		t.Fatalf("AssignTask(missing) error = %v", err)
	}
}

func TestCreateBenchmarksOncePerType(t *testing.T) {
	repo := setupComplianceRepository(t)
	ctx := context.Background()
	contract := createContract(t, repo)

	benchmarks := []ports.Benchmark{
		{ContractID: contract.ID, BenchmarkType: "labor_hours", Name: "Section 3 Labor Hours", TargetPercentage: 25, MeasurementUnit: "percentage"},
		{ContractID: contract.ID, BenchmarkType: "targeted_hours", Name: "Targeted Section 3 Labor Hours", TargetPercentage: 5, MeasurementUnit: "percentage"},
	}
	if created, err := repo.CreateBenchmarks(ctx, benchmarks); err != nil || created != 2 {
		t.Fatalf("CreateBenchmarks() = %d, err=%v", created, err)
	}
	if created, err := repo.CreateBenchmarks(ctx, benchmarks); err != nil || created != 0 {
		t.Fatalf("CreateBenchmarks(repeat) = %d, err=%v", created, err)
	}

	items, err := repo.ListBenchmarks(ctx, contract.ID)
	if err != nil || len(items) != 2 {
		t.Fatalf("ListBenchmarks() = %d, err=%v", len(items), err)
	}
}

func TestListLaborHoursJoinsWorker(t *testing.T) {
	repo := setupComplianceRepository(t)
	ctx := context.Background()
	contract := createContract(t, repo)

	worker, err := repo.CreateWorker(ctx, ports.Worker{ClientID: "client-1", FullName: "Ana", IsSection3Worker: true})
	if err != nil {
		t.Fatalf("CreateWorker() error = %v", err)
	}
	if err := repo.CreateLaborHours(ctx, []ports.LaborHoursRecord{
		{ContractID: contract.ID, WorkerID: worker.ID, WorkDate: day(2026, time.February, 1), HoursWorked: 8},
		{ContractID: contract.ID, WorkerID: "ghost", WorkDate: day(2026, time.February, 2), HoursWorked: 4},
		{ContractID: contract.ID, WorkerID: worker.ID, WorkDate: day(2026, time.May, 1), HoursWorked: 6},
	}); err != nil {
		t.Fatalf("CreateLaborHours() error = %v", err)
	}

	items, err := repo.ListLaborHours(ctx, contract.ID, day(2026, time.February, 1), day(2026, time.February, 28))
	if err != nil {
		t.Fatalf("ListLaborHours() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ListLaborHours() len = %d", len(items))
	}
	if items[0].Worker == nil || !items[0].Worker.IsSection3Worker {
		t.Fatalf("ListLaborHours()[0].Worker = %#v", items[0].Worker)
	}
	if items[1].Worker != nil {
		t.Fatalf("ListLaborHours()[1].Worker = %#v, want nil", items[1].Worker)
	}
}

func TestListLaborHoursIncludesWholeEndDay(t *testing.T) {
	repo := setupComplianceRepository(t)
	ctx := context.Background()
	contract := createContract(t, repo)

	afternoon := time.Date(2026, time.February, 28, 16, 30, 0, 0, time.UTC)
	if err := repo.CreateLaborHours(ctx, []ports.LaborHoursRecord{
		{ContractID: contract.ID, WorkerID: "w1", WorkDate: afternoon, HoursWorked: 8},
		{ContractID: contract.ID, WorkerID: "w1", WorkDate: time.Date(2026, time.March, 1, 0, 30, 0, 0, time.UTC), HoursWorked: 2},
	}); err != nil {
		t.Fatalf("CreateLaborHours() error = %v", err)
	}

	items, err := repo.ListLaborHours(ctx, contract.ID, day(2026, time.February, 1), day(2026, time.February, 28))
	if err != nil {
		t.Fatalf("ListLaborHours() error = %v", err)
	}
	if len(items) != 1 || items[0].HoursWorked != 8 {
		t.Fatalf("ListLaborHours() = %#v", items)
	}
	if !items[0].WorkDate.Equal(day(2026, time.February, 28)) {
		t.Fatalf("WorkDate = %s, want the calendar day", items[0].WorkDate)
	}
}

func TestUpsertLaborSummaryReplacesSamePeriod(t *testing.T) {
	repo := setupComplianceRepository(t)
	ctx := context.Background()
	contract := createContract(t, repo)

	summary := ports.LaborSummary{
		ContractID:             contract.ID,
		PeriodType:             "total",
		PeriodStart:            day(2026, time.January, 1),
		PeriodEnd:              day(2026, time.October, 14),
		TotalHours:             100,
		Section3Hours:          20,
		Section3ComplianceRate: 20,
		LastCalculatedAt:       day(2026, time.October, 14),
	}
	first, err := repo.UpsertLaborSummary(ctx, summary)
	if err != nil {
		t.Fatalf("UpsertLaborSummary() error = %v", err)
	}

	summary.Section3Hours = 30
	summary.Section3ComplianceRate = 30
	summary.MeetsSection3Benchmark = true
	second, err := repo.UpsertLaborSummary(ctx, summary)
	if err != nil {
		t.Fatalf("UpsertLaborSummary(second) error = %v", err)
	}
	if second.ID != first.ID || second.Section3Hours != 30 || !second.MeetsSection3Benchmark {
		t.Fatalf("UpsertLaborSummary(second) = %#v, first id %s", second, first.ID)
	}

	items, err := repo.ListLaborSummaries(ctx, ports.LaborSummaryFilter{ContractID: contract.ID, PeriodType: "total"})
	if err != nil || len(items) != 1 {
		t.Fatalf("ListLaborSummaries() = %d, err=%v", len(items), err)
	}
}

func TestNotificationsAuditProfilesAndForms(t *testing.T) {
	repo := setupComplianceRepository(t)
	ctx := context.Background()
	contract := createContract(t, repo)

	for _, profile := range []ports.Profile{
		{UserID: "u-admin", ClientID: "client-1", Role: "client_admin"},
		{UserID: "u-cm", ClientID: "client-1", Role: "compliance_manager"},
		{UserID: "u-other", ClientID: "client-2", Role: "client_admin"},
		{UserID: "u-worker", ClientID: "client-1", Role: "viewer"},
	} {
		if err := repo.CreateProfile(ctx, profile); err != nil {
			t.Fatalf("CreateProfile(%s) error = %v", profile.UserID, err)
		}
	}
	profiles, err := repo.ListProfilesForClient(ctx, "client-1", []string{"compliance_manager", "client_admin"})
	if err != nil || len(profiles) != 2 {
		t.Fatalf("ListProfilesForClient() = %#v, err=%v", profiles, err)
	}

	contractID := contract.ID
	created, err := repo.CreateNotifications(ctx, []ports.Notification{
		{UserID: "u-admin", Type: "missing_report", Title: "t", Message: "m", Priority: "high", RelatedContractID: &contractID},
		{UserID: "u-cm", Type: "missing_report", Title: "t", Message: "m", Priority: "high", RelatedContractID: &contractID},
	})
	if err != nil || len(created) != 2 || created[0].ID == "" {
		t.Fatalf("CreateNotifications() = %#v, err=%v", created, err)
	}
	listed, err := repo.ListNotifications(ctx, ports.NotificationFilter{RelatedContractID: contract.ID, Type: "missing_report"})
	if err != nil || len(listed) != 2 {
		t.Fatalf("ListNotifications() = %d, err=%v", len(listed), err)
	}

	if err := repo.AppendAuditLog(ctx, ports.AuditLogEntry{
		ContractID:  &contractID,
		ActionType:  "calculate_applicability",
		Description: "Calculated Section 3 applicability",
		Metadata:    map[string]any{"subpart": "subpart_c", "is_applicable": true},
	}); err != nil {
		t.Fatalf("AppendAuditLog() error = %v", err)
	}
	logs, err := repo.ListAuditLogs(ctx, contract.ID)
	if err != nil || len(logs) != 1 {
		t.Fatalf("ListAuditLogs() = %d, err=%v", len(logs), err)
	}
	if logs[0].UserID != nil || logs[0].Metadata["subpart"] != "subpart_c" {
		t.Fatalf("ListAuditLogs()[0] = %#v", logs[0])
	}

	submitted := day(2026, time.April, 10)
	if _, err := repo.CreateComplianceForm(ctx, ports.ComplianceForm{
		ContractID:  contract.ID,
		FormType:    "quarterly",
		PeriodStart: day(2026, time.January, 1),
		PeriodEnd:   day(2026, time.March, 31),
		SubmittedAt: &submitted,
	}); err != nil {
		t.Fatalf("CreateComplianceForm() error = %v", err)
	}
	count, err := repo.CountComplianceForms(ctx, contract.ID, "quarterly")
	if err != nil || count != 1 {
		t.Fatalf("CountComplianceForms() = %d, err=%v", count, err)
	}
}

func TestCreateContractJoinsOuterTransaction(t *testing.T) {
	repo := setupComplianceRepository(t)
	ctx := context.Background()
	errBoom := errors.New("boom")

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := ports.WithTxContext(ctx, tx)
		if _, err := repo.CreateContract(txCtx, ports.Contract{
			ClientID:     "client-1",
			ContractType: "construction",
			StartDate:    day(2026, time.January, 1),
			EndDate:      day(2026, time.June, 30),
			Status:       "active",
		}, nil); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("Transaction() error = %v", err)
	}

	items, err := repo.ListContracts(ctx, ports.ContractFilter{})
	if err != nil {
		t.Fatalf("ListContracts() error = %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("ListContracts() len = %d after rollback", len(items))
	}
}
