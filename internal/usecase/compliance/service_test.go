package compliance

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	domain "section3/internal/domain/compliance"
	cacheinfra "section3/internal/infrastructure/cache"
	"section3/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "section3/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "section3/internal/infrastructure/persistence/sqlite/uow"
	"section3/internal/ports"
)

var testNow = time.Date(2026, time.October, 14, 15, 0, 0, 0, time.UTC)

type testPublisher struct {
	mu        sync.Mutex
	published []ports.Notification
}

func (p *testPublisher) PublishNotifications(_ context.Context, notifications []ports.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, notifications...)
	return nil
}

func (p *testPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

type testMetrics struct {
	mu            sync.Mutex
	jobs          map[string]int
	notifications map[string]int
}

func newTestMetrics() *testMetrics {
	return &testMetrics{
		jobs:          make(map[string]int),
		notifications: make(map[string]int),
	}
}

func (m *testMetrics) ObserveJob(job string, _ bool, _ int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job]++
}

func (m *testMetrics) ObserveNotifications(notificationType string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[notificationType] += count
}

type testEnv struct {
	svc       *Service
	repo      *sqliterepo.ComplianceRepository
	publisher *testPublisher
	metrics   *testMetrics
}

func setupService(t *testing.T) testEnv {
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

	repo := sqliterepo.NewComplianceRepository(db)
	publisher := &testPublisher{}
	metrics := newTestMetrics()
	svc := NewService(repo, sqliteuow.NewUnitOfWork(db), cacheinfra.NewSQLiteCache(db), publisher, metrics, domain.DefaultRules())
	svc.now = func() time.Time { return testNow }

	return testEnv{svc: svc, repo: repo, publisher: publisher, metrics: metrics}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func floatPtr(v float64) *float64 { return &v }

func seedFundingSource(t *testing.T, env testEnv, source ports.FundingSource) ports.FundingSource {
	t.Helper()

	ctx := context.Background()
	if _, err := env.repo.UpsertFundingSources(ctx, []ports.FundingSource{source}); err != nil {
		t.Fatalf("UpsertFundingSources() error = %v", err)
	}
	items, err := env.repo.ListFundingSourcesByName(ctx, []string{source.Name})
	if err != nil || len(items) != 1 {
		t.Fatalf("ListFundingSourcesByName() = %#v, err=%v", items, err)
	}
	return items[0]
}

func seedContract(t *testing.T, env testEnv, contract ports.Contract, sourceIDs ...string) ports.Contract {
	t.Helper()

	if contract.ClientID == "" {
		contract.ClientID = "client-1"
	}
	if contract.Status == "" {
		contract.Status = domain.ContractStatusActive
	}
	created, err := env.repo.CreateContract(context.Background(), contract, sourceIDs)
	if err != nil {
		t.Fatalf("CreateContract() error = %v", err)
	}
	return created
}

// markApplicable stores a Subpart C determination without running onboarding.
func markApplicable(t *testing.T, env testEnv, contractID string) {
	t.Helper()

	if err := env.repo.UpdateContractApplicability(context.Background(), contractID, ports.ContractApplicability{
		Section3Applicable: true,
		Subpart:            domain.SubpartC,
		Threshold:          200000,
		LaborHourBenchmark: 25,
		TargetedBenchmark:  5,
		Reason:             "Subpart C applies",
		CalculatedAt:       testNow,
	}); err != nil {
		t.Fatalf("UpdateContractApplicability() error = %v", err)
	}
}

func seedProfiles(t *testing.T, env testEnv) {
	t.Helper()

	for _, profile := range []ports.Profile{
		{UserID: "u-client-admin", ClientID: "client-1", Role: domain.RoleClientAdmin},
		{UserID: "u-compliance", ClientID: "client-1", Role: domain.RoleComplianceManager},
		{UserID: "u-admin", ClientID: "client-1", Role: domain.RoleAdmin},
		{UserID: "u-contractor", ClientID: "client-1", Role: "contractor"},
		{UserID: "u-elsewhere", ClientID: "client-2", Role: domain.RoleClientAdmin},
	} {
		if err := env.repo.CreateProfile(context.Background(), profile); err != nil {
			t.Fatalf("CreateProfile(%s) error = %v", profile.UserID, err)
		}
	}
}
