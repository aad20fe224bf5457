package compliance

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"section3/internal/bootstrap/logging"
	domain "section3/internal/domain/compliance"
	"section3/internal/errs"
	"section3/internal/ports"
)

const (
	ScanOverdueTasks  = "overdue_tasks"
	ScanMissingReport = "missing_quarterly_reports"
	ScanBelowTarget   = "below_benchmark"

	JobNotifications = "notifications"
)

// ScanNames lists the notification scans in the order RunAllNotificationChecks reports them.
func ScanNames() []string {
	return []string{ScanOverdueTasks, ScanMissingReport, ScanBelowTarget}
}

type ScanResult struct {
	Scan          string `json:"scan"`
	Success       bool   `json:"success"`
	AlertsCreated int    `json:"alerts_created"`
	Error         string `json:"error,omitempty"`
}

type NotificationRunResult struct {
	Success       bool         `json:"success"`
	AlertsCreated int          `json:"alerts_created"`
	Scans         []ScanResult `json:"scans"`
}

// RunScan runs one scan by name.
func (s *Service) RunScan(ctx context.Context, scan string) (ScanResult, error) {
	switch strings.TrimSpace(scan) {
	case ScanOverdueTasks:
		return s.CheckOverdueTasks(ctx)
	case ScanMissingReport:
		return s.CheckMissingQuarterlyReports(ctx)
	case ScanBelowTarget:
		return s.CheckComplianceBelowBenchmark(ctx)
	default:
		return ScanResult{Scan: scan}, errs.Ef(errs.KindInvalidInput, "unknown notification scan %q", scan)
	}
}

// CheckOverdueTasks notifies assignees of open tasks that are past the grace period.
// Tasks without an assignee are skipped.
func (s *Service) CheckOverdueTasks(ctx context.Context) (ScanResult, error) {
	return s.runScan(ctx, ScanOverdueTasks, s.overdueTaskNotifications)
}

// CheckMissingQuarterlyReports notifies client admins and compliance managers of
// contracts with fewer quarterly forms on file than quarters elapsed.
func (s *Service) CheckMissingQuarterlyReports(ctx context.Context) (ScanResult, error) {
	return s.runScan(ctx, ScanMissingReport, s.missingReportNotifications)
}

// CheckComplianceBelowBenchmark notifies client staff and admins about contracts
// whose latest total-period summary misses the Section 3 benchmark.
func (s *Service) CheckComplianceBelowBenchmark(ctx context.Context) (ScanResult, error) {
	return s.runScan(ctx, ScanBelowTarget, s.belowBenchmarkNotifications)
}

// RunAllNotificationChecks runs the three scans concurrently. Success requires
// every scan to succeed; the returned error joins the failures.
func (s *Service) RunAllNotificationChecks(ctx context.Context) (NotificationRunResult, error) {
	if err := s.ready(ctx); err != nil {
		return NotificationRunResult{}, err
	}

	started := s.now()
	scans := ScanNames()
	results := make([]ScanResult, len(scans))
	failures := make([]error, len(scans))

	var g errgroup.Group
	for i, scan := range scans {
		g.Go(func() error {
			result, err := s.RunScan(ctx, scan)
			result.Scan = scan
			results[i] = result
			failures[i] = err
			return nil
		})
	}
	_ = g.Wait()

	run := NotificationRunResult{Success: true, Scans: results}
	for _, result := range results {
		run.AlertsCreated += result.AlertsCreated
		if !result.Success {
			run.Success = false
		}
	}

	err := errors.Join(failures...)
	s.recordJob(ctx, JobNotifications, started, run.AlertsCreated, err)
	logging.Info(logContext(ctx, "usecase.notifications"), "notification checks completed",
		slog.Bool("success", run.Success),
		slog.Int("alerts_created", run.AlertsCreated),
	)
	if err != nil {
		return run, errs.Wrap(err, "run notification checks")
	}
	return run, nil
}

type notificationBuilder func(ctx context.Context) ([]ports.Notification, error)

func (s *Service) runScan(ctx context.Context, scan string, build notificationBuilder) (ScanResult, error) {
	if err := s.ready(ctx); err != nil {
		return ScanResult{Scan: scan}, err
	}

	started := s.now()
	logCtx := logging.WithAttrs(ctx, slog.String("component", "usecase.notifications"), slog.String("scan", scan))

	created, err := s.buildAndDeliver(logCtx, build)
	s.recordJob(ctx, scan, started, created, err)
	if err != nil {
		logging.Error(logCtx, "notification scan failed", slog.Any("err", errs.Loggable(err)))
		return ScanResult{Scan: scan, Error: err.Error()}, errs.Wrapf(err, "scan %s", scan)
	}

	logging.Info(logCtx, "notification scan completed", slog.Int("alerts_created", created))
	return ScanResult{Scan: scan, Success: true, AlertsCreated: created}, nil
}

func (s *Service) buildAndDeliver(ctx context.Context, build notificationBuilder) (int, error) {
	notifications, err := build(ctx)
	if err != nil {
		return 0, err
	}
	if len(notifications) == 0 {
		return 0, nil
	}

	created, err := s.repo.CreateNotifications(ctx, notifications)
	if err != nil {
		return 0, errs.Wrap(err, "insert notifications")
	}

	if s.metrics != nil {
		counts := make(map[string]int)
		for _, n := range created {
			counts[n.Type]++
		}
		for notificationType, count := range counts {
			s.metrics.ObserveNotifications(notificationType, count)
		}
	}
	s.publishBestEffort(ctx, created)
	return len(created), nil
}

func (s *Service) publishBestEffort(ctx context.Context, notifications []ports.Notification) {
	if s.publisher == nil || len(notifications) == 0 {
		return
	}
	if err := s.publisher.PublishNotifications(ctx, notifications); err != nil {
		logging.Warn(ctx, "publish notifications failed", slog.Int("count", len(notifications)), slog.Any("err", errs.Loggable(err)))
	}
}

func (s *Service) overdueTaskNotifications(ctx context.Context) ([]ports.Notification, error) {
	today := s.today()
	cutoff := domain.OverdueCutoff(s.rules, today)

	tasks, err := s.repo.ListTasks(ctx, ports.TaskFilter{
		Statuses:      domain.OpenTaskStatuses,
		DueOnOrBefore: &cutoff,
	})
	if err != nil {
		return nil, err
	}

	out := make([]ports.Notification, 0, len(tasks))
	skipped := 0
	for _, task := range tasks {
		if !domain.IsOpenTaskStatus(task.Status) {
			continue
		}
		if task.AssignedTo == nil || strings.TrimSpace(*task.AssignedTo) == "" {
			skipped++
			continue
		}
		draft := domain.OverdueTaskDraft(task.ID, task.ContractID, task.Title, task.DueDate, domain.DaysOverdue(today, task.DueDate))
		out = append(out, addressed(draft, *task.AssignedTo))
	}
	if skipped > 0 {
		logging.Warn(ctx, "overdue tasks without assignee skipped", slog.Int("count", skipped))
	}
	return out, nil
}

func (s *Service) missingReportNotifications(ctx context.Context) ([]ports.Notification, error) {
	applicable := true
	contracts, err := s.repo.ListContracts(ctx, ports.ContractFilter{
		Section3Applicable: &applicable,
		Status:             domain.ContractStatusActive,
	})
	if err != nil {
		return nil, err
	}

	today := s.today()
	recipients := newRecipientCache(s.repo, domain.MissingReportRoles)
	var out []ports.Notification
	for _, contract := range contracts {
		required := domain.QuartersElapsed(s.rules, today, contract.StartDate)
		if required == 0 {
			continue
		}
		submitted, err := s.repo.CountComplianceForms(ctx, contract.ID, domain.FormTypeQuarterly)
		if err != nil {
			return nil, errs.Wrapf(err, "count quarterly forms for contract %s", contract.ID)
		}
		if submitted >= int64(required) {
			continue
		}

		users, err := recipients.forClient(ctx, contract.ClientID)
		if err != nil {
			return nil, err
		}
		draft := domain.MissingReportDraft(contract.ID, contract.Label(), int(submitted), required)
		for _, user := range users {
			out = append(out, addressed(draft, user.UserID))
		}
	}
	return out, nil
}

func (s *Service) belowBenchmarkNotifications(ctx context.Context) ([]ports.Notification, error) {
	summaries, err := s.repo.ListLaborSummaries(ctx, ports.LaborSummaryFilter{
		PeriodType: string(domain.PeriodTotal),
	})
	if err != nil {
		return nil, err
	}

	recipients := newRecipientCache(s.repo, domain.BelowBenchmarkRoles)
	seen := make(map[string]struct{}, len(summaries))
	var out []ports.Notification
	for _, summary := range summaries {
		// Summaries arrive newest first; only the latest window per contract counts.
		if _, ok := seen[summary.ContractID]; ok {
			continue
		}
		seen[summary.ContractID] = struct{}{}
		if summary.MeetsSection3Benchmark {
			continue
		}

		contract, err := s.repo.GetContract(ctx, summary.ContractID)
		if err != nil {
			if errs.Is(err, errs.KindNotFound) {
				logging.Warn(ctx, "labor summary references unknown contract", slog.String("contract_id", summary.ContractID))
				continue
			}
			return nil, err
		}

		benchmark, _ := contractBenchmarks(s.rules, contract)
		users, err := recipients.forClient(ctx, contract.ClientID)
		if err != nil {
			return nil, err
		}
		draft := domain.BelowBenchmarkDraft(contract.ID, contract.Label(), summary.Section3ComplianceRate, benchmark)
		for _, user := range users {
			out = append(out, addressed(draft, user.UserID))
		}
	}
	return out, nil
}

func addressed(draft domain.NotificationDraft, userID string) ports.Notification {
	n := ports.Notification{
		UserID:   userID,
		Type:     draft.Type,
		Title:    draft.Title,
		Message:  draft.Message,
		Priority: draft.Priority,
	}
	if draft.RelatedContractID != "" {
		n.RelatedContractID = stringPtr(draft.RelatedContractID)
	}
	if draft.RelatedTaskID != "" {
		n.RelatedTaskID = stringPtr(draft.RelatedTaskID)
	}
	return n
}

// recipientCache memoizes role-filtered profile lookups per client within one scan.
type recipientCache struct {
	repo     ports.ComplianceReadRepository
	roles    []string
	byClient map[string][]ports.Profile
}

func newRecipientCache(repo ports.ComplianceReadRepository, roles []string) *recipientCache {
	return &recipientCache{
		repo:     repo,
		roles:    roles,
		byClient: make(map[string][]ports.Profile),
	}
}

func (c *recipientCache) forClient(ctx context.Context, clientID string) ([]ports.Profile, error) {
	if users, ok := c.byClient[clientID]; ok {
		return users, nil
	}
	users, err := c.repo.ListProfilesForClient(ctx, clientID, c.roles)
	if err != nil {
		return nil, errs.Wrapf(err, "list recipients for client %s", clientID)
	}
	c.byClient[clientID] = users
	return users, nil
}
