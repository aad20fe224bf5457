package compliance

import (
	"context"
	"errors"
	"time"

	"section3/internal/bootstrap/logging"
	domain "section3/internal/domain/compliance"
	"section3/internal/errs"
	"section3/internal/ports"
)

var (
	errContextRequired  = errors.New("context is required")
	errRepoRequired     = errs.Ef(errs.KindConfiguration, "compliance repository is required")
	errUOWRequired      = errs.Ef(errs.KindConfiguration, "compliance unit of work is required")
	errContractRequired = errs.Ef(errs.KindInvalidInput, "contract id is required")
)

type Service struct {
	repo      ports.ComplianceRepository
	uow       ports.UnitOfWork
	cache     ports.Cache
	publisher ports.NotificationPublisher
	metrics   ports.JobMetrics
	rules     domain.Rules
	now       func() time.Time
}

// NewService wires the compliance usecases. cache, publisher and metrics may be nil.
func NewService(
	repo ports.ComplianceRepository,
	uow ports.UnitOfWork,
	cache ports.Cache,
	publisher ports.NotificationPublisher,
	metrics ports.JobMetrics,
	rules domain.Rules,
) *Service {
	return &Service{
		repo:      repo,
		uow:       uow,
		cache:     cache,
		publisher: publisher,
		metrics:   metrics,
		rules:     rules,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Rules returns the rule set the service evaluates with.
func (s *Service) Rules() domain.Rules {
	return s.rules
}

func (s *Service) ready(ctx context.Context) error {
	if ctx == nil {
		return errContextRequired
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errRepoRequired
	}
	if s.uow == nil {
		return errUOWRequired
	}
	return nil
}

func (s *Service) today() time.Time {
	return domain.StartOfDay(s.now())
}

func (s *Service) observe(job string, started time.Time, created int, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveJob(job, err == nil, created, s.now().Sub(started))
}

func logContext(ctx context.Context, component string) context.Context {
	return logging.WithComponent(ctx, component)
}

func contractBenchmarks(rules domain.Rules, contract ports.Contract) (float64, float64) {
	laborHour, targeted := rules.LaborHourBenchmark, rules.TargetedBenchmark
	if contract.Applicability == nil {
		return laborHour, targeted
	}
	if v := contract.Applicability.LaborHourBenchmark; v > 0 {
		laborHour = v
	}
	if v := contract.Applicability.TargetedBenchmark; v > 0 {
		targeted = v
	}
	return laborHour, targeted
}

func stringPtr(v string) *string {
	return &v
}
