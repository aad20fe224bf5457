package compliance

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"time"

	"section3/internal/bootstrap/logging"
	"section3/internal/errs"
)

const jobLedgerPrefix = "job_last_run:"

// JobRun is the last recorded outcome of a scheduled job.
type JobRun struct {
	Job        string    `json:"job"`
	Success    bool      `json:"success"`
	Created    int       `json:"created"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

func jobLedgerKey(job string) string {
	return jobLedgerPrefix + job
}

// recordJob stores the run outcome in the cache and metrics. Ledger failures
// are logged and never fail the job.
func (s *Service) recordJob(ctx context.Context, job string, started time.Time, created int, jobErr error) {
	elapsed := s.now().Sub(started)
	s.observe(job, started, created, jobErr)
	if s.cache == nil {
		return
	}

	run := JobRun{
		Job:        job,
		Success:    jobErr == nil,
		Created:    created,
		StartedAt:  started.UTC(),
		DurationMS: elapsed.Milliseconds(),
	}
	if jobErr != nil {
		run.Error = jobErr.Error()
	}

	payload, err := json.Marshal(run)
	if err != nil {
		logging.Warn(logContext(ctx, "usecase.jobs"), "encode job run failed", slog.String("job", job), slog.Any("err", errs.Loggable(err)))
		return
	}
	if err := s.cache.Set(ctx, jobLedgerKey(job), string(payload), 0); err != nil {
		logging.Warn(logContext(ctx, "usecase.jobs"), "record job run failed", slog.String("job", job), slog.Any("err", errs.Loggable(err)))
	}
}

// JobStatuses returns the last run of every job that has recorded one, sorted by job name.
func (s *Service) JobStatuses(ctx context.Context) ([]JobRun, error) {
	if ctx == nil {
		return nil, errContextRequired
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.cache == nil {
		return nil, errs.Ef(errs.KindConfiguration, "job ledger cache is required")
	}

	entries, err := s.cache.List(ctx, jobLedgerPrefix)
	if err != nil {
		return nil, errs.Wrap(err, "list job runs")
	}

	runs := make([]JobRun, 0, len(entries))
	for key, value := range entries {
		var run JobRun
		if err := json.Unmarshal([]byte(value), &run); err != nil {
			logging.Warn(logContext(ctx, "usecase.jobs"), "skip unreadable job run", slog.String("key", key), slog.Any("err", errs.Loggable(err)))
			continue
		}
		if run.Job == "" {
			run.Job = strings.TrimPrefix(key, jobLedgerPrefix)
		}
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Job < runs[j].Job })
	return runs, nil
}
