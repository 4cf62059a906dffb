// Package scheduler runs the periodic dividend history refresh.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ndewijer/Dividend-Income-Projector/internal/logging"
	"github.com/ndewijer/Dividend-Income-Projector/internal/model"
)

// DefaultRefreshTimeout bounds one scheduled refresh run.
const DefaultRefreshTimeout = 5 * time.Minute

// Refresher refreshes the dividend history of the whole portfolio.
type Refresher interface {
	Refresh(ctx context.Context) (model.RefreshResult, error)
}

// Scheduler wraps a cron runner whose specs include a seconds field and are
// evaluated in UTC. Overlapping runs of the same job are skipped.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a stopped Scheduler.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.L
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
	}
}

// AddRefresh schedules r on spec. Each run gets its own timeout.
func (s *Scheduler) AddRefresh(spec string, r Refresher, timeout time.Duration) (cron.EntryID, error) {
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}
	id, err := s.cron.AddFunc(spec, s.refreshJob(r, timeout))
	if err != nil {
		return 0, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	s.logger.Info("scheduled dividend history refresh", "schedule", spec)
	return id, nil
}

// Entries returns the scheduled jobs.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) refreshJob(r Refresher, timeout time.Duration) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		result, err := r.Refresh(ctx)
		if err != nil {
			s.logger.Error("scheduled refresh failed", "error", err)
			return
		}
		s.logger.Info("scheduled refresh finished",
			"refreshed", len(result.Refreshed),
			"failed", len(result.Failed),
			"duration", time.Since(start))
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
