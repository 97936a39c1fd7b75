package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/cadence/internal/productivity/application/commands"
	"github.com/felixgeelhaar/cadence/pkg/observability"
	"github.com/robfig/cron/v3"
)

// RescoreScheduler rescores stale tasks on a cron schedule so ranked lists
// stay current between scheduling runs.
type RescoreScheduler struct {
	cron    *cron.Cron
	handler *commands.ScorePrioritiesHandler
	maxAge  time.Duration
	logger  *slog.Logger

	mu  sync.Mutex
	ctx context.Context
}

// NewRescoreScheduler parses spec ("@every 1h", "0 */2 * * *") and binds
// the job. Overlapping runs are skipped.
func NewRescoreScheduler(
	handler *commands.ScorePrioritiesHandler,
	spec string,
	maxAge time.Duration,
	logger *slog.Logger,
) (*RescoreScheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))
	s := &RescoreScheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		handler: handler,
		maxAge:  maxAge,
		logger:  logger,
		ctx:     context.Background(),
	}
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("invalid rescore schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the schedule in the background. Jobs inherit ctx.
func (s *RescoreScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
	s.logger.Info("rescore scheduler started", "max_age", s.maxAge)
}

// Stop halts the schedule and waits for a running job to finish.
func (s *RescoreScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("rescore scheduler stopped")
}

// RunOnce rescores tasks whose score is missing, outdated or older than
// maxAge and returns how many were scored.
func (s *RescoreScheduler) RunOnce(ctx context.Context) (int, error) {
	ctx = observability.NewRequestContext(ctx, "rescore")
	results, err := s.handler.Handle(ctx, commands.ScorePrioritiesCommand{
		StaleOnly: true,
		MaxAge:    s.maxAge,
	})
	if err != nil {
		return 0, err
	}
	return len(results), nil
}

func (s *RescoreScheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx.Err() != nil {
		return
	}

	n, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled rescore failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "scheduled rescore completed", "tasks", n)
	}
}
