package scheduler

import (
	"context"
	"log/slog"
	"time"

	"news_aggregator/internal/service"
)

// Syncer defines the interface for a multi-source sync pass.
type Syncer interface {
	SyncAllSources(ctx context.Context) []service.SyncOutcome
}

type Scheduler struct {
	syncer     Syncer
	interval   time.Duration
	runTimeout time.Duration
	logger     *slog.Logger
}

func NewScheduler(syncer Syncer, interval, runTimeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		syncer:     syncer,
		interval:   interval,
		runTimeout: runTimeout,
		logger:     logger,
	}
}

// Start runs one pass immediately, then one per interval until the
// context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runPass(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

func (s *Scheduler) runPass(ctx context.Context) {
	passCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	for _, outcome := range s.syncer.SyncAllSources(passCtx) {
		if outcome.Err != nil {
			s.logger.Error("sync pass source failed", "source", outcome.Source, "error", outcome.Err)
		}
	}
}
