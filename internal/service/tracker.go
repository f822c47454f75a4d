package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"news_aggregator/internal/domain"
)

// RunTracker owns the SyncRun lifecycle: it creates the record at
// pipeline start and finalizes it exactly once, success or failure.
type RunTracker struct {
	runs   SyncRunStore
	logger *slog.Logger
	now    func() time.Time
}

func NewRunTracker(runs SyncRunStore, logger *slog.Logger) *RunTracker {
	return &RunTracker{
		runs:   runs,
		logger: logger,
		now:    time.Now,
	}
}

// Open creates a run with status running and zeroed counters. Creation
// failure is an infrastructure error, not a domain outcome.
func (t *RunTracker) Open(ctx context.Context, source domain.Source) (*domain.SyncRun, error) {
	run := &domain.SyncRun{
		Source:    source,
		Status:    domain.RunStatusRunning,
		StartedAt: t.now().UTC(),
	}

	if err := t.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create sync run: %w", err)
	}

	return run, nil
}

// RecordFetched persists the fetched counter before the insertion step,
// so a crash between fetch and insert still leaves an accurate record.
func (t *RunTracker) RecordFetched(ctx context.Context, run *domain.SyncRun, fetched int) error {
	run.ArticlesFetched = fetched
	if err := t.runs.UpdateFetched(ctx, run.ID, fetched); err != nil {
		return fmt.Errorf("record fetched count: %w", err)
	}
	return nil
}

// FinalizeSuccess transitions the run to completed and stamps metadata.
func (t *RunTracker) FinalizeSuccess(ctx context.Context, run *domain.SyncRun, created, skipped int) error {
	completedAt := t.now().UTC()

	run.Status = domain.RunStatusCompleted
	run.CompletedAt = &completedAt
	run.ArticlesCreated = created
	run.ArticlesSkipped = skipped
	run.Metadata = domain.RunMetadata{
		SyncDurationSeconds: completedAt.Sub(run.StartedAt).Seconds(),
		ProcessingRate:      processingRate(created, skipped),
	}

	if err := t.runs.Finalize(ctx, run); err != nil {
		return fmt.Errorf("finalize sync run: %w", err)
	}
	return nil
}

// FinalizeFailure transitions the run to failed, keeping whatever partial
// counters were recorded before the error.
func (t *RunTracker) FinalizeFailure(ctx context.Context, run *domain.SyncRun, message string, trace *string) error {
	completedAt := t.now().UTC()

	run.Status = domain.RunStatusFailed
	run.CompletedAt = &completedAt
	run.ErrorMessage = &message
	run.Metadata = domain.RunMetadata{
		SyncDurationSeconds: completedAt.Sub(run.StartedAt).Seconds(),
		ProcessingRate:      processingRate(run.ArticlesCreated, run.ArticlesSkipped),
		ErrorTrace:          trace,
	}

	if err := t.runs.Finalize(ctx, run); err != nil {
		return fmt.Errorf("finalize sync run: %w", err)
	}
	return nil
}

// IsRunning reports whether any run for the source is currently open.
// It is an advisory point-in-time check, not a lock: two concurrent
// triggers can both observe false and both proceed. The dedup key keeps
// duplicate runs harmless.
func (t *RunTracker) IsRunning(ctx context.Context, source domain.Source) (bool, error) {
	return t.runs.HasRunning(ctx, source)
}

func processingRate(created, skipped int) float64 {
	total := created + skipped
	if total == 0 {
		return 0
	}
	return float64(created) / float64(total) * 100
}
