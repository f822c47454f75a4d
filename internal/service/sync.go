package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"news_aggregator/internal/domain"
)

// SyncOutcome reports how one source fared within a multi-source pass.
type SyncOutcome struct {
	Source  domain.Source
	Skipped bool // overlap guard tripped, no run was opened
	Err     error
}

// SyncService drives one gateway through fetch, normalize, dedup/insert
// and run finalization, and aggregates run history for callers.
type SyncService struct {
	gateways map[domain.Source]Gateway
	articles *ArticleService
	tracker  *RunTracker
	logger   *slog.Logger
	now      func() time.Time
}

func NewSyncService(
	gateways map[domain.Source]Gateway,
	articles *ArticleService,
	tracker *RunTracker,
	logger *slog.Logger,
) *SyncService {
	return &SyncService{
		gateways: gateways,
		articles: articles,
		tracker:  tracker,
		logger:   logger,
		now:      time.Now,
	}
}

// SyncSource runs the full pipeline for one source. Every opened run
// reaches a terminal state before this returns: any error or panic in
// fetch, normalize or insert is caught here once and converted into a
// failed run.
func (s *SyncService) SyncSource(ctx context.Context, gw Gateway) (err error) {
	source := gw.Source()
	logger := s.logger.With("source", source)

	run, err := s.tracker.Open(ctx, source)
	if err != nil {
		return fmt.Errorf("open sync run: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			trace := string(debug.Stack())
			message := fmt.Sprintf("panic: %v", r)
			s.failRun(ctx, logger, run, message, &trace)
			err = fmt.Errorf("sync %s: %s", source, message)
		}
	}()

	gw.Fetch(ctx)
	articles := gw.Normalize()

	if err := s.tracker.RecordFetched(ctx, run, len(articles)); err != nil {
		s.failRun(ctx, logger, run, err.Error(), nil)
		return fmt.Errorf("sync %s: %w", source, err)
	}

	result, err := s.articles.CreateFromBatch(ctx, articles, source)
	if err != nil {
		s.failRun(ctx, logger, run, err.Error(), nil)
		return fmt.Errorf("sync %s: %w", source, err)
	}

	if err := s.tracker.FinalizeSuccess(ctx, run, result.Created, result.Skipped); err != nil {
		return fmt.Errorf("sync %s: %w", source, err)
	}

	logger.Info("news sync completed",
		"fetched", len(articles),
		"created", result.Created,
		"skipped", result.Skipped,
	)

	return nil
}

func (s *SyncService) failRun(ctx context.Context, logger *slog.Logger, run *domain.SyncRun, message string, trace *string) {
	if err := s.tracker.FinalizeFailure(ctx, run, message, trace); err != nil {
		logger.Error("failed to finalize sync run", "sync_run_id", run.ID, "error", err)
	}

	logger.Error("news sync failed",
		"error", message,
		"sync_run_id", run.ID,
	)
}

// SyncAllSources processes the fixed source set sequentially. A failure
// on one source never prevents the remaining sources from running.
func (s *SyncService) SyncAllSources(ctx context.Context) []SyncOutcome {
	outcomes := make([]SyncOutcome, 0, len(domain.AllSources()))

	for _, source := range domain.AllSources() {
		gw, ok := s.gateways[source]
		if !ok {
			continue
		}

		running, err := s.tracker.IsRunning(ctx, source)
		if err != nil {
			outcomes = append(outcomes, SyncOutcome{Source: source, Err: err})
			continue
		}
		if running {
			s.logger.Warn("skipping source, sync already running", "source", source)
			outcomes = append(outcomes, SyncOutcome{Source: source, Skipped: true})
			continue
		}

		outcomes = append(outcomes, SyncOutcome{Source: source, Err: s.SyncSource(ctx, gw)})
	}

	return outcomes
}

// IsSourceRunning exposes the advisory overlap guard.
func (s *SyncService) IsSourceRunning(ctx context.Context, source domain.Source) (bool, error) {
	return s.tracker.IsRunning(ctx, source)
}

// Gateway returns the registered gateway for a source.
func (s *SyncService) Gateway(source domain.Source) (Gateway, bool) {
	gw, ok := s.gateways[source]
	return gw, ok
}

// GetRecentStats aggregates finalized runs per source over a trailing
// window of days. Every source appears in the table, zeroed when it has
// no runs.
func (s *SyncService) GetRecentStats(ctx context.Context, days int) (map[domain.Source]domain.SourceStats, error) {
	since := s.now().UTC().AddDate(0, 0, -days)
	stats := make(map[domain.Source]domain.SourceStats, len(domain.AllSources()))

	for _, source := range domain.AllSources() {
		runs, err := s.tracker.runs.RecentBySource(ctx, source, since)
		if err != nil {
			return nil, fmt.Errorf("recent runs for %s: %w", source, err)
		}

		var st domain.SourceStats
		st.TotalRuns = len(runs)
		for _, run := range runs {
			switch run.Status {
			case domain.RunStatusCompleted:
				st.SuccessfulRuns++
			case domain.RunStatusFailed:
				st.FailedRuns++
			}
			st.TotalArticlesCreated += run.ArticlesCreated
			st.TotalArticlesSkipped += run.ArticlesSkipped
		}
		if len(runs) > 0 {
			// RecentBySource orders by started_at desc
			latest := runs[0]
			st.LastSync = &latest.StartedAt
			st.LastSyncStatus = &latest.Status
		}

		stats[source] = st
	}

	return stats, nil
}

// GetFailedSyncs lists failed runs within a trailing window of hours.
func (s *SyncService) GetFailedSyncs(ctx context.Context, hours int) ([]domain.FailedSync, error) {
	since := s.now().UTC().Add(-time.Duration(hours) * time.Hour)

	runs, err := s.tracker.runs.FailedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed runs: %w", err)
	}

	failures := make([]domain.FailedSync, 0, len(runs))
	for _, run := range runs {
		var message string
		if run.ErrorMessage != nil {
			message = *run.ErrorMessage
		}
		failures = append(failures, domain.FailedSync{
			Source:       run.Source,
			StartedAt:    run.StartedAt,
			ErrorMessage: message,
			SyncRunID:    run.ID,
		})
	}

	return failures, nil
}
