package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"news_aggregator/internal/domain"
)

type SyncRunStore struct {
	db *sqlx.DB
}

func NewSyncRunStore(db *sqlx.DB) *SyncRunStore {
	return &SyncRunStore{db: db}
}

// Create inserts the run and assigns its storage identity.
func (s *SyncRunStore) Create(ctx context.Context, run *domain.SyncRun) error {
	query := `
		INSERT INTO news_sync_runs (source, status, started_at)
		VALUES ($1, $2, $3)
		RETURNING id`

	return s.db.QueryRowContext(ctx, query,
		run.Source,
		run.Status,
		run.StartedAt,
	).Scan(&run.ID)
}

// UpdateFetched records the fetched counter mid-flight.
func (s *SyncRunStore) UpdateFetched(ctx context.Context, id int64, fetched int) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE news_sync_runs SET articles_fetched = $2 WHERE id = $1",
		id, fetched,
	)
	return err
}

// Finalize writes the terminal state of the run in one statement.
func (s *SyncRunStore) Finalize(ctx context.Context, run *domain.SyncRun) error {
	query := `
		UPDATE news_sync_runs SET
			status = $2,
			completed_at = $3,
			articles_created = $4,
			articles_skipped = $5,
			error_message = $6,
			metadata = $7
		WHERE id = $1`

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.Status,
		run.CompletedAt,
		run.ArticlesCreated,
		run.ArticlesSkipped,
		run.ErrorMessage,
		run.Metadata,
	)
	return err
}

// HasRunning reports whether any run for the source is currently open.
func (s *SyncRunStore) HasRunning(ctx context.Context, source domain.Source) (bool, error) {
	var running bool
	err := s.db.GetContext(ctx, &running,
		"SELECT EXISTS (SELECT 1 FROM news_sync_runs WHERE source = $1 AND status = $2)",
		source, domain.RunStatusRunning,
	)
	return running, err
}

// RecentBySource returns the source's runs since the given time, newest
// first.
func (s *SyncRunStore) RecentBySource(ctx context.Context, source domain.Source, since time.Time) ([]domain.SyncRun, error) {
	query := `
		SELECT id, source, status, started_at, completed_at,
		       articles_fetched, articles_created, articles_skipped,
		       error_message, metadata
		FROM news_sync_runs
		WHERE source = $1 AND started_at >= $2
		ORDER BY started_at DESC`

	var runs []domain.SyncRun
	err := s.db.SelectContext(ctx, &runs, query, source, since)
	return runs, err
}

// FailedSince returns every failed run started after the given time,
// newest first.
func (s *SyncRunStore) FailedSince(ctx context.Context, since time.Time) ([]domain.SyncRun, error) {
	query := `
		SELECT id, source, status, started_at, completed_at,
		       articles_fetched, articles_created, articles_skipped,
		       error_message, metadata
		FROM news_sync_runs
		WHERE status = $1 AND started_at >= $2
		ORDER BY started_at DESC`

	var runs []domain.SyncRun
	err := s.db.SelectContext(ctx, &runs, query, domain.RunStatusFailed, since)
	return runs, err
}
