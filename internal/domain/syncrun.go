package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RunStatus is the SyncRun lifecycle state. A run moves from running to
// exactly one of completed or failed and is never mutated afterwards.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunMetadata is the write-once diagnostic blob stamped at finalization.
type RunMetadata struct {
	SyncDurationSeconds float64 `json:"sync_duration_seconds"`
	ProcessingRate      float64 `json:"processing_rate"`
	ErrorTrace          *string `json:"error_trace"`
}

// Value implements driver.Valuer so metadata lands in a JSONB column.
func (m RunMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *RunMetadata) Scan(src any) error {
	if src == nil {
		*m = RunMetadata{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return fmt.Errorf("unsupported metadata type %T", src)
}

// SyncRun is the audit record of one pipeline execution for one source.
type SyncRun struct {
	ID              int64       `db:"id"`
	Source          Source      `db:"source"`
	Status          RunStatus   `db:"status"`
	StartedAt       time.Time   `db:"started_at"`
	CompletedAt     *time.Time  `db:"completed_at"`
	ArticlesFetched int         `db:"articles_fetched"`
	ArticlesCreated int         `db:"articles_created"`
	ArticlesSkipped int         `db:"articles_skipped"`
	ErrorMessage    *string     `db:"error_message"`
	Metadata        RunMetadata `db:"metadata"`
}

// SourceStats aggregates finalized runs for one source over a trailing window.
type SourceStats struct {
	TotalRuns            int        `json:"total_runs"`
	SuccessfulRuns       int        `json:"successful_runs"`
	FailedRuns           int        `json:"failed_runs"`
	TotalArticlesCreated int        `json:"total_articles_created"`
	TotalArticlesSkipped int        `json:"total_articles_skipped"`
	LastSync             *time.Time `json:"last_sync"`
	LastSyncStatus       *RunStatus `json:"last_sync_status"`
}

// FailedSync is one entry in the recent-failures listing.
type FailedSync struct {
	Source       Source    `json:"source"`
	StartedAt    time.Time `json:"started_at"`
	ErrorMessage string    `json:"error_message"`
	SyncRunID    int64     `json:"sync_run_id"`
}
