package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"news_aggregator/internal/domain"
)

type ArticleStore interface {
	// ExistingExternalIDs reports which of the given external IDs are
	// already stored for the source, in a single lookup.
	ExistingExternalIDs(ctx context.Context, source domain.Source, externalIDs []string) (map[string]struct{}, error)
	InsertBatch(ctx context.Context, articles []domain.Article) error
	Insert(ctx context.Context, article domain.Article) error
}

type SyncRunStore interface {
	Create(ctx context.Context, run *domain.SyncRun) error
	UpdateFetched(ctx context.Context, id int64, fetched int) error
	Finalize(ctx context.Context, run *domain.SyncRun) error
	HasRunning(ctx context.Context, source domain.Source) (bool, error)
	RecentBySource(ctx context.Context, source domain.Source, since time.Time) ([]domain.SyncRun, error)
	FailedSince(ctx context.Context, since time.Time) ([]domain.SyncRun, error)
}

// Gateway is one upstream news API. Fetch captures the gateway's own raw
// batch and absorbs upstream failures; Normalize maps whatever was last
// fetched into canonical articles.
type Gateway interface {
	Source() domain.Source
	Fetch(ctx context.Context)
	Normalize() []domain.Article
}

type Publisher interface {
	PublishCreated(ctx context.Context, article *domain.Article) error
	Close() error
}
