package service

import (
	"context"
	"fmt"
	"log/slog"

	"news_aggregator/internal/domain"
)

// ArticleService deduplicates incoming batches against storage and
// persists only the new records.
type ArticleService struct {
	articles  ArticleStore
	publisher Publisher
	logger    *slog.Logger
}

func NewArticleService(articles ArticleStore, publisher Publisher, logger *slog.Logger) *ArticleService {
	return &ArticleService{
		articles:  articles,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateFromBatch walks the batch once in input order: articles whose
// external ID is already stored for the source, or repeated within the
// batch itself, count as skipped; the rest are inserted in one batch
// statement. If the batch insert fails the service falls back to
// per-record inserts so one conflicting record only costs itself.
// Created+Skipped in the result always equals the attempted set size.
func (s *ArticleService) CreateFromBatch(ctx context.Context, articles []domain.Article, source domain.Source) (domain.BatchResult, error) {
	var result domain.BatchResult
	if len(articles) == 0 {
		return result, nil
	}

	externalIDs := make([]string, len(articles))
	for i, a := range articles {
		externalIDs[i] = a.ExternalID
	}

	existing, err := s.articles.ExistingExternalIDs(ctx, source, externalIDs)
	if err != nil {
		return result, fmt.Errorf("lookup existing articles: %w", err)
	}

	seen := make(map[string]struct{}, len(articles))
	toCreate := make([]domain.Article, 0, len(articles))

	for _, a := range articles {
		if _, ok := existing[a.ExternalID]; ok {
			result.Skipped++
			continue
		}
		if _, ok := seen[a.ExternalID]; ok {
			result.Skipped++
			continue
		}
		seen[a.ExternalID] = struct{}{}
		toCreate = append(toCreate, a)
		result.Created++
	}

	if len(toCreate) == 0 {
		return result, nil
	}

	created := toCreate
	if err := s.articles.InsertBatch(ctx, toCreate); err != nil {
		s.logger.Error("batch insert failed",
			"source", source,
			"articles_count", len(toCreate),
			"error", err,
		)
		created = s.insertIndividually(ctx, toCreate, source)
		result.Skipped += len(toCreate) - len(created)
		result.Created = len(created)
	}

	s.publishCreated(ctx, created)

	return result, nil
}

// insertIndividually is the fallback path after a failed batch insert.
// Each record is attempted on its own; only genuinely failing records
// are lost.
func (s *ArticleService) insertIndividually(ctx context.Context, articles []domain.Article, source domain.Source) []domain.Article {
	created := make([]domain.Article, 0, len(articles))

	for _, a := range articles {
		if err := s.articles.Insert(ctx, a); err != nil {
			s.logger.Warn("individual article insert failed",
				"external_id", a.ExternalID,
				"source", source,
				"error", err,
			)
			continue
		}
		created = append(created, a)
	}

	return created
}

// publishCreated emits a best-effort event per durably created article.
// Publish failures never affect the batch result.
func (s *ArticleService) publishCreated(ctx context.Context, articles []domain.Article) {
	if s.publisher == nil {
		return
	}

	for i := range articles {
		if err := s.publisher.PublishCreated(ctx, &articles[i]); err != nil {
			s.logger.Warn("publish created article failed",
				"external_id", articles[i].ExternalID,
				"error", err,
			)
		}
	}
}
