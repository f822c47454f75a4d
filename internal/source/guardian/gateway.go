package guardian

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"

	"news_aggregator/internal/config"
	"news_aggregator/internal/domain"
)

// Gateway fetches and normalizes articles from the Guardian content API.
type Gateway struct {
	client   *resty.Client
	apiKey   string
	pageSize int
	logger   *slog.Logger

	// raw batch captured by the last Fetch; empty on any upstream failure
	results []result
}

func New(cfg config.GatewayConfig, logger *slog.Logger) *Gateway {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retry.MaxAttempts - 1).
		SetRetryWaitTime(cfg.Retry.Backoff).
		SetRetryMaxWaitTime(cfg.Retry.Backoff).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Gateway{
		client:   client,
		apiKey:   cfg.APIKey,
		pageSize: cfg.PageSize,
		logger:   logger.With("source", domain.SourceGuardian),
	}
}

func (g *Gateway) Source() domain.Source {
	return domain.SourceGuardian
}

// Fetch captures the latest page of results. Upstream failures never
// propagate: the raw batch is left empty and the pipeline proceeds with
// zero articles fetched.
func (g *Gateway) Fetch(ctx context.Context) {
	g.results = nil

	var payload searchResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"api-key":   g.apiKey,
			"page-size": strconv.Itoa(g.pageSize),
			"language":  "en",
		}).
		SetResult(&payload).
		Get("/search")
	if err != nil {
		g.logger.Warn("guardian fetch failed", "error", err)
		return
	}
	if resp.IsError() {
		g.logger.Warn("guardian fetch failed",
			"status", resp.StatusCode(),
			"body", resp.String(),
		)
		return
	}

	g.results = payload.Response.Results
}

// Normalize maps the last-fetched batch into canonical articles. The
// Guardian API has no native description field, so the title stands in.
func (g *Gateway) Normalize() []domain.Article {
	articles := make([]domain.Article, 0, len(g.results))

	for _, r := range g.results {
		r := r
		articles = append(articles, domain.Article{
			ExternalID:  fingerprint(r.ID),
			Title:       r.WebTitle,
			Description: &r.WebTitle,
			Content:     nil,
			URL:         &r.WebURL,
			ImageURL:    nil,
			AuthorName:  &r.PillarName,
			PublishedAt: r.WebPublicationDate,
			Source:      domain.SourceGuardian,
		})
	}

	return articles
}

// fingerprint derives the stable external ID from the Guardian's own
// item ID. It must stay deterministic across fetches.
func fingerprint(id string) string {
	sum := md5.Sum([]byte(id))
	return hex.EncodeToString(sum[:])
}
