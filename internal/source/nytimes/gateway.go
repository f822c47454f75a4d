package nytimes

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

// Gateway fetches and normalizes articles from the NYTimes newswire API.
type Gateway struct {
	client *resty.Client
	apiKey string
	limit  int
	logger *slog.Logger

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
		client: client,
		apiKey: cfg.APIKey,
		limit:  cfg.PageSize,
		logger: logger.With("source", domain.SourceNYTimes),
	}
}

func (g *Gateway) Source() domain.Source {
	return domain.SourceNYTimes
}

// Fetch captures the latest newswire items; upstream failures degrade to
// an empty batch.
func (g *Gateway) Fetch(ctx context.Context) {
	g.results = nil

	var payload wireResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"api-key": g.apiKey,
			"limit":   strconv.Itoa(g.limit),
		}).
		SetResult(&payload).
		Get("/all.json")
	if err != nil {
		g.logger.Warn("nytimes fetch failed", "error", err)
		return
	}
	if resp.IsError() {
		g.logger.Warn("nytimes fetch failed",
			"status", resp.StatusCode(),
			"body", resp.String(),
		)
		return
	}

	g.results = payload.Results
}

// Normalize maps the last-fetched batch into canonical articles. The
// slug is fingerprinted; the first multimedia asset, if any, becomes the
// image URL.
func (g *Gateway) Normalize() []domain.Article {
	articles := make([]domain.Article, 0, len(g.results))

	for _, r := range g.results {
		r := r

		var imageURL *string
		if len(r.Multimedia) > 0 {
			imageURL = &r.Multimedia[0].URL
		}

		articles = append(articles, domain.Article{
			ExternalID:  fingerprint(r.SlugName),
			Title:       r.Title,
			Description: r.Abstract,
			Content:     nil,
			URL:         &r.URL,
			ImageURL:    imageURL,
			AuthorName:  r.Byline,
			PublishedAt: r.PublishedDate,
			Source:      domain.SourceNYTimes,
		})
	}

	return articles
}

func fingerprint(slug string) string {
	sum := md5.Sum([]byte(slug))
	return hex.EncodeToString(sum[:])
}
