package newsapi

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

// Gateway fetches and normalizes articles from the NewsAPI /everything
// endpoint, sorted by publication date with the search-all wildcard.
type Gateway struct {
	client   *resty.Client
	apiKey   string
	pageSize int
	logger   *slog.Logger

	articles []article
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
		logger:   logger.With("source", domain.SourceNewsAPI),
	}
}

func (g *Gateway) Source() domain.Source {
	return domain.SourceNewsAPI
}

// Fetch captures the latest page of articles; upstream failures degrade
// to an empty batch.
func (g *Gateway) Fetch(ctx context.Context) {
	g.articles = nil

	var payload everythingResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apiKey":   g.apiKey,
			"pageSize": strconv.Itoa(g.pageSize),
			"language": "en",
			"sortBy":   "publishedAt",
			"q":        "*",
		}).
		SetResult(&payload).
		Get("/everything")
	if err != nil {
		g.logger.Warn("newsapi fetch failed", "error", err)
		return
	}
	if resp.IsError() {
		g.logger.Warn("newsapi fetch failed",
			"status", resp.StatusCode(),
			"body", resp.String(),
		)
		return
	}

	g.articles = payload.Articles
}

// Normalize maps the last-fetched batch into canonical articles. NewsAPI
// exposes no stable item ID, so the canonical URL is fingerprinted.
func (g *Gateway) Normalize() []domain.Article {
	articles := make([]domain.Article, 0, len(g.articles))

	for _, a := range g.articles {
		a := a
		articles = append(articles, domain.Article{
			ExternalID:  fingerprint(a.URL),
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			URL:         &a.URL,
			ImageURL:    a.URLToImage,
			AuthorName:  a.Author,
			PublishedAt: a.PublishedAt,
			Source:      domain.SourceNewsAPI,
		})
	}

	return articles
}

func fingerprint(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}
