package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"news_aggregator/internal/cache"
	"news_aggregator/internal/domain"
)

type handlers struct {
	articles ArticleReader
	stats    StatsReader
	cache    cache.Cache
	cacheTTL time.Duration
	validate *validator.Validate
	logger   *slog.Logger
}

func newHandlers(articles ArticleReader, stats StatsReader, store cache.Cache, cacheTTL time.Duration, logger *slog.Logger) *handlers {
	return &handlers{
		articles: articles,
		stats:    stats,
		cache:    store,
		cacheTTL: cacheTTL,
		validate: validator.New(),
		logger:   logger,
	}
}

type listArticlesQuery struct {
	Source      string `query:"source" validate:"omitempty,oneof=guardian news_api ny_times"`
	Author      string `query:"author" validate:"omitempty,min=2"`
	PublishDate string `query:"publish_date" validate:"omitempty,datetime=2006-01-02"`
	Search      string `query:"search" validate:"omitempty,min=2"`
	Page        int    `query:"page" validate:"omitempty,gte=1"`
	PerPage     int    `query:"per_page" validate:"omitempty,gte=1,lte=100"`
}

type pagination struct {
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	Total       int  `json:"total"`
	LastPage    int  `json:"last_page"`
	HasMore     bool `json:"has_more"`
}

func (h *handlers) listArticles(c *fiber.Ctx) error {
	var q listArticlesQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	if q.Page == 0 {
		q.Page = 1
	}
	if q.PerPage == 0 {
		q.PerPage = 20
	}

	cacheKey := fmt.Sprintf("articles:%s:%s:%s:%s:%d:%d",
		q.Source, q.Author, q.PublishDate, q.Search, q.Page, q.PerPage)
	if h.serveCached(c, cacheKey) {
		return nil
	}

	filter := domain.ArticleFilter{
		Page:    q.Page,
		PerPage: q.PerPage,
	}
	if q.Source != "" {
		source := domain.Source(q.Source)
		filter.Source = &source
	}
	if q.Author != "" {
		filter.Author = &q.Author
	}
	if q.PublishDate != "" {
		filter.FromDate = &q.PublishDate
	}
	if q.Search != "" {
		filter.Search = &q.Search
	}

	articles, total, err := h.articles.List(c.Context(), filter)
	if err != nil {
		h.logger.Error("list articles failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list articles")
	}
	if articles == nil {
		articles = []domain.StoredArticle{}
	}

	lastPage := (total + q.PerPage - 1) / q.PerPage
	if lastPage == 0 {
		lastPage = 1
	}

	return h.respondCached(c, cacheKey, fiber.Map{
		"data": articles,
		"pagination": pagination{
			CurrentPage: q.Page,
			PerPage:     q.PerPage,
			Total:       total,
			LastPage:    lastPage,
			HasMore:     q.Page < lastPage,
		},
	})
}

func (h *handlers) listSources(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": domain.AllSources()})
}

func (h *handlers) listAuthors(c *fiber.Ctx) error {
	const cacheKey = "authors"
	if h.serveCached(c, cacheKey) {
		return nil
	}

	authors, err := h.articles.DistinctAuthors(c.Context())
	if err != nil {
		h.logger.Error("list authors failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list authors")
	}
	if authors == nil {
		authors = []string{}
	}

	return h.respondCached(c, cacheKey, fiber.Map{"data": authors})
}

type syncStatsQuery struct {
	Days int `query:"days" validate:"omitempty,gte=1,lte=90"`
}

func (h *handlers) syncStats(c *fiber.Ctx) error {
	var q syncStatsQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	if q.Days == 0 {
		q.Days = 7
	}

	stats, err := h.stats.GetRecentStats(c.Context(), q.Days)
	if err != nil {
		h.logger.Error("sync stats failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load sync stats")
	}

	return c.JSON(fiber.Map{"data": stats, "days": q.Days})
}

type syncFailuresQuery struct {
	Hours int `query:"hours" validate:"omitempty,gte=1,lte=720"`
}

func (h *handlers) syncFailures(c *fiber.Ctx) error {
	var q syncFailuresQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	if q.Hours == 0 {
		q.Hours = 24
	}

	failures, err := h.stats.GetFailedSyncs(c.Context(), q.Hours)
	if err != nil {
		h.logger.Error("sync failures failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load sync failures")
	}
	if failures == nil {
		failures = []domain.FailedSync{}
	}

	return c.JSON(fiber.Map{"data": failures, "hours": q.Hours})
}

// serveCached writes a cached response body if one exists.
func (h *handlers) serveCached(c *fiber.Ctx, key string) bool {
	if h.cache == nil {
		return false
	}

	body, ok, err := h.cache.Get(c.Context(), key)
	if err != nil {
		h.logger.Warn("cache get failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	_ = c.Send(body)
	return true
}

// respondCached sends the payload and stores the rendered body.
func (h *handlers) respondCached(c *fiber.Ctx, key string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if h.cache != nil {
		if err := h.cache.Set(c.Context(), key, body, h.cacheTTL); err != nil {
			h.logger.Warn("cache set failed", "key", key, "error", err)
		}
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}
