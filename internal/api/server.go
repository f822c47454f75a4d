package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"news_aggregator/internal/cache"
	"news_aggregator/internal/domain"
)

// ArticleReader is the storage surface the read API consumes.
type ArticleReader interface {
	List(ctx context.Context, filter domain.ArticleFilter) ([]domain.StoredArticle, int, error)
	DistinctAuthors(ctx context.Context) ([]string, error)
}

// StatsReader exposes sync run history to the API.
type StatsReader interface {
	GetRecentStats(ctx context.Context, days int) (map[domain.Source]domain.SourceStats, error)
	GetFailedSyncs(ctx context.Context, hours int) ([]domain.FailedSync, error)
}

type Server struct {
	app      *fiber.App
	addr     string
	handlers *handlers
	logger   *slog.Logger
}

func NewServer(addr string, articles ArticleReader, stats StatsReader, store cache.Cache, cacheTTL time.Duration, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		app:  app,
		addr: addr,
		handlers: newHandlers(
			articles,
			stats,
			store,
			cacheTTL,
			logger,
		),
		logger: logger,
	}

	app.Use(s.requestLogger)
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	v1 := s.app.Group("/api/v1")

	v1.Get("/articles", s.handlers.listArticles)
	v1.Get("/sources", s.handlers.listSources)
	v1.Get("/authors", s.handlers.listAuthors)
	v1.Get("/sync/stats", s.handlers.syncStats)
	v1.Get("/sync/failures", s.handlers.syncFailures)
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Info("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
	)
	return err
}

func (s *Server) Listen() error {
	s.logger.Info("read api listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
