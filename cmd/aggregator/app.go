package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"news_aggregator/internal/config"
	"news_aggregator/internal/domain"
	"news_aggregator/internal/publisher"
	"news_aggregator/internal/service"
	"news_aggregator/internal/source"
	"news_aggregator/internal/storage/postgres"
)

// app wires configuration, storage, gateways and services for one
// command invocation.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *sqlx.DB
	pub      *publisher.RabbitMQ
	articles *postgres.ArticleStore
	syncSvc  *service.SyncService
}

func buildApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		articles: postgres.NewArticleStore(db),
	}

	var pub service.Publisher
	if cfg.RabbitMQ.Enabled {
		rmq, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("connect to rabbitmq: %w", err)
		}
		a.pub = rmq
		pub = rmq
	}

	articleSvc := service.NewArticleService(a.articles, pub, logger)
	tracker := service.NewRunTracker(postgres.NewSyncRunStore(db), logger)

	a.syncSvc = service.NewSyncService(
		adaptGateways(source.BuildAll(cfg.Sources, logger)),
		articleSvc,
		tracker,
		logger,
	)

	return a, nil
}

func adaptGateways(in map[domain.Source]source.Gateway) map[domain.Source]service.Gateway {
	out := make(map[domain.Source]service.Gateway, len(in))
	for src, gw := range in {
		out[src] = gw
	}
	return out
}

func (a *app) Close() {
	if a.pub != nil {
		_ = a.pub.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
