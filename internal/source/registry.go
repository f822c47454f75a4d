package source

import (
	"context"
	"fmt"
	"log/slog"

	"news_aggregator/internal/config"
	"news_aggregator/internal/domain"
	"news_aggregator/internal/source/guardian"
	"news_aggregator/internal/source/newsapi"
	"news_aggregator/internal/source/nytimes"
)

// Gateway is the capability every upstream variant implements. Fetch
// captures the gateway's own raw batch and never fails outward; Normalize
// maps whatever was last fetched into canonical articles.
type Gateway interface {
	Source() domain.Source
	Fetch(ctx context.Context)
	Normalize() []domain.Article
}

// NewGateway maps a source name to its gateway constructor.
func NewGateway(src domain.Source, cfg config.SourcesConfig, logger *slog.Logger) (Gateway, error) {
	switch src {
	case domain.SourceGuardian:
		return guardian.New(cfg.Guardian, logger), nil
	case domain.SourceNewsAPI:
		return newsapi.New(cfg.NewsAPI, logger), nil
	case domain.SourceNYTimes:
		return nytimes.New(cfg.NYTimes, logger), nil
	}
	return nil, fmt.Errorf("unknown source: %q", src)
}

// BuildAll constructs one gateway per source in the fixed set.
func BuildAll(cfg config.SourcesConfig, logger *slog.Logger) map[domain.Source]Gateway {
	gateways := make(map[domain.Source]Gateway, len(domain.AllSources()))
	for _, src := range domain.AllSources() {
		gw, err := NewGateway(src, cfg, logger)
		if err != nil {
			// unreachable for the closed set
			continue
		}
		gateways[src] = gw
	}
	return gateways
}
