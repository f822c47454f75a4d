package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"news_aggregator/internal/api"
	"news_aggregator/internal/cache"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-side HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			var store cache.Cache
			if a.cfg.Redis.Enabled {
				redisCache, err := cache.NewRedisCache(a.cfg.Redis.URL)
				if err != nil {
					return err
				}
				store = redisCache
			} else {
				store = cache.NewMemoryCache()
			}
			defer store.Close()

			server := api.NewServer(
				a.cfg.HTTP.Addr,
				a.articles,
				a.syncSvc,
				store,
				a.cfg.Redis.TTL,
				a.logger,
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Listen()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				a.logger.Info("shutting down read api")
				return server.Shutdown()
			}
		},
	}
}
