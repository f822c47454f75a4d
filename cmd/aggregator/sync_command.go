package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"news_aggregator/internal/domain"
)

func newSyncCommand(configPath *string) *cobra.Command {
	var sourceFlag string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync pass for all sources or a single one",
		RunE: func(cmd *cobra.Command, args []string) error {
			// invalid source names are rejected before any run is opened
			var single *domain.Source
			if sourceFlag != "" {
				src, err := domain.ParseSource(sourceFlag)
				if err != nil {
					return err
				}
				single = &src
			}

			a, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if single != nil {
				return syncSingle(ctx, a, *single)
			}
			return syncAll(ctx, a)
		},
	}

	cmd.Flags().StringVar(&sourceFlag, "source", "", "sync a single source (guardian, news_api, ny_times)")

	return cmd
}

func syncSingle(ctx context.Context, a *app, src domain.Source) error {
	running, err := a.syncSvc.IsSourceRunning(ctx, src)
	if err != nil {
		return err
	}
	if running {
		fmt.Printf("skipping %s: sync already running\n", src)
		return nil
	}

	gw, ok := a.syncSvc.Gateway(src)
	if !ok {
		return fmt.Errorf("no gateway registered for %s", src)
	}

	if err := a.syncSvc.SyncSource(ctx, gw); err != nil {
		fmt.Printf("%s: failed: %v\n", src, err)
		return err
	}

	fmt.Printf("%s: completed\n", src)
	return nil
}

func syncAll(ctx context.Context, a *app) error {
	for _, outcome := range a.syncSvc.SyncAllSources(ctx) {
		switch {
		case outcome.Skipped:
			fmt.Printf("%s: skipped, sync already running\n", outcome.Source)
		case outcome.Err != nil:
			fmt.Printf("%s: failed: %v\n", outcome.Source, outcome.Err)
		default:
			fmt.Printf("%s: completed\n", outcome.Source)
		}
	}

	stats, err := a.syncSvc.GetRecentStats(ctx, 1)
	if err != nil {
		return err
	}

	fmt.Println("\nsync results:")
	for _, src := range domain.AllSources() {
		st := stats[src]
		fmt.Printf("  %s: created %d, skipped %d\n", src, st.TotalArticlesCreated, st.TotalArticlesSkipped)
	}

	return nil
}
