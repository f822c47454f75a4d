package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"news_aggregator/internal/domain"
)

func newStatsCommand(configPath *string) *cobra.Command {
	var days, hours int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show recent sync statistics and failures",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()

			stats, err := a.syncSvc.GetRecentStats(ctx, days)
			if err != nil {
				return err
			}

			fmt.Printf("recent sync statistics (last %d days)\n\n", days)
			for _, src := range domain.AllSources() {
				st := stats[src]
				fmt.Printf("%s\n", src)
				fmt.Printf("  total runs:       %d\n", st.TotalRuns)
				fmt.Printf("  successful:       %d\n", st.SuccessfulRuns)
				fmt.Printf("  failed:           %d\n", st.FailedRuns)
				fmt.Printf("  articles created: %d\n", st.TotalArticlesCreated)
				fmt.Printf("  articles skipped: %d\n", st.TotalArticlesSkipped)
				if st.LastSync != nil {
					fmt.Printf("  last sync:        %s (%s)\n",
						st.LastSync.Format("2006-01-02 15:04:05"), *st.LastSyncStatus)
				} else {
					fmt.Printf("  last sync:        never\n")
				}
				fmt.Println()
			}

			failures, err := a.syncSvc.GetFailedSyncs(ctx, hours)
			if err != nil {
				return err
			}
			if len(failures) > 0 {
				fmt.Printf("recent failures (last %d hours):\n", hours)
				for _, f := range failures {
					fmt.Printf("  %s at %s: %s (run %d)\n",
						f.Source, f.StartedAt.Format("2006-01-02 15:04:05"), f.ErrorMessage, f.SyncRunID)
				}
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "trailing window for aggregate stats")
	cmd.Flags().IntVar(&hours, "hours", 24, "trailing window for the failure listing")

	return cmd
}
