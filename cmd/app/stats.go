package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"seamless/internal/stats"
	"seamless/internal/timeutil"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show recorded loop statistics per feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		rows, err := store.Summary(ctx)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}
		printSummary(rows, time.Now())
		return nil
	},
}

func printSummary(rows []stats.FeedSummary, now time.Time) {
	fmt.Printf("%-40s %-6s %-8s %-6s %-10s %-8s %s\n", "FEED", "RUNS", "WRAPS", "STOPS", "UPTIME", "RATE", "LAST SEEN")
	fmt.Printf("%-40s %-6s %-8s %-6s %-10s %-8s %s\n", "----", "----", "-----", "-----", "------", "----", "---------")
	for _, r := range rows {
		feed := r.Feed
		if len(feed) > 40 {
			feed = "…" + feed[len(feed)-39:]
		}
		fmt.Printf("%-40s %-6d %-8d %-6d %-10s %-8s %s\n",
			feed, r.Runs, r.Wraps, r.Stops,
			timeutil.FormatDuration(r.Uptime),
			timeutil.FormatRate(r.Wraps, r.Uptime),
			timeutil.FormatAgo(r.LastSeen, now),
		)
	}
}
