package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/negokart/negokart-cli/internal"
	"github.com/spf13/cobra"
)

var watchRecord bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll negotiation results and alert on finalized offers",
	Long: `Poll the retailer's negotiation results on a fixed interval (10s by
default, see poll_interval in the config) and re-render the ranked view
after every fetch. Wholesalers whose offer just became finalized are
announced in a banner that clears itself after 8 seconds.

With --record, every observed finalization is appended to the local journal
(see "negokart journal"). Stop with Ctrl-C; the polling timer is released on
exit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, _, err := authedClient()
		if err != nil {
			return err
		}

		var journal *internal.Journal
		if watchRecord {
			path, err := internal.DefaultJournalPath()
			if err != nil {
				return err
			}
			if journal, err = internal.OpenJournal(path); err != nil {
				return err
			}
			defer journal.Close()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		agg := internal.NewAggregator(client)
		poller := internal.NewPoller(agg, cfg.PollInterval)

		recorded := make(map[string]bool)
		poller.OnTick = func() {
			if err := agg.Err(); err != nil {
				// Polling carries on; the next tick is the retry.
				fmt.Println(dimStyle.Render("fetch failed: " + err.Error()))
				return
			}
			alerts := agg.Alerts()
			renderRanking(os.Stdout, agg.Ranking(), alerts, agg.NewOffers(), agg.LastUpdated())

			if journal == nil {
				return
			}
			totals := make(map[string]float64)
			for _, r := range agg.Ranking().Results {
				totals[r.Wholesaler] = r.TotalCost
			}
			for _, w := range alerts {
				if recorded[w] {
					continue
				}
				recorded[w] = true
				if err := journal.RecordFinalized(w, totals[w], agg.LastUpdated()); err != nil {
					internal.LogWarn("failed to record finalization of %s: %v", w, err)
				}
			}
		}

		fmt.Printf("Watching results every %s (Ctrl-C to stop)\n\n", cfg.PollInterval)
		if err := poller.Run(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		fmt.Println("\nStopped.")
		return nil
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchRecord, "record", false, "Record observed finalizations in the local journal")
	rootCmd.AddCommand(watchCmd)
}
