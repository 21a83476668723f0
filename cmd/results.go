package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/negokart/negokart-cli/internal"
	"github.com/spf13/cobra"
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	wholesalerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("75"))

	finalizedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	bestStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show the current ranked negotiation results",
	Long: `Fetch the retailer's current negotiation results once and show them
ranked: finalized offers first, cheapest total first, with the best finalized
price per product marked. For a live view, use "negokart watch".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, _, err := authedClient()
		if err != nil {
			return err
		}
		results, err := client.NegotiationResults(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch results: %w", err)
		}
		renderRanking(os.Stdout, internal.ComputeRanking(results), nil, false, time.Now())
		return nil
	},
}

// renderRanking prints one ranked result snapshot: alert banners, a summary
// of finalized offers, then one block per wholesaler with best prices
// marked.
func renderRanking(w io.Writer, ranking internal.Ranking, alerts []string, newOffers bool, lastUpdated time.Time) {
	fmt.Fprintln(w, titleStyle.Render("Negotiation Results"))

	if len(alerts) > 0 {
		fmt.Fprintln(w, alertStyle.Render("Finalized offer received from: "+strings.Join(alerts, ", ")))
	}
	if newOffers {
		fmt.Fprintln(w, alertStyle.Render("New offers available!"))
	}
	if !lastUpdated.IsZero() {
		fmt.Fprintln(w, dimStyle.Render("Last updated: "+lastUpdated.Local().Format("15:04:05")))
	}
	fmt.Fprintln(w)

	if len(ranking.Results) == 0 {
		fmt.Fprintln(w, "No negotiation results yet.")
		return
	}

	finalized := 0
	for _, r := range ranking.Results {
		if r.Status.Finalized() {
			finalized++
		}
	}
	if best, ok := ranking.BestTotal(); ok {
		fmt.Fprintf(w, "%s %d finalized · best total %s %s · %d products priced\n\n",
			dimStyle.Render("Summary:"), finalized, "INR", internal.FormatPrice(best), len(ranking.BestPrices))
	}

	for i, r := range ranking.Results {
		header := wholesalerStyle.Render(r.Wholesaler)
		badge := pendingStyle.Render(string(r.Status))
		if r.Status.Finalized() {
			badge = finalizedStyle.Render(string(r.Status))
			if best, ok := ranking.BestTotal(); ok && r.TotalCost == best {
				badge += " " + bestStyle.Render("[BEST DEAL]")
			}
			badge += dimStyle.Render(fmt.Sprintf("  total %s", internal.FormatPrice(r.TotalCost)))
		}
		fmt.Fprintf(w, "%d. %s  %s\n", i+1, header, badge)

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "   PRODUCT\tPRICE\t")
		for _, o := range r.Offers {
			price := "-"
			marker := ""
			if o.Price != nil {
				price = internal.FormatPrice(*o.Price)
				if best, ok := ranking.BestPrices[o.ProductName]; ok && r.Status.Finalized() && *o.Price == best {
					marker = bestStyle.Render("BEST")
				}
			}
			fmt.Fprintf(tw, "   %s\t%s\t%s\n", o.ProductName, price, marker)
		}
		tw.Flush()
		fmt.Fprintln(w)
	}
}

func init() {
	rootCmd.AddCommand(resultsCmd)
}
