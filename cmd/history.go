package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/negokart/negokart-cli/internal"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List your finalized negotiation sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, _, err := authedClient()
		if err != nil {
			return err
		}
		view := internal.NewSessionView(client)
		if err := view.FetchHistory(cmd.Context()); err != nil {
			return fmt.Errorf("failed to fetch history: %w", err)
		}

		history := view.History()
		if len(history) == 0 {
			fmt.Println("No history yet.")
			return nil
		}

		fmt.Fprintln(os.Stdout, titleStyle.Render("Finalized Deals"))
		fmt.Fprintln(os.Stdout)
		for _, h := range history {
			finalized := h.FinalizedAt
			if t, err := time.Parse(time.RFC3339, h.FinalizedAt); err == nil {
				finalized = t.Local().Format("2006-01-02 15:04")
			}
			fmt.Printf("%s  retailer %s  %s\n",
				wholesalerStyle.Render(fmt.Sprintf("Session #%d", h.SessionID)),
				h.Retailer,
				dimStyle.Render("finalized "+finalized))

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "   PRODUCT\tFINAL PRICE (%s)\t\n", h.Currency)
			for _, item := range h.Items {
				fmt.Fprintf(tw, "   %s\t%s\t\n", item.Name, internal.FormatPrice(item.FinalPrice))
			}
			tw.Flush()
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
