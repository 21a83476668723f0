package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/negokart/negokart-cli/internal"
	"github.com/spf13/cobra"
)

var negotiationsCmd = &cobra.Command{
	Use:   "negotiations",
	Short: "List your open negotiation sessions",
	Long: `List the wholesaler's open negotiation sessions with the requested
products, quantities, and any price already on record. Finalized sessions
move to "negokart history".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, _, err := authedClient()
		if err != nil {
			return err
		}
		view := internal.NewSessionView(client)
		if err := view.FetchNegotiations(cmd.Context()); err != nil {
			return fmt.Errorf("failed to fetch negotiations: %w", err)
		}

		negotiations := view.Negotiations()
		if len(negotiations) == 0 {
			fmt.Println("No active negotiation requests.")
			return nil
		}

		fmt.Fprintln(os.Stdout, titleStyle.Render("Open Negotiations"))
		fmt.Fprintln(os.Stdout, dimStyle.Render("Last updated: "+view.LastUpdated().Local().Format("15:04:05")))
		fmt.Fprintln(os.Stdout)

		for _, n := range negotiations {
			fmt.Printf("%s  %s\n",
				wholesalerStyle.Render(fmt.Sprintf("Session #%d", n.SessionID)),
				pendingStyle.Render(string(n.Status)))

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "   PRODUCT\tQUANTITY\tYOUR PRICE\t")
			for _, p := range n.Products {
				price := "-"
				if p.YourPrice != nil {
					price = internal.FormatPrice(*p.YourPrice)
				}
				fmt.Fprintf(tw, "   %s\t%d\t%s\t\n", p.Name, p.Quantity, price)
			}
			tw.Flush()
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(negotiationsCmd)
}
