package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/negokart/negokart-cli/internal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List finalizations recorded by `watch --record`",
	Long: `List the finalization events recorded locally while watching results.
The live alert banner clears itself after 8 seconds; the journal is its
durable trace.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := internal.DefaultJournalPath()
		if err != nil {
			return err
		}
		journal, err := internal.OpenJournal(path)
		if err != nil {
			return err
		}
		defer journal.Close()

		entries, err := journal.Entries()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No recorded finalizations. Run `negokart watch --record`.")
			return nil
		}

		fmt.Fprintln(os.Stdout, titleStyle.Render("Observed Finalizations"))
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "WHOLESALER\tTOTAL\tOBSERVED\t")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t\n",
				e.Wholesaler,
				internal.FormatPrice(e.TotalCost),
				e.ObservedAt.Local().Format("2006-01-02 15:04:05"))
		}
		tw.Flush()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(journalCmd)
}
