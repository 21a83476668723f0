package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/negokart/negokart-cli/internal"
	"github.com/spf13/cobra"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check configuration, backend reachability, and credentials",
	Long: `Check the health of the client setup by verifying:
  • Effective configuration (base URL, poll interval)
  • Backend reachability via its /health endpoint
  • Stored credentials and their expiry

This is a diagnostic only; the client never switches backends based on the
probe's outcome.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(sectionStyle.Render("NegoKart Health Check"))
		fmt.Println()

		fmt.Println(infoStyle.Render("Step 1: Loading configuration..."))
		cfg, client, err := anonClient()
		if err != nil {
			fmt.Println(errorStyle.Render("✗ Failed to load configuration:"), err)
			return err
		}
		fmt.Println(successStyle.Render("✓ Configuration loaded"))
		fmt.Printf("   Backend:       %s\n", cfg.APIBase)
		fmt.Printf("   Poll interval: %s\n", cfg.PollInterval)
		fmt.Println()

		fmt.Println(infoStyle.Render("Step 2: Probing backend..."))
		if err := client.Health(cmd.Context()); err != nil {
			fmt.Println(errorStyle.Render("✗ Backend not reachable:"), err)
		} else {
			fmt.Println(successStyle.Render("✓ Backend healthy"))
		}
		fmt.Println()

		fmt.Println(infoStyle.Render("Step 3: Checking stored credentials..."))
		store, err := openTokenStore()
		if err != nil {
			fmt.Println(errorStyle.Render("✗ Token store unavailable:"), err)
			return nil
		}
		token, err := store.Load()
		switch {
		case err != nil:
			fmt.Println(errorStyle.Render("✗ Failed to read token:"), err)
		case token == "":
			fmt.Println(warningStyle.Render("! No stored token; run `negokart login`"))
		default:
			hint, err := internal.DecodeTokenHint(token)
			if err != nil {
				fmt.Println(warningStyle.Render("! Stored token is not decodable:"), err)
				break
			}
			if hint.Expired() {
				fmt.Println(warningStyle.Render("! Stored token is expired; log in again"))
				break
			}
			fmt.Println(successStyle.Render(fmt.Sprintf("✓ Logged in as %s (%s)", hint.Username, hint.Role)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
