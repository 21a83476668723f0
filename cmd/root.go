package cmd

import (
	"fmt"
	"os"

	"github.com/negokart/negokart-cli/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	apiBase    string
	configPath string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "negokart",
	Short: "Terminal client for the NegoKart negotiation marketplace",
	Long: `A terminal client for the NegoKart wholesale-retail negotiation marketplace.

Retailers submit product requirement lists and watch an AI agent negotiate
prices with every wholesaler. Wholesalers respond with their prices through
a chat thread until the agent finalizes the deal. All negotiation logic runs
in the NegoKart backend; this client only presents it.

Retailer workflow:
  negokart login <user> <pass>        # Authenticate
  negokart submit --product Widget=10 # Submit a requirement list
  negokart results                    # One-shot ranked offer view
  negokart watch                      # Live polling view with alerts

Wholesaler workflow:
  negokart negotiations               # List open sessions
  negokart offer 1 --price Widget=12.5
  negokart chat 1 --send "Can do 12 if you take 20 units"
  negokart history                    # Finalized deals

Run a local demo backend (no real credentials, in-memory state):
  negokart demo serve`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiBase, "api", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file location")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig loads the effective configuration, applying the --api override.
func loadConfig() (*internal.Config, error) {
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if apiBase != "" {
		cfg.APIBase = apiBase
	}
	if !verbose {
		internal.SetLogLevelName(cfg.LogLevel)
	}
	return cfg, nil
}

// openTokenStore returns the token store at the default location.
func openTokenStore() (*internal.TokenStore, error) {
	path, err := internal.DefaultTokenPath()
	if err != nil {
		return nil, err
	}
	return internal.NewTokenStore(path), nil
}

// anonClient builds a client without credentials, for login/register/health.
func anonClient() (*internal.Config, *internal.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, internal.NewClient(cfg.APIBase, cfg.RequestTimeout), nil
}

// authedClient builds a client carrying the stored bearer token, plus the
// unverified token hint used for view routing.
func authedClient() (*internal.Config, *internal.Client, internal.TokenHint, error) {
	cfg, client, err := anonClient()
	if err != nil {
		return nil, nil, internal.TokenHint{}, err
	}
	store, err := openTokenStore()
	if err != nil {
		return nil, nil, internal.TokenHint{}, err
	}
	token, err := store.Load()
	if err != nil {
		return nil, nil, internal.TokenHint{}, err
	}
	if token == "" {
		return nil, nil, internal.TokenHint{}, fmt.Errorf("not logged in; run `negokart login <username> <password>` first")
	}
	client.SetToken(token)

	hint, err := internal.DecodeTokenHint(token)
	if err != nil {
		internal.LogWarn("stored token is not decodable: %v", err)
		hint = internal.TokenHint{}
	}
	if hint.Expired() {
		internal.LogWarn("stored token looks expired; the backend may reject requests")
	}
	return cfg, client, hint, nil
}
