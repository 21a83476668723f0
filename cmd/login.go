package cmd

import (
	"fmt"

	"github.com/negokart/negokart-cli/internal"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <username> <password>",
	Short: "Authenticate against the backend and store the access token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := anonClient()
		if err != nil {
			return err
		}
		token, err := client.Login(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		store, err := openTokenStore()
		if err != nil {
			return err
		}
		if err := store.Save(token); err != nil {
			return err
		}

		// Role is read from the token without verification; it only picks
		// which commands make sense to run next.
		role := "unknown"
		if hint, err := internal.DecodeTokenHint(token); err == nil && hint.Role != "" {
			role = hint.Role
		}
		fmt.Printf("Logged in as %s (%s)\n", args[0], role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored access token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openTokenStore()
		if err != nil {
			return err
		}
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
