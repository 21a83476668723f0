package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity claims in the stored token",
	Long: `Show the identity claims carried by the stored access token.

The claims are decoded without verifying the token's signature, so they are
a display hint only. The backend independently authorizes every request.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, hint, err := authedClient()
		if err != nil {
			return err
		}
		fmt.Printf("Username: %s\n", orUnknown(hint.Username))
		fmt.Printf("Role:     %s (unverified hint)\n", orUnknown(hint.Role))
		if !hint.ExpiresAt.IsZero() {
			state := "valid"
			if hint.Expired() {
				state = "EXPIRED"
			}
			fmt.Printf("Expires:  %s (%s)\n", hint.ExpiresAt.Local().Format(time.RFC1123), state)
		}
		return nil
	},
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
