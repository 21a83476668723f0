package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var registerRole string

var registerCmd = &cobra.Command{
	Use:   "register <username> <password>",
	Short: "Create a new account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if registerRole != "retailer" && registerRole != "wholesaler" {
			return fmt.Errorf("--role must be retailer or wholesaler, got %q", registerRole)
		}
		_, client, err := anonClient()
		if err != nil {
			return err
		}
		msg, err := client.Register(cmd.Context(), args[0], args[1], registerRole)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		if msg == "" {
			msg = "Registered"
		}
		fmt.Println(msg)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerRole, "role", "", "Account role: retailer or wholesaler")
	_ = registerCmd.MarkFlagRequired("role")
	rootCmd.AddCommand(registerCmd)
}
