package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/negokart/negokart-cli/internal"
	"github.com/spf13/cobra"
)

var offerPrices []string

var offerCmd = &cobra.Command{
	Use:   "offer <session-id>",
	Short: "Send your per-unit prices into a negotiation session",
	Long: `Set your proposed per-unit prices for a session's products and send
them to the negotiation agent as one composed chat message.

Examples:
  negokart offer 1 --price "Widget=12.5" --price "Gadget=7"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid session id %q", args[0])
		}
		prices, err := parsePriceSpecs(offerPrices)
		if err != nil {
			return err
		}

		_, client, _, err := authedClient()
		if err != nil {
			return err
		}
		view := internal.NewSessionView(client)
		if err := view.FetchNegotiations(cmd.Context()); err != nil {
			return fmt.Errorf("failed to fetch negotiations: %w", err)
		}

		for name, value := range prices {
			if !view.EditProposedPrice(sessionID, name, value) {
				return fmt.Errorf("session %d has no product %q", sessionID, name)
			}
		}

		msg, ok := view.ComposePriceMessage(sessionID)
		if !ok {
			return fmt.Errorf("no prices to send for session %d", sessionID)
		}
		fmt.Printf("Sending: %s\n\n", msg)

		if err := view.SendComposedPrices(cmd.Context(), sessionID); err != nil {
			return fmt.Errorf("failed to send prices: %w", err)
		}

		chat := view.ChatStateFor(sessionID)
		if len(chat.Messages) > 0 {
			last := chat.Messages[len(chat.Messages)-1]
			fmt.Printf("%s %s\n", wholesalerStyle.Render("agent:"), last.Content)
		}
		if chat.Status.Finalized() {
			fmt.Println(finalizedStyle.Render("Session finalized."))
		}
		return nil
	},
}

// parsePriceSpecs parses "Name=Price" specs into a name → literal price map.
// The price stays a string so the composed message carries exactly what the
// user typed.
func parsePriceSpecs(specs []string) (map[string]string, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one --price is required")
	}
	prices := make(map[string]string, len(specs))
	for _, spec := range specs {
		i := strings.LastIndex(spec, "=")
		if i < 0 {
			return nil, fmt.Errorf("invalid --price %q: expected Name=Price", spec)
		}
		name := strings.TrimSpace(spec[:i])
		value := strings.TrimSpace(spec[i+1:])
		if name == "" {
			return nil, fmt.Errorf("invalid --price %q: empty name", spec)
		}
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return nil, fmt.Errorf("invalid --price %q: %q is not a number", spec, value)
		}
		prices[name] = value
	}
	return prices, nil
}

func init() {
	offerCmd.Flags().StringArrayVar(&offerPrices, "price", nil, "Proposed price as Name=Price (repeatable)")
	rootCmd.AddCommand(offerCmd)
}
