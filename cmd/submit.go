package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/negokart/negokart-cli/internal"
	"github.com/spf13/cobra"
)

var submitProducts []string

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a product requirement list and start negotiations",
	Long: `Submit a product requirement list. The backend opens a negotiation
session with every wholesaler and its AI agent starts bargaining on your
behalf. Track progress with "negokart results" or "negokart watch".

Examples:
  negokart submit --product "Widget=10" --product "Gadget=25"
  negokart submit --product "Steel Rods=100"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		products, err := parseProductSpecs(submitProducts)
		if err != nil {
			return err
		}
		_, client, _, err := authedClient()
		if err != nil {
			return err
		}
		msg, err := client.SubmitProducts(cmd.Context(), products)
		if err != nil {
			return fmt.Errorf("failed to submit products: %w", err)
		}
		if msg == "" {
			msg = "Product list submitted"
		}
		fmt.Println(msg)
		return nil
	},
}

// parseProductSpecs parses "Name=Quantity" specs. The quantity defaults to 1
// when omitted; product names may contain spaces but not '='.
func parseProductSpecs(specs []string) ([]internal.ProductRequest, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one --product is required")
	}
	products := make([]internal.ProductRequest, 0, len(specs))
	for _, spec := range specs {
		name := strings.TrimSpace(spec)
		quantity := 1
		if i := strings.LastIndex(spec, "="); i >= 0 {
			name = strings.TrimSpace(spec[:i])
			q, err := strconv.Atoi(strings.TrimSpace(spec[i+1:]))
			if err != nil || q <= 0 {
				return nil, fmt.Errorf("invalid quantity in --product %q", spec)
			}
			quantity = q
		}
		if name == "" {
			return nil, fmt.Errorf("invalid --product %q: empty name", spec)
		}
		products = append(products, internal.ProductRequest{Name: name, Quantity: quantity})
	}
	return products, nil
}

func init() {
	submitCmd.Flags().StringArrayVar(&submitProducts, "product", nil, "Product as Name=Quantity (repeatable)")
	rootCmd.AddCommand(submitCmd)
}
