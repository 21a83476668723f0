package mockapi

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

func withUser(ctx context.Context, u *user) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func currentUser(r *http.Request) *user {
	u, _ := r.Context().Value(userKey).(*user)
	return u
}

func greeting(retailer string, products []product) string {
	var wants []string
	for _, p := range products {
		wants = append(wants, fmt.Sprintf("%s (quantity: %d)", p.Name, p.Quantity))
	}
	return fmt.Sprintf(
		"Hello! I'm the AI negotiator for %s. They're looking to purchase: %s. "+
			"What's your best per-unit price for each item? Please include any bulk discounts or MOQs.",
		retailer, strings.Join(wants, ", "))
}

// priceQuoteRE matches "Name: 12.5" style quotes inside free text.
var priceQuoteRE = regexp.MustCompile(`([A-Za-z][A-Za-z0-9 _-]*?)\s*[:=]\s*([0-9]+(?:\.[0-9]+)?)`)

// negotiate is the scripted stand-in for the AI agent. It records any
// per-product prices quoted in the message and finalizes the session once
// every requested product has a price. Callers hold s.mu.
func (s *Server) negotiate(sess *session, state *negotiationState, text string) (reply string, finalized bool) {
	if state.status == statusFinalized {
		return "This negotiation is already finalized. Thank you!", false
	}

	quoted := parseQuotes(sess.products, text)
	for name, price := range quoted {
		state.offers[name] = price
	}

	var missing []string
	for _, p := range sess.products {
		if _, ok := state.offers[p.Name]; !ok {
			missing = append(missing, p.Name)
		}
	}

	switch {
	case len(quoted) == 0:
		return "Thanks. Please provide your best per-unit prices, any bulk discounts, and MOQs for the listed items.", false
	case len(missing) > 0:
		return fmt.Sprintf(
			"Noted, thank you. I still need your best per-unit price for: %s.",
			strings.Join(missing, ", ")), false
	default:
		state.status = statusFinalized
		state.finalizedAt = s.now().UTC().Format(time.RFC3339)
		var recap []string
		for _, p := range sess.products {
			recap = append(recap, fmt.Sprintf("%s at %s %s", p.Name, currency, formatPrice(state.offers[p.Name])))
		}
		return fmt.Sprintf(
			"Agreed: %s. Locking these in and finalizing the deal now. Thank you!",
			strings.Join(recap, ", ")), true
	}
}

// parseQuotes extracts per-product prices from free text. Quoted names may
// carry leading words ("I can do Widget: 12"), so products match on suffix.
func parseQuotes(products []product, text string) map[string]float64 {
	out := make(map[string]float64)
	for _, m := range priceQuoteRE.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		price, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		for _, p := range products {
			if strings.EqualFold(name, p.Name) || strings.HasSuffix(strings.ToLower(name), strings.ToLower(p.Name)) {
				out[p.Name] = price
				break
			}
		}
	}
	return out
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
