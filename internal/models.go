package internal

import "strconv"

// Status is the lifecycle state of a negotiation as reported by the backend.
// The backend emits "in_progress" for open negotiations; anything that is not
// "finalized" is treated as still open.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusPending    Status = "pending"
	StatusFinalized  Status = "finalized"
)

// Finalized reports whether the status is the terminal finalized state.
func (s Status) Finalized() bool {
	return s == StatusFinalized
}

// Offer is a single per-product price inside a wholesaler's offer set.
// Price is nullable: the backend omits it while the product is still
// unpriced, and an absent price contributes 0 to the total cost.
type Offer struct {
	ProductName string   `json:"product_name"`
	Price       *float64 `json:"price"`
}

// WholesalerResult is one wholesaler's full offer set for the retailer's
// current request, as returned by /retailer/negotiation_results.
type WholesalerResult struct {
	Wholesaler string  `json:"wholesaler"`
	Status     Status  `json:"status"`
	Offers     []Offer `json:"offers"`
}

// ProductRequest is one line of a retailer's requirement list.
type ProductRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// SessionProduct is a requested product as seen by the wholesaler.
// YourPrice is the price already on record server-side, if any. Proposed is
// the local, not-yet-submitted edit buffer; it never goes over the wire as a
// field, only inside a composed chat message.
type SessionProduct struct {
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	YourPrice *float64 `json:"your_price,omitempty"`
	Proposed  string   `json:"-"`
}

// Negotiation is one open negotiation session on the wholesaler side.
type Negotiation struct {
	SessionID  int              `json:"session_id"`
	RetailerID int              `json:"retailer_id"`
	Status     Status           `json:"status"`
	Products   []SessionProduct `json:"products"`
}

// ChatMessage is one turn of the negotiation chat. Append-only per session.
type ChatMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// ChatTranscript is the server's authoritative copy of a session's chat.
type ChatTranscript struct {
	Status   Status        `json:"status"`
	Messages []ChatMessage `json:"messages"`
}

// ChatReply is the backend's response to a sent chat message.
type ChatReply struct {
	Reply     string `json:"reply"`
	Finalized bool   `json:"finalized"`
}

// HistoryItem is one (product, final price) pair of a finalized session.
type HistoryItem struct {
	Name       string  `json:"name"`
	FinalPrice float64 `json:"final_price"`
}

// HistoryRecord is a finalized session snapshot. Immutable once created.
type HistoryRecord struct {
	SessionID   int           `json:"session_id"`
	Retailer    string        `json:"retailer"`
	FinalizedAt string        `json:"finalized_at"`
	Currency    string        `json:"currency"`
	Items       []HistoryItem `json:"items"`
}

// FormatPrice renders a price the way a user would have typed it, without
// trailing zeros (12.5, not 12.50).
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
