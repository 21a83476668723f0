package internal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// priceMessageTemplate wraps the composed price pairs into the fixed
// sentence the negotiation agent expects.
const priceMessageTemplate = "My current best per-unit prices are: %s. Currency is INR. MOQ as previously stated if any. Please review."

// SessionBackend is the slice of the backend client the session view needs.
type SessionBackend interface {
	Negotiations(ctx context.Context) ([]Negotiation, error)
	History(ctx context.Context) ([]HistoryRecord, error)
	Chat(ctx context.Context, sessionID int) (ChatTranscript, error)
	SendChat(ctx context.Context, sessionID int, message string) (ChatReply, error)
}

// ChatState is the client-side mirror of one session's chat: the server's
// transcript plus the local input buffer.
type ChatState struct {
	Status   Status
	Messages []ChatMessage
	Input    string
}

// SessionView holds the wholesaler-facing state: open negotiations with
// locally edited proposed prices, finalized history, and per-session chat.
// The server's copy is authoritative; every fetch overwrites, and only the
// not-yet-submitted price edits and input buffers survive a refresh.
type SessionView struct {
	backend SessionBackend

	mu           sync.Mutex
	negotiations []Negotiation
	history      []HistoryRecord
	chats        map[int]*ChatState
	sending      map[int]bool
	lastUpdated  time.Time
}

// NewSessionView creates a session view over the given backend.
func NewSessionView(backend SessionBackend) *SessionView {
	return &SessionView{
		backend: backend,
		chats:   make(map[int]*ChatState),
		sending: make(map[int]bool),
	}
}

// FetchNegotiations replaces the negotiation list with the server's copy.
// Unsent proposed prices carry over; otherwise the edit buffer is seeded
// from the price already on record.
func (v *SessionView) FetchNegotiations(ctx context.Context) error {
	fresh, err := v.backend.Negotiations(ctx)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	pending := make(map[string]string)
	for _, n := range v.negotiations {
		for _, p := range n.Products {
			if p.Proposed != "" {
				pending[proposedKey(n.SessionID, p.Name)] = p.Proposed
			}
		}
	}

	for i := range fresh {
		for j := range fresh[i].Products {
			p := &fresh[i].Products[j]
			if kept, ok := pending[proposedKey(fresh[i].SessionID, p.Name)]; ok {
				p.Proposed = kept
			} else if p.YourPrice != nil {
				p.Proposed = FormatPrice(*p.YourPrice)
			}
		}
	}

	v.negotiations = fresh
	v.lastUpdated = time.Now()
	return nil
}

func proposedKey(sessionID int, product string) string {
	return fmt.Sprintf("%d\x00%s", sessionID, product)
}

// FetchHistory replaces the history list with the server's copy.
// Independent of FetchNegotiations; either may fail alone.
func (v *SessionView) FetchHistory(ctx context.Context) error {
	history, err := v.backend.History(ctx)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.history = history
	v.mu.Unlock()
	return nil
}

// FetchChat overwrites a session's transcript and status with the server's
// authoritative copy. The input buffer is preserved.
func (v *SessionView) FetchChat(ctx context.Context, sessionID int) error {
	transcript, err := v.backend.Chat(ctx, sessionID)
	if err != nil {
		return err
	}
	v.mu.Lock()
	chat := v.chatLocked(sessionID)
	chat.Messages = transcript.Messages
	chat.Status = transcript.Status
	v.mu.Unlock()
	return nil
}

// EditProposedPrice sets the local proposed price for a product in a
// session. Purely local; nothing is sent. Returns false when the session or
// product does not exist.
func (v *SessionView) EditProposedPrice(sessionID int, product, value string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.negotiations {
		if v.negotiations[i].SessionID != sessionID {
			continue
		}
		for j := range v.negotiations[i].Products {
			if v.negotiations[i].Products[j].Name == product {
				v.negotiations[i].Products[j].Proposed = value
				return true
			}
		}
		return false
	}
	return false
}

// ComposePriceMessage builds the chat message carrying every product with a
// non-empty proposed price. ok is false when nothing is set.
func (v *SessionView) ComposePriceMessage(sessionID int) (msg string, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, n := range v.negotiations {
		if n.SessionID != sessionID {
			continue
		}
		var pairs []string
		for _, p := range n.Products {
			if p.Proposed != "" {
				pairs = append(pairs, p.Name+": "+p.Proposed)
			}
		}
		if len(pairs) == 0 {
			return "", false
		}
		return fmt.Sprintf(priceMessageTemplate, strings.Join(pairs, ", ")), true
	}
	return "", false
}

// SendComposedPrices submits the composed price message as a chat turn.
// No-op when no prices are set or a send for this session is already in
// flight.
func (v *SessionView) SendComposedPrices(ctx context.Context, sessionID int) error {
	msg, ok := v.ComposePriceMessage(sessionID)
	if !ok {
		return nil
	}

	v.mu.Lock()
	if v.sending[sessionID] {
		v.mu.Unlock()
		return nil
	}
	v.sending[sessionID] = true
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		delete(v.sending, sessionID)
		v.mu.Unlock()
	}()

	return v.send(ctx, sessionID, msg)
}

// Sending reports whether a price submission for the session is in flight.
func (v *SessionView) Sending(sessionID int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sending[sessionID]
}

// SetChatInput sets a session's chat input buffer.
func (v *SessionView) SetChatInput(sessionID int, text string) {
	v.mu.Lock()
	v.chatLocked(sessionID).Input = text
	v.mu.Unlock()
}

// SendChat submits the session's input buffer as a chat turn. Whitespace is
// trimmed; an empty buffer is a no-op with no request dispatched. The buffer
// is cleared optimistically before the network call.
func (v *SessionView) SendChat(ctx context.Context, sessionID int) error {
	v.mu.Lock()
	chat := v.chatLocked(sessionID)
	text := strings.TrimSpace(chat.Input)
	if text == "" {
		v.mu.Unlock()
		return nil
	}
	chat.Input = ""
	v.mu.Unlock()

	return v.send(ctx, sessionID, text)
}

// SendChatText submits an explicit chat turn, bypassing the input buffer.
func (v *SessionView) SendChatText(ctx context.Context, sessionID int, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return v.send(ctx, sessionID, text)
}

// send dispatches one chat turn and, on success, refreshes the transcript,
// the negotiation list, and history, so any status change the message caused
// (the agent finalizing the session, for one) is picked up.
func (v *SessionView) send(ctx context.Context, sessionID int, text string) error {
	if _, err := v.backend.SendChat(ctx, sessionID, text); err != nil {
		return err
	}
	if err := v.FetchChat(ctx, sessionID); err != nil {
		LogWarn("chat refresh after send failed: %v", err)
	}
	if err := v.FetchNegotiations(ctx); err != nil {
		LogWarn("negotiation refresh after send failed: %v", err)
	}
	if err := v.FetchHistory(ctx); err != nil {
		LogWarn("history refresh after send failed: %v", err)
	}
	return nil
}

// Negotiations returns a copy of the current negotiation list.
func (v *SessionView) Negotiations() []Negotiation {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Negotiation, len(v.negotiations))
	copy(out, v.negotiations)
	return out
}

// History returns a copy of the current history list.
func (v *SessionView) History() []HistoryRecord {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]HistoryRecord, len(v.history))
	copy(out, v.history)
	return out
}

// ChatStateFor returns a copy of a session's chat state.
func (v *SessionView) ChatStateFor(sessionID int) ChatState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return *v.chatLocked(sessionID)
}

// LastUpdated returns the time of the last successful negotiation fetch.
func (v *SessionView) LastUpdated() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastUpdated
}

func (v *SessionView) chatLocked(sessionID int) *ChatState {
	chat, ok := v.chats[sessionID]
	if !ok {
		chat = &ChatState{}
		v.chats[sessionID] = chat
	}
	return chat
}
