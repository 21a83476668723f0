package internal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeSessionBackend struct {
	mu sync.Mutex

	negotiations []Negotiation
	history      []HistoryRecord
	transcripts  map[int]ChatTranscript

	sent              []string
	negotiationsCalls int
	historyCalls      int
	chatCalls         int

	sendErr   error
	sendBlock chan struct{}
}

func (b *fakeSessionBackend) Negotiations(ctx context.Context) ([]Negotiation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.negotiationsCalls++
	return b.negotiations, nil
}

func (b *fakeSessionBackend) History(ctx context.Context) ([]HistoryRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.historyCalls++
	return b.history, nil
}

func (b *fakeSessionBackend) Chat(ctx context.Context, sessionID int) (ChatTranscript, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chatCalls++
	return b.transcripts[sessionID], nil
}

func (b *fakeSessionBackend) SendChat(ctx context.Context, sessionID int, message string) (ChatReply, error) {
	if b.sendBlock != nil {
		<-b.sendBlock
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		return ChatReply{}, b.sendErr
	}
	b.sent = append(b.sent, message)
	return ChatReply{Reply: "noted"}, nil
}

func (b *fakeSessionBackend) sentMessages() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.sent))
	copy(out, b.sent)
	return out
}

func newTestBackend() *fakeSessionBackend {
	return &fakeSessionBackend{
		negotiations: []Negotiation{
			{
				SessionID: 7,
				Status:    StatusInProgress,
				Products: []SessionProduct{
					{Name: "Widget", Quantity: 10},
					{Name: "Gadget", Quantity: 5},
				},
			},
		},
		transcripts: map[int]ChatTranscript{},
	}
}

func TestComposePriceMessage_ExactTemplate(t *testing.T) {
	view := NewSessionView(newTestBackend())
	if err := view.FetchNegotiations(context.Background()); err != nil {
		t.Fatalf("FetchNegotiations() error: %v", err)
	}

	if !view.EditProposedPrice(7, "Widget", "12.5") {
		t.Fatal("EditProposedPrice(Widget) returned false")
	}
	if !view.EditProposedPrice(7, "Gadget", "7") {
		t.Fatal("EditProposedPrice(Gadget) returned false")
	}

	msg, ok := view.ComposePriceMessage(7)
	if !ok {
		t.Fatal("ComposePriceMessage() not ok")
	}
	want := "My current best per-unit prices are: Widget: 12.5, Gadget: 7. Currency is INR. MOQ as previously stated if any. Please review."
	if msg != want {
		t.Errorf("composed message = %q, want %q", msg, want)
	}
}

func TestComposePriceMessage_SkipsUnsetPrices(t *testing.T) {
	view := NewSessionView(newTestBackend())
	if err := view.FetchNegotiations(context.Background()); err != nil {
		t.Fatalf("FetchNegotiations() error: %v", err)
	}
	view.EditProposedPrice(7, "Gadget", "3.25")

	msg, ok := view.ComposePriceMessage(7)
	if !ok {
		t.Fatal("ComposePriceMessage() not ok")
	}
	want := "My current best per-unit prices are: Gadget: 3.25. Currency is INR. MOQ as previously stated if any. Please review."
	if msg != want {
		t.Errorf("composed message = %q, want %q", msg, want)
	}
}

func TestSendComposedPrices_NoOpWithoutPrices(t *testing.T) {
	backend := newTestBackend()
	view := NewSessionView(backend)
	if err := view.FetchNegotiations(context.Background()); err != nil {
		t.Fatalf("FetchNegotiations() error: %v", err)
	}

	if err := view.SendComposedPrices(context.Background(), 7); err != nil {
		t.Fatalf("SendComposedPrices() error: %v", err)
	}
	if got := backend.sentMessages(); len(got) != 0 {
		t.Errorf("messages sent without any prices set: %v", got)
	}
}

func TestSendComposedPrices_SingleInFlight(t *testing.T) {
	backend := newTestBackend()
	backend.sendBlock = make(chan struct{})
	view := NewSessionView(backend)
	if err := view.FetchNegotiations(context.Background()); err != nil {
		t.Fatalf("FetchNegotiations() error: %v", err)
	}
	view.EditProposedPrice(7, "Widget", "12.5")

	done := make(chan struct{})
	go func() {
		_ = view.SendComposedPrices(context.Background(), 7)
		close(done)
	}()

	// Wait until the first send is in flight, then try a duplicate.
	for i := 0; i < 100 && !view.Sending(7); i++ {
		time.Sleep(time.Millisecond)
	}
	if !view.Sending(7) {
		t.Fatal("first send never became in-flight")
	}
	if err := view.SendComposedPrices(context.Background(), 7); err != nil {
		t.Fatalf("duplicate SendComposedPrices() error: %v", err)
	}

	close(backend.sendBlock)
	<-done

	if got := backend.sentMessages(); len(got) != 1 {
		t.Errorf("expected a single send, got %d: %v", len(got), got)
	}
}

func TestSendChat_EmptyInputIsNoOp(t *testing.T) {
	backend := newTestBackend()
	view := NewSessionView(backend)

	view.SetChatInput(7, "   \t ")
	if err := view.SendChat(context.Background(), 7); err != nil {
		t.Fatalf("SendChat() error: %v", err)
	}

	if got := backend.sentMessages(); len(got) != 0 {
		t.Errorf("request dispatched for whitespace-only input: %v", got)
	}
	if got := view.ChatStateFor(7).Input; got != "   \t " {
		t.Errorf("input buffer = %q, want untouched whitespace", got)
	}
}

func TestSendChat_TrimsAndClearsOptimistically(t *testing.T) {
	backend := newTestBackend()
	backend.transcripts[7] = ChatTranscript{
		Status:   StatusInProgress,
		Messages: []ChatMessage{{Role: "assistant", Content: "hello"}},
	}
	view := NewSessionView(backend)

	view.SetChatInput(7, "  best I can do is 12  ")
	if err := view.SendChat(context.Background(), 7); err != nil {
		t.Fatalf("SendChat() error: %v", err)
	}

	sent := backend.sentMessages()
	if len(sent) != 1 || sent[0] != "best I can do is 12" {
		t.Errorf("sent = %v, want the trimmed message", sent)
	}
	if got := view.ChatStateFor(7).Input; got != "" {
		t.Errorf("input buffer = %q after send, want empty", got)
	}

	// A successful send refreshes transcript, negotiations, and history.
	backend.mu.Lock()
	chatCalls, negCalls, histCalls := backend.chatCalls, backend.negotiationsCalls, backend.historyCalls
	backend.mu.Unlock()
	if chatCalls != 1 || negCalls != 1 || histCalls != 1 {
		t.Errorf("refresh calls after send = chat:%d negotiations:%d history:%d, want 1 each",
			chatCalls, negCalls, histCalls)
	}
	if got := view.ChatStateFor(7).Messages; len(got) != 1 {
		t.Errorf("transcript not refreshed after send: %v", got)
	}
}

func TestSendChat_FailureReturnsErrorWithoutRefresh(t *testing.T) {
	backend := newTestBackend()
	backend.sendErr = errors.New("boom")
	view := NewSessionView(backend)

	view.SetChatInput(7, "hello")
	if err := view.SendChat(context.Background(), 7); err == nil {
		t.Fatal("SendChat() = nil error, want failure")
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()
	if backend.chatCalls != 0 || backend.negotiationsCalls != 0 || backend.historyCalls != 0 {
		t.Error("refreshes ran after a failed send")
	}
}

func TestEditProposedPrice_UnknownTargets(t *testing.T) {
	view := NewSessionView(newTestBackend())
	if err := view.FetchNegotiations(context.Background()); err != nil {
		t.Fatalf("FetchNegotiations() error: %v", err)
	}

	if view.EditProposedPrice(99, "Widget", "1") {
		t.Error("EditProposedPrice() = true for unknown session")
	}
	if view.EditProposedPrice(7, "Nothing", "1") {
		t.Error("EditProposedPrice() = true for unknown product")
	}
}

func TestFetchNegotiations_SeedsAndPreservesProposed(t *testing.T) {
	backend := newTestBackend()
	recorded := 9.75
	backend.negotiations[0].Products[0].YourPrice = &recorded

	view := NewSessionView(backend)
	if err := view.FetchNegotiations(context.Background()); err != nil {
		t.Fatalf("FetchNegotiations() error: %v", err)
	}

	products := view.Negotiations()[0].Products
	if products[0].Proposed != "9.75" {
		t.Errorf("Proposed seeded from your_price = %q, want 9.75", products[0].Proposed)
	}
	if products[1].Proposed != "" {
		t.Errorf("Proposed = %q for unpriced product, want empty", products[1].Proposed)
	}

	// A local edit survives the next refresh.
	view.EditProposedPrice(7, "Gadget", "4.5")
	if err := view.FetchNegotiations(context.Background()); err != nil {
		t.Fatalf("FetchNegotiations() error: %v", err)
	}
	products = view.Negotiations()[0].Products
	if products[1].Proposed != "4.5" {
		t.Errorf("local edit lost on refresh: Proposed = %q, want 4.5", products[1].Proposed)
	}
}

func TestFetchChat_OverwritesTranscriptKeepsInput(t *testing.T) {
	backend := newTestBackend()
	backend.transcripts[7] = ChatTranscript{
		Status: StatusFinalized,
		Messages: []ChatMessage{
			{Role: "assistant", Content: "deal"},
			{Role: "user", Content: "ok"},
		},
	}
	view := NewSessionView(backend)
	view.SetChatInput(7, "draft")

	if err := view.FetchChat(context.Background(), 7); err != nil {
		t.Fatalf("FetchChat() error: %v", err)
	}

	chat := view.ChatStateFor(7)
	if len(chat.Messages) != 2 {
		t.Errorf("transcript = %d messages, want 2", len(chat.Messages))
	}
	if !chat.Status.Finalized() {
		t.Errorf("status = %q, want finalized", chat.Status)
	}
	if chat.Input != "draft" {
		t.Errorf("input buffer = %q, want preserved draft", chat.Input)
	}
}
