package mockapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// Handler returns the HTTP surface of the demo backend. Routes and response
// shapes mirror the production negotiation backend.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "mode": "demo"})
	})
	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Post("/retailer/products", s.handleSubmitProducts)
		r.Get("/retailer/negotiation_results", s.handleNegotiationResults)
		r.Get("/wholesaler/negotiations", s.handleNegotiations)
		r.Get("/wholesaler/history", s.handleHistory)
		r.Get("/wholesaler/chat/{sessionID}", s.handleGetChat)
		r.Post("/wholesaler/chat/{sessionID}", s.handleSendChat)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "Username and password are required")
		return
	}
	if req.Role != "retailer" && req.Role != "wholesaler" {
		writeDetail(w, http.StatusBadRequest, "Role must be retailer or wholesaler")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[req.Username]; exists {
		writeDetail(w, http.StatusBadRequest, "Username already registered")
		return
	}
	s.addUser(req.Username, req.Password, req.Role)
	writeJSON(w, http.StatusOK, map[string]string{"message": "User registered successfully"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.loginLimiter.Allow() {
		writeDetail(w, http.StatusTooManyRequests, "Too many login attempts, slow down")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid form body")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	s.mu.Lock()
	u, ok := s.users[username]
	s.mu.Unlock()
	if !ok || u.password != password {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token, err := s.mintToken(u)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}

// mintToken issues an unsigned (alg=none) token. Deliberately worthless as a
// credential outside this demo backend.
func (s *Server) mintToken(u *user) (string, error) {
	claims := jwt.MapClaims{
		"sub":     u.username,
		"role":    u.role,
		"user_id": u.id,
		"exp":     s.now().Add(24 * time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
}

type ctxKey string

const userKey ctxKey = "user"

// authenticate resolves the bearer token to a seeded user. The demo backend
// trusts the sub claim as-is; there is no signature to verify.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(auth[len(prefix):], claims); err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		sub, _ := claims["sub"].(string)

		s.mu.Lock()
		u, ok := s.users[sub]
		s.mu.Unlock()
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), u)))
	})
}

type submitProductsRequest struct {
	Products []product `json:"products"`
}

func (s *Server) handleSubmitProducts(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	if u.role != "retailer" {
		writeDetail(w, http.StatusForbidden, "Only retailers can submit product lists.")
		return
	}
	var req submitProductsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Products) == 0 {
		writeDetail(w, http.StatusBadRequest, "A non-empty product list is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &session{
		id:            s.nextSessionID + 1,
		retailerID:    u.id,
		retailer:      u.username,
		products:      req.Products,
		perWholesaler: make(map[int]*negotiationState),
	}
	s.nextSessionID++
	s.sessions = append(s.sessions, sess)

	for _, wh := range s.wholesalers() {
		state := &negotiationState{
			status: statusInProgress,
			offers: make(map[string]float64),
		}
		state.messages = append(state.messages, s.newMessage("assistant", greeting(u.username, req.Products)))
		sess.perWholesaler[wh.id] = state
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Product list submitted and negotiation started!"})
}

func (s *Server) newMessage(role, content string) chatMessage {
	return chatMessage{
		id:        ulid.Make().String(),
		role:      role,
		content:   content,
		createdAt: s.now().UTC().Format(time.RFC3339),
	}
}

type offerEntry struct {
	ProductName string   `json:"product_name"`
	Price       *float64 `json:"price"`
}

type resultEntry struct {
	Wholesaler string       `json:"wholesaler"`
	Status     string       `json:"status"`
	Offers     []offerEntry `json:"offers"`
}

func (s *Server) handleNegotiationResults(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	if u.role != "retailer" {
		writeDetail(w, http.StatusForbidden, "Only retailers can view negotiation results.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	results := []resultEntry{}
	sess := s.latestSessionFor(u.id)
	if sess == nil {
		writeJSON(w, http.StatusOK, map[string]any{"results": results})
		return
	}

	for _, wh := range s.wholesalers() {
		state, ok := sess.perWholesaler[wh.id]
		if !ok || len(state.offers) == 0 {
			continue
		}
		entry := resultEntry{Wholesaler: wh.username, Status: state.status}
		for _, p := range sess.products {
			if price, ok := state.offers[p.Name]; ok {
				pv := price
				entry.Offers = append(entry.Offers, offerEntry{ProductName: p.Name, Price: &pv})
			}
		}
		results = append(results, entry)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Wholesaler < results[j].Wholesaler })

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

type sessionProductEntry struct {
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	YourPrice *float64 `json:"your_price"`
}

type negotiationEntry struct {
	SessionID  int                   `json:"session_id"`
	RetailerID int                   `json:"retailer_id"`
	Status     string                `json:"status"`
	Products   []sessionProductEntry `json:"products"`
}

func (s *Server) handleNegotiations(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	if u.role != "wholesaler" {
		writeDetail(w, http.StatusForbidden, "Only wholesalers can view negotiation requests.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	negotiations := []negotiationEntry{}
	for _, sess := range s.sessions {
		state, ok := sess.perWholesaler[u.id]
		if !ok || state.status == statusFinalized {
			continue
		}
		entry := negotiationEntry{SessionID: sess.id, RetailerID: sess.retailerID, Status: state.status}
		for _, p := range sess.products {
			sp := sessionProductEntry{Name: p.Name, Quantity: p.Quantity}
			if price, ok := state.offers[p.Name]; ok {
				pv := price
				sp.YourPrice = &pv
			}
			entry.Products = append(entry.Products, sp)
		}
		negotiations = append(negotiations, entry)
	}

	writeJSON(w, http.StatusOK, map[string]any{"negotiations": negotiations})
}

type historyItemEntry struct {
	Name       string  `json:"name"`
	FinalPrice float64 `json:"final_price"`
}

type historyEntry struct {
	SessionID   int                `json:"session_id"`
	Retailer    string             `json:"retailer"`
	FinalizedAt string             `json:"finalized_at"`
	Currency    string             `json:"currency"`
	Items       []historyItemEntry `json:"items"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	if u.role != "wholesaler" {
		writeDetail(w, http.StatusForbidden, "Only wholesalers can view history.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history := []historyEntry{}
	for _, sess := range s.sessions {
		state, ok := sess.perWholesaler[u.id]
		if !ok || state.status != statusFinalized {
			continue
		}
		entry := historyEntry{
			SessionID:   sess.id,
			Retailer:    sess.retailer,
			FinalizedAt: state.finalizedAt,
			Currency:    currency,
		}
		for _, p := range sess.products {
			if price, ok := state.offers[p.Name]; ok {
				entry.Items = append(entry.Items, historyItemEntry{Name: p.Name, FinalPrice: price})
			}
		}
		history = append(history, entry)
	}
	sort.Slice(history, func(i, j int) bool { return history[i].FinalizedAt > history[j].FinalizedAt })

	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

type chatMessageEntry struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	if u.role != "wholesaler" {
		writeDetail(w, http.StatusForbidden, "Only wholesalers can access this chat.")
		return
	}
	_, state, ok := s.sessionState(w, r, u)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	messages := []chatMessageEntry{}
	for _, m := range state.messages {
		if m.role == "system" {
			continue
		}
		messages = append(messages, chatMessageEntry{Role: m.role, Content: m.content, CreatedAt: m.createdAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": state.status, "messages": messages})
}

type chatSendRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleSendChat(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	if u.role != "wholesaler" {
		writeDetail(w, http.StatusForbidden, "Only wholesalers can send chat messages.")
		return
	}
	sess, state, ok := s.sessionState(w, r, u)
	if !ok {
		return
	}
	var req chatSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeDetail(w, http.StatusBadRequest, "A message is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state.messages = append(state.messages, s.newMessage("user", req.Message))
	reply, finalized := s.negotiate(sess, state, req.Message)
	state.messages = append(state.messages, s.newMessage("assistant", reply))

	writeJSON(w, http.StatusOK, map[string]any{"reply": reply, "finalized": finalized})
}

// sessionState resolves the {sessionID} URL param to this wholesaler's side
// of the session, writing the error response itself when it cannot.
func (s *Server) sessionState(w http.ResponseWriter, r *http.Request, u *user) (*session, *negotiationState, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid session id")
		return nil, nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessionByID(id)
	if sess == nil {
		writeDetail(w, http.StatusNotFound, "Session not found")
		return nil, nil, false
	}
	state, ok := sess.perWholesaler[u.id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Session not found")
		return nil, nil, false
	}
	return sess, state, true
}
