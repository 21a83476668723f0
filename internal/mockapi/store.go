// Package mockapi is an in-memory stand-in for the NegoKart negotiation
// backend. It exists for demos and tests only: tokens are unsigned, state
// lives in process memory, and the "AI" negotiator is a script. It is never
// selected implicitly; run it explicitly with `negokart demo serve`.
package mockapi

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	statusInProgress = "in_progress"
	statusFinalized  = "finalized"

	// demo currency, matching the production backend's default
	currency = "INR"
)

type user struct {
	id       int
	username string
	password string
	role     string
}

type product struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type chatMessage struct {
	id        string
	role      string
	content   string
	createdAt string
}

// negotiationState is one wholesaler's side of a session: their chat thread,
// the prices on record, and the lifecycle status.
type negotiationState struct {
	status      string
	finalizedAt string
	offers      map[string]float64
	messages    []chatMessage
}

type session struct {
	id            int
	retailerID    int
	retailer      string
	products      []product
	perWholesaler map[int]*negotiationState
}

// Server holds the whole backend state behind one mutex. Good enough for a
// demo; this is not a production server.
type Server struct {
	mu            sync.Mutex
	users         map[string]*user
	nextUserID    int
	sessions      []*session
	nextSessionID int

	loginLimiter *rate.Limiter
	now          func() time.Time
}

// NewServer creates a demo backend seeded with the fixed demo accounts.
func NewServer() *Server {
	s := &Server{
		users:        make(map[string]*user),
		nextUserID:   1,
		loginLimiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 10),
		now:          time.Now,
	}
	for _, seed := range []struct{ username, password, role string }{
		{"retailer", "retailer123", "retailer"},
		{"wholesaler", "wholesaler123", "wholesaler"},
		{"testuser", "testpass", "retailer"},
	} {
		s.addUser(seed.username, seed.password, seed.role)
	}
	return s
}

func (s *Server) addUser(username, password, role string) *user {
	u := &user{id: s.nextUserID, username: username, password: password, role: role}
	s.nextUserID++
	s.users[username] = u
	return u
}

func (s *Server) wholesalers() []*user {
	var out []*user
	for _, u := range s.users {
		if u.role == "wholesaler" {
			out = append(out, u)
		}
	}
	return out
}

// latestSessionFor returns the retailer's most recent session, if any.
func (s *Server) latestSessionFor(retailerID int) *session {
	var latest *session
	for _, sess := range s.sessions {
		if sess.retailerID == retailerID {
			latest = sess
		}
	}
	return latest
}

func (s *Server) sessionByID(id int) *session {
	for _, sess := range s.sessions {
		if sess.id == id {
			return sess
		}
	}
	return nil
}
