// Package apitest runs an in-process fake of the kaigi-note REST service for tests.
// It follows the service contract closely enough to exercise the client end to end:
// bearer JWTs, form-encoded login, {"detail": ...} errors, zone-less timestamps.
package apitest

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"kaiginote/internal/domain"
)

type user struct {
	domain.User
	passwordHash string
}

type event struct {
	id        int64
	start     time.Time
	end       time.Time
	place     string
	content   *string
	status    string
	totalCost int64
	createdAt time.Time
	updatedAt time.Time
}

type participant struct {
	id         int64
	eventID    int64
	userID     int64
	paidAmount int64
	createdAt  time.Time
	updatedAt  time.Time
}

// RecordedRequest is what the server saw of one request.
type RecordedRequest struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	ContentType   string
	RequestID     string
}

type failure struct {
	method, path string
	status       int
	detail       string
}

// Gate blocks one matching request until released.
type Gate struct {
	method, path string
	arrived      chan struct{}
	release      chan struct{}
	once         sync.Once
}

// Arrived is closed when the held request reaches the server.
func (g *Gate) Arrived() <-chan struct{} { return g.arrived }

// Release lets the held request continue.
func (g *Gate) Release() { g.once.Do(func() { close(g.release) }) }

// Server is the fake service.
type Server struct {
	*httptest.Server
	logger *slog.Logger
	tokens *tokenIssuer

	mu              sync.Mutex
	clock           time.Time
	users           map[int64]*user
	events          map[int64]*event
	participants    map[int64]*participant
	nextUserID      int64
	nextEventID     int64
	nextParticipant int64
	revoked         map[string]bool
	issued          []string
	failures        []failure
	gates           []*Gate
	requests        []RecordedRequest
}

// New starts a fake service that is closed when t finishes.
func New(t testing.TB) *Server {
	t.Helper()
	s := NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(s.Close)
	return s
}

// NewServer starts a fake service; the caller must Close it.
func NewServer(logger *slog.Logger) *Server {
	s := &Server{
		logger:       logger,
		tokens:       &tokenIssuer{secret: []byte("apitest-secret"), ttl: 30 * time.Minute},
		clock:        time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC),
		users:        map[int64]*user{},
		events:       map[int64]*event{},
		participants: map[int64]*participant{},
		revoked:      map[string]bool{},
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", s.register)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("POST /api/auth/logout", s.logout)
	mux.HandleFunc("GET /api/users/me", s.requireAuth(s.me))

	mux.HandleFunc("GET /api/events", s.requireAuth(s.listEvents))
	mux.HandleFunc("POST /api/events", s.requireAuth(s.createEvent))
	mux.HandleFunc("GET /api/events/{id}", s.requireAuth(s.getEvent))
	mux.HandleFunc("PUT /api/events/{id}", s.requireAuth(s.updateEvent))
	mux.HandleFunc("DELETE /api/events/{id}", s.requireAuth(s.deleteEvent))

	mux.HandleFunc("GET /api/events/{id}/participants", s.requireAuth(s.listParticipants))
	mux.HandleFunc("POST /api/events/{id}/participants", s.requireAuth(s.addParticipant))
	mux.HandleFunc("PUT /api/events/{id}/participants/{pid}", s.requireAuth(s.updateParticipant))
	mux.HandleFunc("DELETE /api/events/{id}/participants/{pid}", s.requireAuth(s.removeParticipant))

	return s.logging(s.intercept(mux))
}

// now returns the fake clock; callers must hold s.mu.
func (s *Server) now() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// Advance moves the server clock forward, e.g. past token expiry.
func (s *Server) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = s.clock.Add(d)
}

// ExpireSessions revokes every token issued so far.
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tok := range s.issued {
		s.revoked[tok] = true
	}
}

// FailNext makes the next request matching method and path answer status with detail.
// An empty detail sends a body without one.
func (s *Server) FailNext(method, path string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{method: method, path: path, status: status, detail: detail})
}

// Hold blocks the next request matching method and path until the gate is released.
func (s *Server) Hold(method, path string) *Gate {
	g := &Gate{method: method, path: path, arrived: make(chan struct{}), release: make(chan struct{})}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gates = append(s.gates, g)
	return g
}

// Requests returns the requests seen so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// ResetRequests forgets the recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// SeedUser creates a user directly.
func (s *Server) SeedUser(name, email, password string) domain.User {
	hash, err := hashPassword(password)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createUserLocked(name, email, hash).User
}

// Login issues a token for an existing user without going through the login endpoint.
func (s *Server) Login(userID int64) domain.Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, err := s.issueLocked(userID)
	if err != nil {
		panic(err)
	}
	return domain.Credential{AccessToken: tok, TokenType: "bearer"}
}

// SeedEvent creates an event directly. An empty status becomes "planned".
func (s *Server) SeedEvent(in domain.EventCreate) domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := s.createEventLocked(in)
	return toDomainEvent(ev)
}

// SetEventStatus stores a raw status value, including ones outside the known set.
func (s *Server) SetEventStatus(id int64, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev, ok := s.events[id]; ok {
		ev.status = status
	}
}

// SeedParticipant adds a participant directly.
func (s *Server) SeedParticipant(eventID, userID, paidAmount int64) domain.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.addParticipantLocked(eventID, userID, paidAmount)
	return toDomainParticipant(p)
}

// ParticipantCount returns the number of participants of an event.
func (s *Server) ParticipantCount(eventID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.participantsOfLocked(eventID))
}

func (s *Server) createUserLocked(name, email, hash string) *user {
	s.nextUserID++
	now := s.now()
	u := &user{
		User: domain.User{
			ID:        s.nextUserID,
			Name:      name,
			Email:     email,
			CreatedAt: domain.NewTimestamp(now),
			UpdatedAt: domain.NewTimestamp(now),
		},
		passwordHash: hash,
	}
	s.users[u.ID] = u
	return u
}

func (s *Server) issueLocked(userID int64) (string, error) {
	tok, err := s.tokens.Issue(userID, s.now())
	if err != nil {
		return "", err
	}
	s.issued = append(s.issued, tok)
	return tok, nil
}

func (s *Server) createEventLocked(in domain.EventCreate) *event {
	s.nextEventID++
	now := s.now()
	status := string(in.Status)
	if status == "" {
		status = string(domain.StatusPlanned)
	}
	ev := &event{
		id:        s.nextEventID,
		start:     in.StartTime.UTC(),
		end:       in.EndTime.UTC(),
		place:     in.Place,
		content:   in.Content,
		status:    status,
		totalCost: in.TotalCost,
		createdAt: now,
		updatedAt: now,
	}
	s.events[ev.id] = ev
	return ev
}

func (s *Server) addParticipantLocked(eventID, userID, paidAmount int64) *participant {
	s.nextParticipant++
	now := s.now()
	p := &participant{
		id:         s.nextParticipant,
		eventID:    eventID,
		userID:     userID,
		paidAmount: paidAmount,
		createdAt:  now,
		updatedAt:  now,
	}
	s.participants[p.id] = p
	return p
}

func (s *Server) participantsOfLocked(eventID int64) []*participant {
	var out []*participant
	for _, p := range s.participants {
		if p.eventID == eventID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func toDomainEvent(ev *event) domain.Event {
	return domain.Event{
		ID:        ev.id,
		StartTime: domain.NewTimestamp(ev.start),
		EndTime:   domain.NewTimestamp(ev.end),
		Place:     ev.place,
		Content:   ev.content,
		Status:    domain.EventStatus(ev.status),
		TotalCost: ev.totalCost,
		CreatedAt: domain.NewTimestamp(ev.createdAt),
		UpdatedAt: domain.NewTimestamp(ev.updatedAt),
	}
}

func toDomainParticipant(p *participant) domain.Participant {
	return domain.Participant{
		ID:         p.id,
		EventID:    p.eventID,
		UserID:     p.userID,
		PaidAmount: p.paidAmount,
		CreatedAt:  domain.NewTimestamp(p.createdAt),
		UpdatedAt:  domain.NewTimestamp(p.updatedAt),
	}
}
