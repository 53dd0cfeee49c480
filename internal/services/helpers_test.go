package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kaiginote/internal/adapters/api"
	"kaiginote/internal/adapters/storage/sqlite"
	"kaiginote/internal/apitest"
	"kaiginote/internal/domain"
	"kaiginote/internal/session"
)

type recordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNavigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *recordingNavigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

// stack is a client wired the way cmd/kaigi wires it, pointed at a fake service.
type stack struct {
	srv          *apitest.Server
	storage      *sqlite.LocalStorage
	tokens       *session.TokenStore
	nav          *recordingNavigator
	client       *api.Client
	auth         domain.AuthService
	events       domain.EventService
	participants domain.ParticipantService
}

func newStack(t *testing.T) *stack {
	t.Helper()
	srv := apitest.New(t)
	storage, err := sqlite.Open(filepath.Join(t.TempDir(), "storage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	origin, err := session.OriginOf(srv.URL)
	require.NoError(t, err)
	tokens, err := session.Open(context.Background(), storage, origin, logger)
	require.NoError(t, err)

	nav := &recordingNavigator{}
	client, err := api.New(srv.URL, tokens, api.WithNavigator(nav), api.WithLogger(logger))
	require.NoError(t, err)

	return &stack{
		srv:          srv,
		storage:      storage,
		tokens:       tokens,
		nav:          nav,
		client:       client,
		auth:         NewAuthService(client, tokens, logger),
		events:       NewEventService(client),
		participants: NewParticipantService(client),
	}
}

// signIn seeds a user and stores a token for it.
func (s *stack) signIn(t *testing.T) domain.User {
	t.Helper()
	u := s.srv.SeedUser("Taro", "taro@example.com", "password123")
	require.NoError(t, s.tokens.Set(s.srv.Login(u.ID)))
	return u
}

func at(day, hour int) domain.Timestamp {
	return domain.NewTimestamp(time.Date(2025, 5, day, hour, 0, 0, 0, time.UTC))
}

func ptr[T any](v T) *T { return &v }
