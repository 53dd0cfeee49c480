// Package session holds the process-wide session credential.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"kaiginote/internal/domain"
)

// TokenKey is the fixed storage key of the credential.
const TokenKey = "kaigi_note_token"

var _ domain.TokenStore = (*TokenStore)(nil)

// TokenStore is the single holder of the session credential. It is loaded from durable
// storage once at startup and written through on every change. It tracks no expiry;
// validity is learned from service responses only.
type TokenStore struct {
	mu      sync.RWMutex
	storage domain.LocalStorage
	origin  string
	cred    *domain.Credential
	logger  *slog.Logger
}

// Open reads the stored credential for origin, if any.
func Open(ctx context.Context, storage domain.LocalStorage, origin string, logger *slog.Logger) (*TokenStore, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &TokenStore{storage: storage, origin: origin, logger: logger}
	raw, ok, err := storage.GetItem(ctx, origin, TokenKey)
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}
	if cred := decodeCredential(raw); ok && cred.AccessToken != "" {
		s.cred = &cred
		logger.Debug("restored session credential", "origin", origin)
	}
	return s, nil
}

// Get returns the current credential and whether one exists.
func (s *TokenStore) Get() (domain.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return domain.Credential{}, false
	}
	return *s.cred, true
}

// Authenticated reports whether a credential is present.
func (s *TokenStore) Authenticated() bool {
	_, ok := s.Get()
	return ok
}

// Set replaces the credential.
func (s *TokenStore) Set(cred domain.Credential) error {
	if cred.AccessToken == "" {
		return fmt.Errorf("empty access token")
	}
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.SetItem(context.Background(), s.origin, TokenKey, string(data)); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	s.cred = &cred
	return nil
}

// Clear removes the credential. The in-memory session becomes anonymous even when the
// durable delete fails.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = nil
	if err := s.storage.RemoveItem(context.Background(), s.origin, TokenKey); err != nil {
		s.logger.Warn("failed to remove stored credential", "origin", s.origin, "err", err)
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}

// decodeCredential accepts the JSON form written by Set and a bare token string.
func decodeCredential(raw string) domain.Credential {
	raw = strings.TrimSpace(raw)
	var cred domain.Credential
	if strings.HasPrefix(raw, "{") {
		if err := json.Unmarshal([]byte(raw), &cred); err == nil {
			return cred
		}
	}
	return domain.Credential{AccessToken: raw, TokenType: "bearer"}
}

// OriginOf returns the scheme://host[:port] origin of rawURL.
func OriginOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q has no scheme or host", rawURL)
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), nil
}
