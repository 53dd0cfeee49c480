package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kaiginote/internal/domain"
)

type memStorage struct {
	items     map[string]string
	getErr    error
	setErr    error
	removeErr error
}

func newMemStorage() *memStorage {
	return &memStorage{items: map[string]string{}}
}

func (m *memStorage) GetItem(_ context.Context, origin, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.items[origin+"|"+key]
	return v, ok, nil
}

func (m *memStorage) SetItem(_ context.Context, origin, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.items[origin+"|"+key] = value
	return nil
}

func (m *memStorage) RemoveItem(_ context.Context, origin, key string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.items, origin+"|"+key)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTokenStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()

	store, err := Open(ctx, storage, "http://localhost:8000", discardLogger())
	require.NoError(t, err)
	_, ok := store.Get()
	assert.False(t, ok)
	assert.False(t, store.Authenticated())

	cred := domain.Credential{AccessToken: "abc", TokenType: "bearer"}
	require.NoError(t, store.Set(cred))
	got, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, cred, got)

	// A second store over the same storage sees the persisted credential.
	reloaded, err := Open(ctx, storage, "http://localhost:8000", discardLogger())
	require.NoError(t, err)
	got, ok = reloaded.Get()
	require.True(t, ok)
	assert.Equal(t, cred, got)

	require.NoError(t, store.Clear())
	assert.False(t, store.Authenticated())
	_, ok = storage.items["http://localhost:8000|"+TokenKey]
	assert.False(t, ok)
}

func TestTokenStore_OpenBareToken(t *testing.T) {
	storage := newMemStorage()
	storage.items["http://localhost:8000|"+TokenKey] = "raw-token"

	store, err := Open(context.Background(), storage, "http://localhost:8000", discardLogger())
	require.NoError(t, err)
	got, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "raw-token", got.AccessToken)
	assert.Equal(t, "Bearer raw-token", got.AuthorizationHeader())
}

func TestTokenStore_OpenError(t *testing.T) {
	storage := newMemStorage()
	storage.getErr = errors.New("disk gone")

	_, err := Open(context.Background(), storage, "o", discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestTokenStore_ClearFailureStillAnonymous(t *testing.T) {
	storage := newMemStorage()
	store, err := Open(context.Background(), storage, "o", discardLogger())
	require.NoError(t, err)
	require.NoError(t, store.Set(domain.Credential{AccessToken: "abc", TokenType: "bearer"}))

	storage.removeErr = errors.New("read-only")
	require.Error(t, store.Clear())
	assert.False(t, store.Authenticated())
}

func TestTokenStore_SetRejectsEmptyToken(t *testing.T) {
	store, err := Open(context.Background(), newMemStorage(), "o", discardLogger())
	require.NoError(t, err)
	require.Error(t, store.Set(domain.Credential{}))
	assert.False(t, store.Authenticated())
}

func TestOriginOf(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "http://localhost:8000", want: "http://localhost:8000"},
		{in: "HTTPS://API.Example.com/base/path?x=1", want: "https://api.example.com"},
		{in: "localhost:8000", wantErr: true},
		{in: "/relative", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := OriginOf(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenStore_SetPersistFailureKeepsPrevious(t *testing.T) {
	storage := newMemStorage()
	store, err := Open(context.Background(), storage, "o", discardLogger())
	require.NoError(t, err)

	storage.setErr = errors.New("quota exceeded")
	err = store.Set(domain.Credential{AccessToken: "first", TokenType: "bearer"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.False(t, store.Authenticated())

	storage.setErr = nil
	prev := domain.Credential{AccessToken: "first", TokenType: "bearer"}
	require.NoError(t, store.Set(prev))

	storage.setErr = errors.New("quota exceeded")
	require.Error(t, store.Set(domain.Credential{AccessToken: "second", TokenType: "bearer"}))
	got, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, prev, got)
	assert.Equal(t, `{"access_token":"first","token_type":"bearer"}`, storage.items["o|"+TokenKey])
}

func TestTokenStore_OpenEmptyStoredToken(t *testing.T) {
	for _, raw := range []string{"", "   ", `{"access_token":""}`, `{"access_token":"","token_type":"bearer"}`} {
		storage := newMemStorage()
		storage.items["o|"+TokenKey] = raw

		store, err := Open(context.Background(), storage, "o", discardLogger())
		require.NoError(t, err)
		assert.False(t, store.Authenticated(), "stored value %q", raw)
	}
}
