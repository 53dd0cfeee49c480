package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "storage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLocalStorage_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	s := openTestStorage(t)

	_, ok, err := s.GetItem(ctx, "http://localhost:8000", "kaigi_note_token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetItem(ctx, "http://localhost:8000", "kaigi_note_token", "first"))
	require.NoError(t, s.SetItem(ctx, "http://localhost:8000", "kaigi_note_token", "second"))

	value, ok, err := s.GetItem(ctx, "http://localhost:8000", "kaigi_note_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", value, "last write wins")

	require.NoError(t, s.RemoveItem(ctx, "http://localhost:8000", "kaigi_note_token"))
	_, ok, err = s.GetItem(ctx, "http://localhost:8000", "kaigi_note_token")
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing a missing key is not an error.
	require.NoError(t, s.RemoveItem(ctx, "http://localhost:8000", "kaigi_note_token"))
}

func TestLocalStorage_OriginScoped(t *testing.T) {
	ctx := context.Background()
	s := openTestStorage(t)

	require.NoError(t, s.SetItem(ctx, "https://a.example.com", "kaigi_note_token", "a"))
	require.NoError(t, s.SetItem(ctx, "https://b.example.com", "kaigi_note_token", "b"))

	value, ok, err := s.GetItem(ctx, "https://a.example.com", "kaigi_note_token")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", value)

	require.NoError(t, s.RemoveItem(ctx, "https://a.example.com", "kaigi_note_token"))
	value, ok, err = s.GetItem(ctx, "https://b.example.com", "kaigi_note_token")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", value)
}

func TestLocalStorage_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SetItem(ctx, "o", "k", "v"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	value, ok, err := s.GetItem(ctx, "o", "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)
}

func TestLocalStorage_DBErrors(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		mock func(mock sqlmock.Sqlmock)
		run  func(s *LocalStorage) error
	}{
		{
			name: "get",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT value FROM local_storage`).
					WithArgs("o", "k").
					WillReturnError(sql.ErrConnDone)
			},
			run: func(s *LocalStorage) error {
				_, _, err := s.GetItem(ctx, "o", "k")
				return err
			},
		},
		{
			name: "set",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO local_storage`).
					WithArgs("o", "k", "v", fixed.Unix()).
					WillReturnError(sql.ErrConnDone)
			},
			run: func(s *LocalStorage) error {
				return s.SetItem(ctx, "o", "k", "v")
			},
		},
		{
			name: "remove",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM local_storage`).
					WithArgs("o", "k").
					WillReturnError(sql.ErrConnDone)
			},
			run: func(s *LocalStorage) error {
				return s.RemoveItem(ctx, "o", "k")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			s := NewLocalStorage(db)
			s.now = func() time.Time { return fixed }

			err = tt.run(s)
			require.Error(t, err)
			assert.ErrorIs(t, err, sql.ErrConnDone)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
