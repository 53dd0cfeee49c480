// Package sqlite provides durable, origin-scoped key/value storage on a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"kaiginote/internal/domain"
)

var _ domain.LocalStorage = (*LocalStorage)(nil)

// LocalStorage implements domain.LocalStorage on SQLite.
type LocalStorage struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and runs migrations.
func Open(path string) (*LocalStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	// A single connection keeps writes serialized within the process.
	db.SetMaxOpenConns(1)
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return NewLocalStorage(db), nil
}

// NewLocalStorage wraps an already-migrated database handle.
func NewLocalStorage(db *sql.DB) *LocalStorage {
	return &LocalStorage{db: db, now: time.Now}
}

// Close closes the database connection.
func (s *LocalStorage) Close() error {
	return s.db.Close()
}

func (s *LocalStorage) GetItem(ctx context.Context, origin, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM local_storage WHERE origin = ? AND key = ?",
		origin, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, true, nil
}

func (s *LocalStorage) SetItem(ctx context.Context, origin, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO local_storage (origin, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (origin, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		origin, key, value, s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (s *LocalStorage) RemoveItem(ctx context.Context, origin, key string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM local_storage WHERE origin = ? AND key = ?",
		origin, key,
	)
	if err != nil {
		return fmt.Errorf("failed to remove %q: %w", key, err)
	}
	return nil
}
