// Package internaldb implements InternalStore using BadgerHold.
// It holds settings and cached derived documents as plain key-value pairs.
package internaldb

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/omercanyy/investrack/internal/common"
)

// kvEntry is the stored record for a key-value pair.
type kvEntry struct {
	Key        string `badgerhold:"key"`
	Value      string
	ModifiedAt time.Time
}

// Store implements interfaces.InternalStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore creates a new InternalStore backed by BadgerHold.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create internal db path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open internal db at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("InternalDB opened")
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) GetKV(_ context.Context, key string) (string, error) {
	var entry kvEntry
	if err := s.db.Get(key, &entry); err != nil {
		if err == badgerhold.ErrNotFound {
			return "", fmt.Errorf("key '%s' not found", key)
		}
		return "", fmt.Errorf("failed to get key '%s': %w", key, err)
	}
	return entry.Value, nil
}

func (s *Store) SetKV(_ context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	entry := kvEntry{Key: key, Value: value, ModifiedAt: time.Now()}
	if err := s.db.Upsert(key, &entry); err != nil {
		return fmt.Errorf("failed to set key '%s': %w", key, err)
	}
	return nil
}

func (s *Store) DeleteKV(_ context.Context, key string) error {
	if err := s.db.Delete(key, kvEntry{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete key '%s': %w", key, err)
	}
	return nil
}

// Close closes the underlying BadgerHold store.
func (s *Store) Close() error {
	return s.db.Close()
}
