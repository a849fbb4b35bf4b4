// Package store is the persistent credential store: a fixed set of named
// slots holding JSON values in the local SQLite database.
//
// A slot whose stored value cannot be decoded reads as absent. Backend
// failures are returned to the caller.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/starterkit/internal/client/repositories/kv"
	"github.com/dmitrijs2005/starterkit/internal/dbx"
	"github.com/dmitrijs2005/starterkit/internal/logging"
)

type Key string

const (
	KeyAccessToken        Key = "@auth_token"
	KeyRefreshToken       Key = "@refresh_token"
	KeyUser               Key = "@user_data"
	KeyPreferences        Key = "@preferences"
	KeyOnboardingComplete Key = "@onboarding_complete"
)

var ErrUnknownKey = errors.New("unknown storage key")

var knownKeys = map[Key]struct{}{
	KeyAccessToken:        {},
	KeyRefreshToken:       {},
	KeyUser:               {},
	KeyPreferences:        {},
	KeyOnboardingComplete: {},
}

// Keys returns every slot name in a stable order.
func Keys() []Key {
	return []Key{KeyAccessToken, KeyRefreshToken, KeyUser, KeyPreferences, KeyOnboardingComplete}
}

func checkKey(key Key) error {
	if _, ok := knownKeys[key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, string(key))
	}
	return nil
}

// Store is safe for concurrent use; the underlying *sql.DB serialises access.
type Store struct {
	db     *sql.DB
	repo   kv.Repository
	logger logging.Logger
}

func New(db *sql.DB, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Store{db: db, repo: kv.NewSQLiteRepository(db), logger: logger}
}

// Get decodes the value stored under key into dst. found is false when the
// slot was never written, was removed, holds null or an undecodable value; dst
// must not be relied upon in that case.
func (s *Store) Get(ctx context.Context, key Key, dst any) (bool, error) {
	return s.get(ctx, s.repo, key, dst)
}

func (s *Store) get(ctx context.Context, repo kv.Repository, key Key, dst any) (bool, error) {
	if err := checkKey(key); err != nil {
		return false, err
	}

	raw, err := repo.Get(ctx, string(key))
	if err != nil {
		return false, err
	}
	// A stored null is treated as absent.
	if raw == nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return false, nil
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Warn(ctx, "discarding unreadable stored value", "key", string(key), "error", err)
		return false, nil
	}
	return true, nil
}

// Set stores value under key, replacing what was there.
func (s *Store) Set(ctx context.Context, key Key, value any) error {
	return s.set(ctx, s.repo, key, value)
}

func (s *Store) set(ctx context.Context, repo kv.Repository, key Key, value any) error {
	if err := checkKey(key); err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return repo.Set(ctx, string(key), raw)
}

// Remove deletes key. Removing an absent key is not an error.
func (s *Store) Remove(ctx context.Context, key Key) error {
	return s.remove(ctx, s.repo, key)
}

func (s *Store) remove(ctx context.Context, repo kv.Repository, key Key) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return repo.Delete(ctx, string(key))
}

// Clear wipes every slot, including preferences and the onboarding flag.
func (s *Store) Clear(ctx context.Context) error {
	return s.inTx(ctx, func(ctx context.Context, repo kv.Repository) error {
		return repo.Clear(ctx)
	})
}

func (s *Store) inTx(ctx context.Context, fn func(ctx context.Context, repo kv.Repository) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, kv.NewSQLiteRepository(tx))
	})
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
