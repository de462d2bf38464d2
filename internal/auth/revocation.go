// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/reelgate/internal/config"
	"github.com/tomtom215/reelgate/internal/logging"
)

// ErrRevocationStoreClosed is returned after Close.
var ErrRevocationStoreClosed = errors.New("revocation store is closed")

// RevocationStore tracks revoked token IDs until the tokens expire.
type RevocationStore interface {
	// Revoke records jti as revoked until expiresAt. Already expired
	// tokens are ignored.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error

	IsRevoked(ctx context.Context, jti string) (bool, error)

	Close() error
}

// NewRevocationStore opens the backend named by cfg.RevocationBackend.
func NewRevocationStore(cfg *config.SecurityConfig) (RevocationStore, error) {
	switch cfg.RevocationBackend {
	case config.RevocationMemory, "":
		return NewMemoryRevocationStore(), nil
	case config.RevocationBadger:
		return OpenBadgerRevocationStore(cfg.RevocationPath)
	default:
		return nil, fmt.Errorf("unknown revocation backend %q", cfg.RevocationBackend)
	}
}

// MemoryRevocationStore keeps revocations in a map. Expired entries are
// dropped when they are next looked up. Entries are lost on restart.
type MemoryRevocationStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	closed  bool
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{entries: make(map[string]time.Time)}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrRevocationStoreClosed
	}
	if !expiresAt.After(time.Now()) {
		return nil
	}
	s.entries[jti] = expiresAt
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrRevocationStoreClosed
	}
	expiresAt, ok := s.entries[jti]
	if !ok {
		return false, nil
	}
	if !time.Now().Before(expiresAt) {
		delete(s.entries, jti)
		return false, nil
	}
	return true, nil
}

func (s *MemoryRevocationStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
	return nil
}

const revokedKeyPrefix = "revoked:"

type revocationEntry struct {
	RevokedAt time.Time `json:"revoked_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// BadgerRevocationStore persists revocations in BadgerDB. Each entry carries
// a TTL matching the remaining token lifetime, so badger discards it once the
// token could no longer be used anyway.
type BadgerRevocationStore struct {
	db       *badger.DB
	inMemory bool
}

// OpenBadgerRevocationStore opens a store at path. An empty path opens an
// in-memory database.
func OpenBadgerRevocationStore(path string) (*BadgerRevocationStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for revocations: %w", err)
	}
	logging.Info().
		Str("path", path).
		Bool("in_memory", path == "").
		Msg("Token revocation store opened")
	return &BadgerRevocationStore{db: db, inMemory: path == ""}, nil
}

func (s *BadgerRevocationStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	now := time.Now()
	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(revocationEntry{RevokedAt: now, ExpiresAt: expiresAt})
	if err != nil {
		return fmt.Errorf("marshal revocation: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(revokedKeyPrefix+jti), data).WithTTL(ttl)
		if err := txn.SetEntry(entry); err != nil {
			return fmt.Errorf("set revocation: %w", err)
		}
		return nil
	})
}

func (s *BadgerRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	var entry revocationEntry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(revokedKeyPrefix + jti))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("get revocation: %w", err)
	}
	return time.Now().Before(entry.ExpiresAt), nil
}

// gcDiscardRatio is the value log rewrite threshold passed to badger.
const gcDiscardRatio = 0.5

// RunGC reclaims value log space left by expired revocations. It is a no-op
// for in-memory stores.
func (s *BadgerRevocationStore) RunGC(ctx context.Context) error {
	if s.inMemory {
		return nil
	}
	for ctx.Err() == nil {
		err := s.db.RunValueLogGC(gcDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("revocation value log gc: %w", err)
		}
	}
	return ctx.Err()
}

func (s *BadgerRevocationStore) Close() error {
	return s.db.Close()
}
