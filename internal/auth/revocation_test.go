// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/reelgate/internal/config"
)

func revocationStores(t *testing.T) map[string]RevocationStore {
	t.Helper()
	badgerStore, err := OpenBadgerRevocationStore("")
	if err != nil {
		t.Fatalf("OpenBadgerRevocationStore() error = %v", err)
	}
	return map[string]RevocationStore{
		"memory": NewMemoryRevocationStore(),
		"badger": badgerStore,
	}
}

func TestRevocationStore_RevokeAndCheck(t *testing.T) {
	ctx := context.Background()

	for name, store := range revocationStores(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			revoked, err := store.IsRevoked(ctx, "jti-1")
			if err != nil || revoked {
				t.Fatalf("IsRevoked() before revoke = %v, %v", revoked, err)
			}

			if err := store.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)); err != nil {
				t.Fatalf("Revoke() error = %v", err)
			}

			revoked, err = store.IsRevoked(ctx, "jti-1")
			if err != nil || !revoked {
				t.Fatalf("IsRevoked() after revoke = %v, %v", revoked, err)
			}

			revoked, _ = store.IsRevoked(ctx, "jti-2")
			if revoked {
				t.Error("unrelated JTI reported revoked")
			}
		})
	}
}

func TestRevocationStore_ExpiredIgnored(t *testing.T) {
	ctx := context.Background()

	for name, store := range revocationStores(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			if err := store.Revoke(ctx, "old", time.Now().Add(-time.Minute)); err != nil {
				t.Fatalf("Revoke() error = %v", err)
			}
			revoked, err := store.IsRevoked(ctx, "old")
			if err != nil || revoked {
				t.Fatalf("IsRevoked() for expired token = %v, %v", revoked, err)
			}
		})
	}
}

func TestMemoryRevocationStore_LapsesAtExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRevocationStore()
	defer store.Close()

	if err := store.Revoke(ctx, "short", time.Now().Add(20*time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	time.Sleep(40 * time.Millisecond)

	revoked, err := store.IsRevoked(ctx, "short")
	if err != nil || revoked {
		t.Fatalf("IsRevoked() after expiry = %v, %v", revoked, err)
	}
	if _, ok := store.entries["short"]; ok {
		t.Error("expired entry was not dropped")
	}
}

func TestMemoryRevocationStore_Closed(t *testing.T) {
	store := NewMemoryRevocationStore()
	_ = store.Close()

	if _, err := store.IsRevoked(context.Background(), "x"); !errors.Is(err, ErrRevocationStoreClosed) {
		t.Errorf("IsRevoked() error = %v, want ErrRevocationStoreClosed", err)
	}
	if err := store.Revoke(context.Background(), "x", time.Now().Add(time.Hour)); !errors.Is(err, ErrRevocationStoreClosed) {
		t.Errorf("Revoke() error = %v, want ErrRevocationStoreClosed", err)
	}
}

func TestNewRevocationStore(t *testing.T) {
	tests := []struct {
		backend string
		want    string
		wantErr bool
	}{
		{backend: config.RevocationMemory, want: "*auth.MemoryRevocationStore"},
		{backend: config.RevocationBadger, want: "*auth.BadgerRevocationStore"},
		{backend: "redis", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := testSecurityConfig()
			cfg.RevocationBackend = tt.backend
			if tt.backend == config.RevocationBadger {
				cfg.RevocationPath = t.TempDir()
			}

			store, err := NewRevocationStore(cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewRevocationStore() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewRevocationStore() error = %v", err)
			}
			defer store.Close()

			switch store.(type) {
			case *MemoryRevocationStore:
				if tt.want != "*auth.MemoryRevocationStore" {
					t.Errorf("got memory store, want %s", tt.want)
				}
			case *BadgerRevocationStore:
				if tt.want != "*auth.BadgerRevocationStore" {
					t.Errorf("got badger store, want %s", tt.want)
				}
			}
		})
	}
}

func TestBadgerRevocationStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := OpenBadgerRevocationStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Revoke(ctx, "durable", time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenBadgerRevocationStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	revoked, err := reopened.IsRevoked(ctx, "durable")
	if err != nil || !revoked {
		t.Fatalf("IsRevoked() after reopen = %v, %v", revoked, err)
	}
}

func TestBadgerRevocationStore_RunGC(t *testing.T) {
	ctx := context.Background()

	mem, err := OpenBadgerRevocationStore("")
	if err != nil {
		t.Fatal(err)
	}
	defer mem.Close()
	if err := mem.RunGC(ctx); err != nil {
		t.Errorf("RunGC() on in-memory store error = %v", err)
	}

	disk, err := OpenBadgerRevocationStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer disk.Close()
	if err := disk.Revoke(ctx, "jti", time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := disk.RunGC(ctx); err != nil {
		t.Errorf("RunGC() on fresh store error = %v", err)
	}
}
