// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package clipstore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reelgate/internal/access"
	"github.com/tomtom215/reelgate/internal/config"
	"github.com/tomtom215/reelgate/internal/validation"
)

// fakeClipStorage serves clip 1, 404s clip 2, 500s clip 3 and returns a
// descriptor without a URI for clip 4.
func fakeClipStorage(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/clips/{id}", func(w http.ResponseWriter, req *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		switch chi.URLParam(req, "id") {
		case "1":
			_, _ = w.Write([]byte(`{"clip_id":1,"uri":"https://cdn.local/clips/1.m3u8","content_type":"application/vnd.apple.mpegurl","size":2048}`))
		case "2":
			w.WriteHeader(http.StatusNotFound)
		case "3":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("backend exploded"))
		case "4":
			_, _ = w.Write([]byte(`{"clip_id":4}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) *config.ClipStoreConfig {
	return &config.ClipStoreConfig{
		BaseURL:            baseURL + "/",
		Timeout:            2 * time.Second,
		RequestsPerSecond:  1000,
		Burst:              100,
		BreakerMaxFailures: 3,
		BreakerTimeout:     time.Minute,
	}
}

func TestByClipID(t *testing.T) {
	srv := fakeClipStorage(t, nil)
	c := New(testConfig(srv.URL))
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		data, err := c.ByClipID(ctx, 1)
		if err != nil {
			t.Fatalf("ByClipID(1) error = %v", err)
		}
		if data.ClipID != 1 || data.URI != "https://cdn.local/clips/1.m3u8" || data.Size != 2048 {
			t.Errorf("ByClipID(1) = %+v", data)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := c.ByClipID(ctx, 2)
		if !errors.Is(err, access.ErrClipNotFound) {
			t.Fatalf("ByClipID(2) error = %v, want ErrClipNotFound", err)
		}
	})

	t.Run("server error", func(t *testing.T) {
		_, err := c.ByClipID(ctx, 3)
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("ByClipID(3) error = %v, want *StatusError", err)
		}
		if statusErr.StatusCode != http.StatusInternalServerError || statusErr.Body != "backend exploded" {
			t.Errorf("StatusError = %+v", statusErr)
		}
		if errors.Is(err, access.ErrClipNotFound) {
			t.Error("server error must not look like a missing clip")
		}
	})

	t.Run("invalid descriptor", func(t *testing.T) {
		_, err := c.ByClipID(ctx, 4)
		var verr *validation.RequestValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("ByClipID(4) error = %v, want validation error", err)
		}
	})
}

func TestBreaker_NotFoundDoesNotTrip(t *testing.T) {
	srv := fakeClipStorage(t, nil)
	c := New(testConfig(srv.URL))

	for range 10 {
		_, _ = c.ByClipID(context.Background(), 2)
	}
	if c.BreakerOpen() {
		t.Fatal("404 responses opened the breaker")
	}
}

func TestBreaker_OpensOnFailures(t *testing.T) {
	var hits atomic.Int32
	srv := fakeClipStorage(t, &hits)
	c := New(testConfig(srv.URL))
	ctx := context.Background()

	for range 3 {
		_, _ = c.ByClipID(ctx, 3)
	}
	if !c.BreakerOpen() {
		t.Fatal("breaker should be open after 3 consecutive failures")
	}
	if err := c.Check(ctx); err == nil {
		t.Error("Check() should fail while the breaker is open")
	}

	before := hits.Load()
	_, err := c.ByClipID(ctx, 1)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("ByClipID() with open breaker error = %v, want ErrOpenState", err)
	}
	if hits.Load() != before {
		t.Error("open breaker still reached the server")
	}
}

func TestByClipID_RateLimitHonorsContext(t *testing.T) {
	srv := fakeClipStorage(t, nil)
	cfg := testConfig(srv.URL)
	cfg.RequestsPerSecond = 0.001
	cfg.Burst = 1
	c := New(cfg)

	if _, err := c.ByClipID(context.Background(), 1); err != nil {
		t.Fatalf("first request error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.ByClipID(ctx, 1); err == nil {
		t.Fatal("second request should fail waiting on the limiter")
	}
}

func TestCheck_Healthy(t *testing.T) {
	srv := fakeClipStorage(t, nil)
	c := New(testConfig(srv.URL))
	if err := c.Check(context.Background()); err != nil {
		t.Errorf("Check() error = %v", err)
	}
}
