// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

/*
Package clipstore is the HTTP client for clip storage.

Clip storage serves payload descriptors at GET {base}/clips/{id}. Requests
are paced by a client-side token bucket and run behind a circuit breaker so
an unavailable store fails fast instead of stalling every ad and clip
request. A 404 is an answer, not a failure, and does not count against the
breaker.
*/
package clipstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/reelgate/internal/access"
	"github.com/tomtom215/reelgate/internal/config"
	"github.com/tomtom215/reelgate/internal/logging"
	"github.com/tomtom215/reelgate/internal/metrics"
	"github.com/tomtom215/reelgate/internal/models"
	"github.com/tomtom215/reelgate/internal/validation"
)

const breakerName = "clipstore"

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 512

// StatusError is an unexpected HTTP status from clip storage.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("clip storage returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("clip storage returned status %d: %s", e.StatusCode, e.Body)
}

// Client implements access.ClipStore.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[*models.ClipData]
}

var _ access.ClipStore = (*Client)(nil)

// New builds a client from cfg.
func New(cfg *config.ClipStoreConfig) *Client {
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	metrics.SetCircuitBreakerState(breakerName, int(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[*models.ClipData](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, access.ErrClipNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.SetCircuitBreakerState(name, int(to))
		},
	})

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		cb:         cb,
	}
}

// ByClipID fetches the payload descriptor for clip id.
func (c *Client) ByClipID(ctx context.Context, id int64) (*models.ClipData, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("clip storage rate limit: %w", err)
	}

	data, err := c.cb.Execute(func() (*models.ClipData, error) {
		return c.fetch(ctx, id)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.RecordClipStoreRequest("rejected", 0)
		return nil, fmt.Errorf("clip storage unavailable: %w", err)
	}
	return data, err
}

func (c *Client) fetch(ctx context.Context, id int64) (*models.ClipData, error) {
	start := time.Now()
	endpoint := c.baseURL + "/clips/" + strconv.FormatInt(id, 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create clip request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if cid := logging.CorrelationIDFromContext(ctx); cid != "" {
		req.Header.Set("X-Request-Id", cid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordClipStoreRequest("error", time.Since(start))
		return nil, fmt.Errorf("clip storage request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.RecordClipStoreRequest(strconv.Itoa(resp.StatusCode), time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: id %d", access.ErrClipNotFound, id)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var data models.ClipData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode clip %d: %w", id, err)
	}
	if err := validation.ValidateStruct(&data); err != nil {
		return nil, fmt.Errorf("clip %d: %w", id, err)
	}
	if data.ClipID == 0 {
		data.ClipID = id
	}
	return &data, nil
}

// BreakerOpen reports whether the circuit breaker is rejecting requests.
func (c *Client) BreakerOpen() bool {
	return c.cb.State() == gobreaker.StateOpen
}

// Check is a readiness probe that fails while the breaker is open.
func (c *Client) Check(context.Context) error {
	if c.BreakerOpen() {
		return errors.New("clip storage circuit breaker is open")
	}
	return nil
}
