// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package ops

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelgate/internal/logging"
)

// checkTimeout bounds each readiness check.
const checkTimeout = 2 * time.Second

// Check is a named readiness probe.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

type handler struct {
	checks  []Check
	started time.Time
}

type checkResult struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type readiness struct {
	Status string        `json:"status"`
	Checks []checkResult `json:"checks"`
	Uptime float64       `json:"uptime_seconds"`
}

func (h *handler) live(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"alive":          true,
		"uptime_seconds": time.Since(h.started).Seconds(),
	})
}

func (h *handler) ready(w http.ResponseWriter, r *http.Request) {
	report := readiness{
		Status: "ready",
		Checks: make([]checkResult, 0, len(h.checks)),
		Uptime: time.Since(h.started).Seconds(),
	}

	for _, c := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := c.Probe(ctx)
		cancel()

		res := checkResult{Name: c.Name, OK: err == nil}
		if err != nil {
			res.Error = err.Error()
			report.Status = "not_ready"
			logging.Ctx(r.Context()).Warn().Err(err).Str("check", c.Name).Msg("Readiness check failed")
		}
		report.Checks = append(report.Checks, res)
	}

	status := http.StatusOK
	if report.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, report)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error().Err(err).Msg("Failed to encode ops response")
	}
}
