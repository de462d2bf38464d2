// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordRoleLookup(t *testing.T) {
	tests := []struct {
		name   string
		member bool
		err    error
		result string
	}{
		{"member", true, nil, "member"},
		{"not member", false, nil, "not_member"},
		{"error wins over member flag", true, errors.New("lookup failed"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := RoleLookups.WithLabelValues("REVIEWER", tt.result)
			before := testutil.ToFloat64(c)

			RecordRoleLookup("REVIEWER", tt.member, tt.err)

			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("%s counter delta = %v, want 1", tt.result, got)
			}
		})
	}
}

func TestRecordRuleDecision(t *testing.T) {
	c := RuleDecisions.WithLabelValues("false", "lookup_failed")
	before := testutil.ToFloat64(c)

	RecordRuleDecision(false, "lookup_failed")

	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("counter delta = %v, want 1", got)
	}
}

func TestRecordPublish(t *testing.T) {
	ok := ActivitiesPublished.WithLabelValues("ok")
	failed := ActivitiesPublished.WithLabelValues("error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)
	samplesBefore := histogramCount(t)

	RecordPublish(5*time.Millisecond, nil)
	RecordPublish(5*time.Millisecond, errors.New("nats: timeout"))

	if got := testutil.ToFloat64(ok) - okBefore; got != 1 {
		t.Errorf("ok delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(failed) - failedBefore; got != 1 {
		t.Errorf("error delta = %v, want 1", got)
	}
	if got := histogramCount(t) - samplesBefore; got != 2 {
		t.Errorf("histogram sample delta = %d, want 2", got)
	}
}

func TestRecordCatalogQuery(t *testing.T) {
	errs := CatalogQueryErrors.WithLabelValues("movie_by_id")
	before := testutil.ToFloat64(errs)

	RecordCatalogQuery("movie_by_id", time.Millisecond, nil)
	RecordCatalogQuery("movie_by_id", time.Millisecond, errors.New("io error"))

	if got := testutil.ToFloat64(errs) - before; got != 1 {
		t.Errorf("error delta = %v, want 1", got)
	}
}

func TestSetCircuitBreakerState(t *testing.T) {
	SetCircuitBreakerState("clipstore", 2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("clipstore")); got != 2 {
		t.Errorf("state = %v, want 2", got)
	}
}

func histogramCount(t *testing.T) uint64 {
	t.Helper()
	var m dto.Metric
	if err := PublishDuration.Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordOpsRequest(t *testing.T) {
	before := opsSamples(t, "GET", "/readyz", "503")

	RecordOpsRequest("GET", "/readyz", "503", 3*time.Millisecond)

	if got := opsSamples(t, "GET", "/readyz", "503") - before; got != 1 {
		t.Errorf("sample count delta = %d, want 1", got)
	}
}

func TestTrackOpsRequest(t *testing.T) {
	before := testutil.ToFloat64(OpsRequestsInFlight)

	TrackOpsRequest(true)
	if got := testutil.ToFloat64(OpsRequestsInFlight) - before; got != 1 {
		t.Errorf("in-flight delta after start = %v, want 1", got)
	}
	TrackOpsRequest(false)
	if got := testutil.ToFloat64(OpsRequestsInFlight) - before; got != 0 {
		t.Errorf("in-flight delta after finish = %v, want 0", got)
	}
}

func opsSamples(t *testing.T, method, route, status string) uint64 {
	t.Helper()
	m := &dto.Metric{}
	obs := OpsRequestDuration.WithLabelValues(method, route, status)
	if err := obs.(interface{ Write(*dto.Metric) error }).Write(m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}
