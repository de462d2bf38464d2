// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

// Package metrics holds the Prometheus collectors exported on /metrics.
//
// Collectors are registered with the default registry through promauto and
// updated through the Record helpers, so call sites never build label sets
// by hand.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "reelgate"

var (
	// Access core
	AccessDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_decisions_total",
			Help:      "Access core outcomes by operation and outcome kind",
		},
		[]string{"operation", "outcome"}, // outcome: allowed or an error kind
	)

	RuleDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movie_rule_decisions_total",
			Help:      "Movie-access rule evaluations by reason",
		},
		[]string{"allowed", "reason"},
	)

	RoleLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "role_lookups_total",
			Help:      "Role membership queries issued per role",
		},
		[]string{"role", "result"}, // result: member, not_member, error
	)

	AdIntegrityFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ad_integrity_failures_total",
			Help:      "Ads selected whose backing clip could not be resolved",
		},
		[]string{"cause"}, // clip_not_found, clip_lookup_error
	)

	// Token validation
	TokenValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_validations_total",
			Help:      "Token validation results",
		},
		[]string{"result"}, // valid, expired, revoked, malformed
	)

	// Activity publishing
	ActivitiesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activities_published_total",
			Help:      "Activity events handed to the broker",
		},
		[]string{"result"},
	)

	PublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "activity_publish_duration_seconds",
			Help:      "Latency of activity publishes to JetStream",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// Clip storage
	ClipStoreRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clipstore_requests_total",
			Help:      "Clip storage lookups by status",
		},
		[]string{"status"}, // ok, not_found, error, rejected
	)

	ClipStoreDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "clipstore_request_duration_seconds",
			Help:      "Latency of clip storage lookups",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// Catalog
	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_query_duration_seconds",
			Help:      "Duration of DuckDB catalog queries",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	CatalogQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_query_errors_total",
			Help:      "DuckDB catalog query failures",
		},
		[]string{"query"},
	)

	// Circuit breakers: 0=closed, 1=half-open, 2=open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Role directory decision cache
	RoleCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "role_cache_hits_total",
			Help:      "Role directory lookups served from the decision cache",
		},
	)

	RoleCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "role_cache_misses_total",
			Help:      "Role directory lookups evaluated by the enforcer",
		},
	)

	// Ops HTTP surface
	OpsRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ops_request_duration_seconds",
			Help:      "Ops HTTP request latency by route pattern",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 2.5},
		},
		[]string{"method", "route", "status"},
	)

	OpsRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ops_requests_in_flight",
			Help:      "Ops HTTP requests currently being served",
		},
	)
)

// RecordAccess counts one access core outcome.
func RecordAccess(operation, outcome string) {
	AccessDecisions.WithLabelValues(operation, outcome).Inc()
}

// RecordRuleDecision counts one movie-access rule evaluation.
func RecordRuleDecision(allowed bool, reason string) {
	a := "false"
	if allowed {
		a = "true"
	}
	RuleDecisions.WithLabelValues(a, reason).Inc()
}

// RecordRoleLookup counts one membership query.
func RecordRoleLookup(role string, member bool, err error) {
	result := "not_member"
	switch {
	case err != nil:
		result = "error"
	case member:
		result = "member"
	}
	RoleLookups.WithLabelValues(role, result).Inc()
}

func RecordAdIntegrityFailure(cause string) {
	AdIntegrityFailures.WithLabelValues(cause).Inc()
}

func RecordTokenValidation(result string) {
	TokenValidations.WithLabelValues(result).Inc()
}

// RecordPublish records the outcome and latency of one activity publish.
func RecordPublish(duration time.Duration, err error) {
	PublishDuration.Observe(duration.Seconds())
	if err != nil {
		ActivitiesPublished.WithLabelValues("error").Inc()
		return
	}
	ActivitiesPublished.WithLabelValues("ok").Inc()
}

func RecordClipStoreRequest(status string, duration time.Duration) {
	ClipStoreRequests.WithLabelValues(status).Inc()
	ClipStoreDuration.Observe(duration.Seconds())
}

// RecordCatalogQuery records a catalog query; err marks it failed.
func RecordCatalogQuery(query string, duration time.Duration, err error) {
	CatalogQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
	if err != nil {
		CatalogQueryErrors.WithLabelValues(query).Inc()
	}
}

// SetCircuitBreakerState exports a breaker state; state follows gobreaker's
// ordering (closed, half-open, open).
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

func RecordRoleCache(hit bool) {
	if hit {
		RoleCacheHits.Inc()
		return
	}
	RoleCacheMisses.Inc()
}

// TrackOpsRequest moves the in-flight gauge up on start and down on finish.
func TrackOpsRequest(start bool) {
	if start {
		OpsRequestsInFlight.Inc()
		return
	}
	OpsRequestsInFlight.Dec()
}

// RecordOpsRequest observes one served ops request. route is the chi pattern,
// not the raw path, to keep label cardinality bounded.
func RecordOpsRequest(method, route, status string, duration time.Duration) {
	OpsRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}
