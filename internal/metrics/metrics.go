// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics holds the Prometheus collectors exported on /metrics.
// Implements: observability counters for ranking, sync, the CMS client, and
// the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ranking
	RankingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_hub_rankings_total",
			Help: "Rankings computed, by kind (related, popular).",
		},
		[]string{"kind"},
	)

	RankingCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_hub_ranking_candidates",
			Help:    "Candidate pool size per related ranking.",
			Buckets: []float64{0, 5, 10, 20, 50, 100, 250, 500},
		},
	)

	SkippedCandidates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "content_hub_skipped_candidates_total",
			Help: "Malformed candidates left out of related rankings.",
		},
	)

	// Sync
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_hub_sync_duration_seconds",
			Help:    "Duration of full CMS syncs.",
			Buckets: prometheus.DefBuckets,
		},
	)

	SyncItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_hub_sync_items_total",
			Help: "Articles processed by sync, by outcome (upserted, unchanged, failed, deleted).",
		},
		[]string{"outcome"},
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "content_hub_sync_last_success_timestamp",
			Help: "Unix time of the last successful sync.",
		},
	)

	// CMS client
	CMSRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_hub_cms_requests_total",
			Help: "Requests sent to the CMS API, by endpoint and status code.",
		},
		[]string{"endpoint", "status"},
	)

	CMSRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "content_hub_cms_request_duration_seconds",
			Help:    "CMS API request latency, including retries.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "content_hub_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open).",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_hub_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker, by result (success, failure, rejected).",
		},
		[]string{"name", "result"},
	)

	// HTTP API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_hub_api_requests_total",
			Help: "HTTP requests served, by method, route, and status.",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "content_hub_api_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RevalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_hub_revalidations_total",
			Help: "Webhook revalidations, by event type and result.",
		},
		[]string{"type", "result"},
	)
)

// RecordRanking records one related ranking over pool candidates, of which
// skipped were malformed.
func RecordRanking(pool, skipped int) {
	RankingsTotal.WithLabelValues("related").Inc()
	RankingCandidates.Observe(float64(pool))
	SkippedCandidates.Add(float64(skipped))
}

// RecordPopular records one popularity ranking.
func RecordPopular() {
	RankingsTotal.WithLabelValues("popular").Inc()
}

// RecordSync records a completed sync.
func RecordSync(duration time.Duration, upserted, unchanged, failed, deleted int, err error) {
	SyncDuration.Observe(duration.Seconds())
	SyncItems.WithLabelValues("upserted").Add(float64(upserted))
	SyncItems.WithLabelValues("unchanged").Add(float64(unchanged))
	SyncItems.WithLabelValues("failed").Add(float64(failed))
	SyncItems.WithLabelValues("deleted").Add(float64(deleted))
	if err == nil {
		SyncLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordCMSRequest records one CMS API call. A status of 0 means no response
// was received.
func RecordCMSRequest(endpoint string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	CMSRequests.WithLabelValues(endpoint, label).Inc()
	CMSRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordAPIRequest records one served HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRevalidation records one webhook event.
func RecordRevalidation(eventType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	RevalidationsTotal.WithLabelValues(eventType, result).Inc()
}
