// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package metrics registers Sommelier's Prometheus collectors with the
// default registry. The serve command exposes them on /metrics; one-shot
// CLI commands record into them and exit.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recommendation paths.
const (
	PathRanked   = "ranked"
	PathBackfill = "backfill"
	PathRandom   = "random"
)

var (
	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sommelier_recommendations_total",
			Help: "Products returned by the recommender, by how they were selected",
		},
		[]string{"path"}, // "ranked", "backfill", "random"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sommelier_recommendation_duration_seconds",
			Help:    "Time to answer a recommendation request",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Preference Metrics
	FeedbackEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sommelier_feedback_events_total",
			Help: "Feedback events recorded",
		},
		[]string{"direction"},
	)

	PreferenceRecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sommelier_preference_recompute_duration_seconds",
			Help:    "Time to recompute one user's preference vector",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Catalog Metrics
	ProductsIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sommelier_products_ingested_total",
			Help: "CSV rows processed by ingestion, by result",
		},
		[]string{"result"}, // "added", "skipped", "failed"
	)

	CatalogProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sommelier_catalog_products",
			Help: "Products currently in the catalog",
		},
	)

	ConsistencyDriftTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sommelier_consistency_drift_total",
			Help: "Index operations that failed after the catalog was already updated",
		},
		[]string{"operation"},
	)

	// Embedding Metrics
	EmbeddingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sommelier_embedding_duration_seconds",
			Help:    "Time to embed one text, by provider",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"provider"},
	)

	EmbeddingErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sommelier_embedding_errors_total",
			Help: "Embedding failures, by provider",
		},
		[]string{"provider"},
	)

	EmbeddingCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sommelier_embedding_cache_total",
			Help: "Embedding cache lookups, by result",
		},
		[]string{"result"}, // "hit", "miss"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sommelier_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sommelier_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Vector Index Metrics
	VectorQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sommelier_vector_query_duration_seconds",
			Help:    "Nearest-neighbour query latency, by collection",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"collection"},
	)

	VectorCollectionSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sommelier_vector_collection_size",
			Help: "Vectors stored per collection",
		},
		[]string{"collection"},
	)

	// HTTP Metrics (serve command)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sommelier_http_requests_total",
			Help: "HTTP requests served, by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sommelier_http_request_duration_seconds",
			Help:    "HTTP request latency, by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sommelier_http_active_requests",
			Help: "HTTP requests currently being served",
		},
	)

	IndexGCRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sommelier_index_gc_runs_total",
			Help: "Value log GC passes over the index store, by result",
		},
		[]string{"result"}, // "rewritten", "noop", "error"
	)
)

// RecordRecommendation records one answered request.
func RecordRecommendation(duration time.Duration, ranked, backfill, random int) {
	RecommendationDuration.Observe(duration.Seconds())
	if ranked > 0 {
		RecommendationsTotal.WithLabelValues(PathRanked).Add(float64(ranked))
	}
	if backfill > 0 {
		RecommendationsTotal.WithLabelValues(PathBackfill).Add(float64(backfill))
	}
	if random > 0 {
		RecommendationsTotal.WithLabelValues(PathRandom).Add(float64(random))
	}
}

// RecordEmbedding records one embedding call.
func RecordEmbedding(provider string, duration time.Duration, err error) {
	EmbeddingDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if err != nil {
		EmbeddingErrors.WithLabelValues(provider).Inc()
	}
}

// RecordIngest records the outcome of an ingestion run.
func RecordIngest(added, skipped, failed int) {
	ProductsIngestedTotal.WithLabelValues("added").Add(float64(added))
	ProductsIngestedTotal.WithLabelValues("skipped").Add(float64(skipped))
	ProductsIngestedTotal.WithLabelValues("failed").Add(float64(failed))
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
