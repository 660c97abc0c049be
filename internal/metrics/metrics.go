// Package metrics holds the Prometheus instruments exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendationRequests counts aggregate calls by strategy and outcome
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomlens_recommendation_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"strategy", "status"}, // status: "ok", "error"
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roomlens_recommendation_duration_seconds",
			Help:    "Duration of keyword aggregation in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	RecommendationResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roomlens_recommendation_results",
			Help:    "Number of products returned per recommendation request",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	// IndexPositionSkips counts neighbor positions with no catalog entry
	IndexPositionSkips = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roomlens_index_position_skips_total",
			Help: "Total number of vector index positions outside the catalog range",
		},
	)

	EmbeddingCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roomlens_embedding_cache_hits_total",
			Help: "Total number of query embedding cache hits",
		},
	)

	EmbeddingCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roomlens_embedding_cache_misses_total",
			Help: "Total number of query embedding cache misses",
		},
	)

	VisionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomlens_vision_requests_total",
			Help: "Total number of vision model calls",
		},
		[]string{"status"},
	)

	CatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roomlens_catalog_products",
			Help: "Number of products in the loaded catalog",
		},
	)

	IndexSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roomlens_index_vectors",
			Help: "Number of vectors in the loaded index",
		},
	)

	Reloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomlens_reloads_total",
			Help: "Total number of catalog and index reloads",
		},
		[]string{"status"},
	)
)
