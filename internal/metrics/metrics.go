// Package metrics exposes Prometheus collectors for path searches.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes.
const (
	ResultFound       = "found"
	ResultUnreachable = "unreachable"
	ResultInvalid     = "invalid_input"
)

var (
	// SearchTotal counts searches by outcome.
	SearchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pathtracer_search_total",
		Help: "Total path searches by result",
	}, []string{"result"})

	// SearchDuration tracks search latency.
	SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pathtracer_search_duration_seconds",
		Help:    "Path search duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 14), // 10us to ~80ms
	})

	// ExpandedNodes tracks closed-set size per search.
	ExpandedNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pathtracer_search_expanded_nodes",
		Help:    "Nodes expanded per path search",
		Buckets: prometheus.ExponentialBuckets(1, 4, 9), // 1 to 65536
	})

	// PathLength tracks tiles per found path.
	PathLength = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pathtracer_path_length_tiles",
		Help:    "Tiles per found path",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200},
	})

	// CacheLookups counts path cache hits and misses.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pathtracer_cache_lookups_total",
		Help: "Path cache lookups by outcome",
	}, []string{"outcome"}) // "hit" or "miss"
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
