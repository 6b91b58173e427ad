package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SavedProjectOps counts save/unsave attempts by outcome.
	SavedProjectOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capsort_saved_project_ops_total",
		Help: "Total saved-project operations by operation and outcome",
	}, []string{"op", "outcome"})

	// ListingRequests counts listing requests by scope and cache result.
	ListingRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capsort_listing_requests_total",
		Help: "Total project listing requests by scope and cache result",
	}, []string{"scope", "cache"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "capsort_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capsort_redis_errors_total",
		Help: "Total number of Redis errors by operation",
	}, []string{"operation"})
)

// Outcome labels for SavedProjectOps.
const (
	OutcomeOK        = "ok"
	OutcomeConflict  = "conflict"
	OutcomeNotFound  = "not_found"
	OutcomeError     = "error"
	OutcomeForbidden = "forbidden"
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
