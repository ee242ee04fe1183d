// Package observability defines Prometheus metric vectors shared across the
// application.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parkhub_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "parkhub_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// EmailDeliveries counts outbound email attempts by kind and outcome.
	EmailDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parkhub_email_deliveries_total",
		Help: "Total outbound email attempts by kind and outcome",
	}, []string{"kind", "outcome"})

	// SlotApprovals counts approval workflow outcomes.
	SlotApprovals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parkhub_slot_approvals_total",
		Help: "Total slot request approval attempts by outcome",
	}, []string{"outcome"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
