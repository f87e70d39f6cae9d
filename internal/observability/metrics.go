// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Freet lifecycle transitions recorded by FreetTransitions.
const (
	TransitionCreated    = "created"
	TransitionEdited     = "edited"
	TransitionArchived   = "archived"
	TransitionUnarchived = "unarchived"
	TransitionDeleted    = "deleted"
	TransitionListing    = "listing_updated"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fritter_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records repository query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fritter_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FreetTransitions counts freet lifecycle transitions.
	FreetTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fritter_freet_transitions_total",
		Help: "Total freet lifecycle transitions by kind",
	}, []string{"transition"})

	// FreetsCreated counts created freets by type.
	FreetsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fritter_freets_created_total",
		Help: "Total freets created by freet type",
	}, []string{"freet_type"})

	// ListingPurchases counts completed purchases.
	ListingPurchases = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fritter_listing_purchases_total",
		Help: "Total merchant listings sold",
	})

	// ExpirySweeps counts sweeper runs by outcome.
	ExpirySweeps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fritter_expiry_sweeps_total",
		Help: "Total expiry sweeper runs by outcome",
	}, []string{"outcome"})

	// FreetsExpired counts freets the sweeper saw cross their expiration.
	FreetsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fritter_freets_expired_total",
		Help: "Total freets observed expiring by the sweeper",
	})

	// WebSocketConnectionsTotal is the gauge of active event stream connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fritter_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts events dropped for slow clients.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fritter_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordTransition increments the lifecycle counter for a transition.
func RecordTransition(transition string) {
	FreetTransitions.WithLabelValues(transition).Inc()
}
