// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "console"

var (
	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route", "status_code"},
	)

	// DBPoolConnections tracks database connection pool state.
	DBPoolConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "pool_connections",
			Help:      "Number of database connections by state",
		},
		[]string{"state"},
	)
)

// RecordDBPoolMetrics samples the pool and updates the connection gauges.
func RecordDBPoolMetrics(pool *pgxpool.Pool) {
	stats := pool.Stat()

	DBPoolConnections.WithLabelValues("in_use").Set(float64(stats.AcquiredConns()))
	DBPoolConnections.WithLabelValues("idle").Set(float64(stats.IdleConns()))
	DBPoolConnections.WithLabelValues("max").Set(float64(stats.MaxConns()))
}
