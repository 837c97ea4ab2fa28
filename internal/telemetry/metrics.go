// Package telemetry provides application-level observability for the back office.
//
// All metrics are registered against the default Prometheus registry and are
// served on the side-channel HTTP server started by main.go:
//
//	GET http(s)://<host>:<PAW_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090. The endpoint returns the Prometheus text exposition
// format and is intended to be scraped every 15–60 seconds. It is NOT served
// by the Gin router and is therefore absent from the public API surface.
//
// HTTP metrics use c.FullPath() (route template such as
// /api/v1/admin/moderation/bulk) rather than the raw request URL to prevent
// unbounded label cardinality from user-supplied path segments.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics — labelled by method, route template, and status code.
//
// Example PromQL queries:
//   - Request rate (req/s, 5 m window):  rate(http_requests_total[5m])
//   - Error rate (%):                    sum(rate(http_requests_total{status=~"5.."}[5m])) / sum(rate(http_requests_total[5m])) * 100
//   - p99 latency per route:             histogram_quantile(0.99, sum by (path, le) (rate(http_request_duration_seconds_bucket[5m])))
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Audit pipeline metrics.
//
// AuditWritesTotal is a CounterVec with label {outcome}:
//   - "direct":  the entry landed in audit_logs on the first attempt
//   - "queued":  the primary write failed and the entry fell back to audit_queue
//   - "failed":  both the primary write and the queue write failed
//
// An alert on rate(audit_writes_total{outcome="queued"}[5m]) > 0 catches audit
// sink degradation before any data is at risk; outcome="failed" means the
// bounded-loss policy is in play and deserves a page.
//
// AuditQueueProcessedTotal counts entries successfully migrated from the queue
// into audit_logs by the drain job. AuditQueueDroppedTotal counts entries
// deleted after exhausting their retry budget — this is the explicit data-loss
// counter, normally flat at zero.
var (
	AuditWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_writes_total",
			Help: "Total number of audit write attempts, by outcome (direct, queued, failed).",
		},
		[]string{"outcome"},
	)

	AuditQueueProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_queue_processed_total",
			Help: "Total number of queued audit entries successfully migrated into the audit log.",
		},
	)

	AuditQueueDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_queue_dropped_total",
			Help: "Total number of queued audit entries dropped after exceeding the retry budget.",
		},
	)

	AuditQueueDrainDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "audit_queue_drain_duration_seconds",
			Help:    "Duration of a single audit queue drain pass.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Bulk moderation metrics.
//
// BulkItemsTotal is a CounterVec with labels {operation, outcome}. outcome is
// "success" or "failure" and is recorded once per target, so the counter sums
// to the number of items ever submitted through the bulk endpoint.
//
// Example PromQL queries:
//   - Item failure ratio: sum(rate(bulk_items_total{outcome="failure"}[1h])) / sum(rate(bulk_items_total[1h]))
var (
	BulkItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulk_items_total",
			Help: "Total number of bulk moderation items processed, by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	BulkOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bulk_operation_duration_seconds",
			Help:    "Duration of whole bulk moderation calls, by operation.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)
)

// DBOpenConnections is a Gauge that tracks the number of open connections
// currently held by the sql.DB connection pool. It is sampled every 30 seconds
// by StartDBStatsCollector rather than per-request to avoid the overhead of
// sql.DB.Stats().
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector launches a background goroutine that samples sql.DB
// connection pool statistics every 30 seconds and updates the
// DBOpenConnections gauge. The goroutine exits cleanly when the database
// becomes unreachable (db.Ping fails), which happens automatically when the
// application shuts down and defers db.Close().
//
// Call this once, immediately after db.Connect() succeeds in main.go:
//
//	telemetry.StartDBStatsCollector(database)
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	}()
}
