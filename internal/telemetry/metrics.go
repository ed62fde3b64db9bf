// Package telemetry provides application-level observability for the QForma server.
//
// # Prometheus Metrics Endpoint
//
// All metrics are registered against the default Prometheus registry and are
// automatically available on the side-channel HTTP server started by main.go:
//
//	GET http(s)://<host>:<QF_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090.  The endpoint returns data in the Prometheus text exposition
// format and is intended to be scraped by a Prometheus server every 15–60 seconds.
// It is NOT served by the Gin router.
//
// # Metric Groups
//
//   - HTTP request counters and latency histograms (labelled by route template, not raw URL)
//   - Permission check counters (by role and outcome)
//   - Invitation lifecycle counters
//   - Test execution counters (by result)
//   - Database connection pool gauge (polled every 30 s)
//
// # Label Cardinality
//
// HTTP metrics use c.FullPath() (route template such as /api/projects/:id)
// rather than the raw request URL to prevent unbounded label cardinality from
// user-supplied path segments. Role and permission labels are drawn from closed
// catalogs, so their cardinality is bounded by construction.
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
// HTTPRequestsTotal is a CounterVec with labels {method, path, status}.
// The path label holds the Gin route template, NOT the raw URL.
//
// Example PromQL queries:
//   - Request rate (req/s, 5 m window):  rate(http_requests_total[5m])
//   - Error rate (%):                    sum(rate(http_requests_total{status=~"5.."}[5m])) / sum(rate(http_requests_total[5m])) * 100
//
// HTTPRequestDuration is a HistogramVec with labels {method, path} and
// exponential-ish buckets from 5 ms to 30 s.
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

// PermissionChecksTotal counts permission checks made by the RBAC middleware,
// labelled by role, permission key, and outcome ("allowed"/"denied"). Both
// label sets come from closed catalogs, so cardinality stays bounded.
//
// Example PromQL queries:
//   - Denial rate by role:        sum by (role) (rate(permission_checks_total{outcome="denied"}[1h]))
//   - Hot permissions:            topk(5, sum by (permission) (rate(permission_checks_total[1h])))
var PermissionChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "permission_checks_total",
		Help: "Total number of permission checks, by role, permission key, and outcome.",
	},
	[]string{"role", "permission", "outcome"},
)

// Invitation lifecycle counters.
//
// InvitationsCreatedTotal increments once per invitation created.
// InvitationsAcceptedTotal increments once per successful token acceptance.
// InvitationsExpiredTotal increments once per invitation transitioned to
// expired by the background expiry job.
var (
	InvitationsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invitations_created_total",
			Help: "Total number of member invitations created.",
		},
	)

	InvitationsAcceptedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invitations_accepted_total",
			Help: "Total number of member invitations accepted.",
		},
	)

	InvitationsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invitations_expired_total",
			Help: "Total number of pending invitations expired by the background job.",
		},
	)
)

// TestExecutionsRecordedTotal counts recorded test executions by result
// (pass, fail, blocked).
//
// Example PromQL queries:
//   - Failure share:  sum(rate(test_executions_recorded_total{result="fail"}[1d])) / sum(rate(test_executions_recorded_total[1d]))
var TestExecutionsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "test_executions_recorded_total",
		Help: "Total number of test executions recorded, by result.",
	},
	[]string{"result"},
)

// DBOpenConnections is a Gauge that tracks the number of open connections currently
// held by the sql.DB connection pool.  It is sampled every 30 seconds by
// StartDBStatsCollector rather than per-request to avoid the overhead of sql.DB.Stats().
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector launches a background goroutine that samples sql.DB connection
// pool statistics every 30 seconds and updates the DBOpenConnections gauge.
// The goroutine exits cleanly when the database becomes unreachable (db.Ping fails),
// which happens automatically when the application shuts down and defers db.Close().
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
