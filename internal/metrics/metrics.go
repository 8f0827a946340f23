// Package metrics exposes Prometheus collectors for the web server, the
// services and the audit worker.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts HTTP requests by route pattern and status code.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "facturas_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "code"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "facturas_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	ActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "facturas_http_active_requests",
			Help: "Number of in-flight HTTP requests",
		},
	)

	// DocumentsIssued counts numbered invoices and estimates.
	DocumentsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "facturas_documents_issued_total",
			Help: "Invoices and estimates issued",
		},
		[]string{"kind"},
	)

	// NumberConflicts counts inserts that lost the race for a document number.
	NumberConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "facturas_number_conflicts_total",
			Help: "Document inserts retried after a duplicate number",
		},
		[]string{"kind"},
	)

	// ImportRows counts statement rows by outcome status.
	ImportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "facturas_import_rows_total",
			Help: "Bank statement rows processed by outcome",
		},
		[]string{"status"},
	)

	StatsLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "facturas_stats_loads_total",
			Help: "Dashboard aggregates computed from the database",
		},
		[]string{"chart"},
	)

	// RateLimited counts requests rejected with 429.
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "facturas_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter",
		},
	)

	SuspiciousRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "facturas_suspicious_requests_total",
			Help: "Requests matching a known probe pattern",
		},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "facturas_events_consumed_total",
			Help: "AMQP events handled by the audit worker",
		},
		[]string{"result"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument wraps h and records its requests under route.
func Instrument(route string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ActiveRequests.Inc()
		defer ActiveRequests.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		h.ServeHTTP(rec, r)

		RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		RequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
