// Package metrics provides Prometheus metrics collection for the HTTP
// surface, the storage gateway, and the scheduler.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every registered collector for the process.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	ErrorsTotal *prometheus.CounterVec

	DatabaseQueriesTotal  *prometheus.CounterVec
	DatabaseQueryDuration *prometheus.HistogramVec
	DatabasePoolOpen      prometheus.Gauge
	DatabasePoolInUse     prometheus.Gauge

	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec

	SchedulerJobRuns     *prometheus.CounterVec
	SchedulerJobDuration *prometheus.HistogramVec

	RateLimitRejections *prometheus.CounterVec
	AuthRejections      *prometheus.CounterVec
}

// New creates a Metrics instance and registers its collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds.",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		}),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "errors_total",
				Help: "Total number of handled errors by code.",
			},
			[]string{"code"},
		),
		DatabaseQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "database_queries_total",
				Help: "Total number of database queries by operation and status.",
			},
			[]string{"operation", "status"},
		),
		DatabaseQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "database_query_duration_seconds",
				Help:    "Database query duration in seconds.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation"},
		),
		DatabasePoolOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "database_pool_open_connections",
			Help: "Current number of open database connections.",
		}),
		DatabasePoolInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "database_pool_in_use_connections",
			Help: "Current number of database connections in use.",
		}),
		UpstreamRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_requests_total",
				Help: "Total number of upstream adapter requests by provider and status.",
			},
			[]string{"provider", "status"},
		),
		UpstreamRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "upstream_request_duration_seconds",
				Help:    "Upstream adapter request duration in seconds.",
				Buckets: []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"provider"},
		),
		SchedulerJobRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scheduler_job_runs_total",
				Help: "Total number of scheduler job runs by job and outcome.",
			},
			[]string{"job", "outcome"},
		),
		SchedulerJobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scheduler_job_duration_seconds",
				Help:    "Scheduler job duration in seconds.",
				Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300},
			},
			[]string{"job"},
		),
		RateLimitRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_rejections_total",
				Help: "Total number of requests rejected by the rate limiter by category.",
			},
			[]string{"category"},
		),
		AuthRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_rejections_total",
				Help: "Total number of requests rejected by the request gate by reason.",
			},
			[]string{"reason"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.RequestsTotal,
			m.RequestDuration,
			m.RequestsInFlight,
			m.ErrorsTotal,
			m.DatabaseQueriesTotal,
			m.DatabaseQueryDuration,
			m.DatabasePoolOpen,
			m.DatabasePoolInUse,
			m.UpstreamRequestsTotal,
			m.UpstreamRequestDuration,
			m.SchedulerJobRuns,
			m.SchedulerJobDuration,
			m.RateLimitRejections,
			m.AuthRejections,
		)
	}

	return m
}

// RecordHTTPRequest records the outcome of a single HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, d time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordDatabaseQuery records the outcome of a single database query.
func (m *Metrics) RecordDatabaseQuery(operation, status string, d time.Duration) {
	m.DatabaseQueriesTotal.WithLabelValues(operation, status).Inc()
	m.DatabaseQueryDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// SetPoolStats publishes the current connection pool occupancy.
func (m *Metrics) SetPoolStats(open, inUse int) {
	m.DatabasePoolOpen.Set(float64(open))
	m.DatabasePoolInUse.Set(float64(inUse))
}

// RecordUpstreamRequest records the outcome of a single upstream adapter call.
func (m *Metrics) RecordUpstreamRequest(provider, status string, d time.Duration) {
	m.UpstreamRequestsTotal.WithLabelValues(provider, status).Inc()
	m.UpstreamRequestDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordSchedulerJob records the outcome of a single scheduler job run.
func (m *Metrics) RecordSchedulerJob(job, outcome string, d time.Duration) {
	m.SchedulerJobRuns.WithLabelValues(job, outcome).Inc()
	m.SchedulerJobDuration.WithLabelValues(job).Observe(d.Seconds())
}

var (
	global   *Metrics
	globalMu sync.Mutex
)

// Init initializes the process-wide Metrics instance against the default
// Prometheus registerer, creating it once.
func Init() *Metrics {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = New(prometheus.DefaultRegisterer)
	}
	return global
}

// Global returns the process-wide Metrics instance, initializing a
// registry-less fallback if Init was never called (e.g. in unit tests).
func Global() *Metrics {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = New(nil)
	}
	return global
}
