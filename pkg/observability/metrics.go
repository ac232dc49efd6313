package observability

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Search metrics
	SearchesTotal  *prometheus.CounterVec
	SearchDuration *prometheus.HistogramVec

	// Compiler metrics
	CompileErrorsTotal *prometheus.CounterVec

	// Executor metrics
	ExecutorQueriesTotal  *prometheus.CounterVec
	ExecutorQueryDuration *prometheus.HistogramVec
	ExecutorErrorsTotal   *prometheus.CounterVec

	// Result cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,

		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recordsearch_searches_total",
				Help: "Total number of search calls by record type and status",
			},
			[]string{"record_type", "status"},
		),
		SearchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recordsearch_search_duration_seconds",
				Help:    "Search call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"record_type"},
		),

		CompileErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recordsearch_compile_errors_total",
				Help: "Total number of condition compilation failures by reason",
			},
			[]string{"reason"},
		),

		ExecutorQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recordsearch_executor_queries_total",
				Help: "Total number of executor queries by table and finder",
			},
			[]string{"table", "finder"},
		),
		ExecutorQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recordsearch_executor_query_duration_seconds",
				Help:    "Executor query duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"table"},
		),
		ExecutorErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recordsearch_executor_errors_total",
				Help: "Total number of executor query failures by table",
			},
			[]string{"table"},
		),

		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "recordsearch_cache_hits_total",
				Help: "Total number of result cache hits",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "recordsearch_cache_misses_total",
				Help: "Total number of result cache misses",
			},
		),

		DBConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "recordsearch_db_connections_active",
				Help: "Number of database connections currently in use",
			},
		),
		DBConnectionsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "recordsearch_db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
	}

	registry.MustRegister(
		m.SearchesTotal,
		m.SearchDuration,
		m.CompileErrorsTotal,
		m.ExecutorQueriesTotal,
		m.ExecutorQueryDuration,
		m.ExecutorErrorsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
	)

	return m
}

// Handler returns an HTTP handler serving the metrics registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CollectDBStats snapshots connection pool statistics into the DB gauges.
func (m *Metrics) CollectDBStats(db *sql.DB) {
	stats := db.Stats()
	m.DBConnectionsActive.Set(float64(stats.InUse))
	m.DBConnectionsIdle.Set(float64(stats.Idle))
}
