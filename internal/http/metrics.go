package http

import (
	"errors"
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-wetta-dashboard/internal/connectors/weatherdb"
)

const metricsNamespace = "wetta"

// Metrics holds the Prometheus collectors of the dashboard. Each instance
// owns its registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	inFlightRequests    prometheus.Gauge

	dbQueryDuration *prometheus.HistogramVec
	dbQueryErrors   *prometheus.CounterVec

	latestReadingAge prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	auto := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests handled by this app.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		inFlightRequests: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "In-flight HTTP requests currently served by this app.",
		}),
		dbQueryDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Weather database query duration in seconds by operation.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		dbQueryErrors: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Weather database query errors by operation.",
		}, []string{"operation"}),
		latestReadingAge: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "latest_reading_age_seconds",
			Help:      "Age of the newest station reading at the last poll.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() nethttp.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveQuery records one weather database query. It satisfies
// weatherdb.QueryObserver.
func (m *Metrics) ObserveQuery(operation string, elapsed time.Duration, err error) {
	m.dbQueryDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if err != nil && !errors.Is(err, weatherdb.ErrNoReading) {
		m.dbQueryErrors.WithLabelValues(operation).Inc()
	}
}

// ObserveReadingTime updates the freshness gauge from a reading timestamp.
func (m *Metrics) ObserveReadingTime(at time.Time) {
	m.latestReadingAge.Set(time.Since(at).Seconds())
}

func (m *Metrics) observabilityMiddleware(next nethttp.Handler) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		start := time.Now()
		m.inFlightRequests.Inc()
		defer m.inFlightRequests.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: nethttp.StatusOK}
		next.ServeHTTP(rec, r)

		route := normalizeMetricPath(r.URL.Path)
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// normalizeMetricPath keeps label cardinality bounded: unknown paths
// collapse into one series.
func normalizeMetricPath(path string) string {
	switch path {
	case "/", "/metrics", "/health", "/ready", "/favicon.ico",
		"/api/v1/layout", "/api/v1/current", "/api/v1/range", "/api/v1/history",
		"/api/v1/status/services", "/charts/temperature.svg", "/charts/rain.svg":
		return path
	default:
		return "other"
	}
}
