package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for loads and HTTP.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	loadDuration      prometheus.Histogram
	loadsTotal        *prometheus.CounterVec
	rowsTotal         *prometheus.CounterVec
	intervalsTotal    *prometheus.CounterVec
	duplicatesTotal   *prometheus.CounterVec
	rosterSize        *prometheus.GaugeVec
	lastLoadTimestamp prometheus.Gauge
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "roster_load_duration_seconds",
			Help:    "Duration of roster loads",
			Buckets: prometheus.DefBuckets,
		}),
		loadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_loads_total",
			Help: "Roster loads by outcome",
		}, []string{"outcome"}),
		rowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_rows_total",
			Help: "Rows read from the input sources",
		}, []string{"kind"}),
		intervalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_intervals_total",
			Help: "Availability windows parsed, by result",
		}, []string{"result"}),
		duplicatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_duplicates_total",
			Help: "Identity keys submitted more than once",
		}, []string{"kind"}),
		rosterSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "roster_records",
			Help: "Records in the current roster",
		}, []string{"kind"}),
		lastLoadTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roster_last_load_timestamp_seconds",
			Help: "Unix time of the last successful load",
		}),
	}

	registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.loadDuration, m.loadsTotal, m.rowsTotal, m.intervalsTotal,
		m.duplicatesTotal, m.rosterSize, m.lastLoadTimestamp,
		collectors.NewGoCollector(),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveLoadFailure counts a failed load.
func (m *MetricsService) ObserveLoadFailure(duration time.Duration) {
	if m == nil {
		return
	}
	m.loadDuration.Observe(duration.Seconds())
	m.loadsTotal.WithLabelValues("failure").Inc()
}

// ObserveLoad records a successful load and the resulting roster size.
func (m *MetricsService) ObserveLoad(summary LoadSummary, duration time.Duration) {
	if m == nil {
		return
	}
	m.loadDuration.Observe(duration.Seconds())
	m.loadsTotal.WithLabelValues("success").Inc()
	m.rowsTotal.WithLabelValues("student").Add(float64(summary.StudentRows))
	m.rowsTotal.WithLabelValues("teacher").Add(float64(summary.TeacherRows))
	m.intervalsTotal.WithLabelValues("accepted").Add(float64(summary.AcceptedIntervals))
	m.intervalsTotal.WithLabelValues("rejected").Add(float64(summary.RejectedIntervals))
	m.duplicatesTotal.WithLabelValues("student").Add(float64(summary.DuplicateStudents))
	m.duplicatesTotal.WithLabelValues("teacher").Add(float64(summary.DuplicateTeachers))
	m.rosterSize.WithLabelValues("student").Set(float64(summary.Students))
	m.rosterSize.WithLabelValues("teacher").Set(float64(summary.Teachers))
	m.lastLoadTimestamp.Set(float64(summary.LoadedAt.Unix()))
}
