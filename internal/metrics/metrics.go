// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vl4dimr/tesis-system-unap/internal/types"
)

// Job outcomes
const (
	OutcomeOK         = "ok"
	OutcomeError      = "error"
	OutcomeOverloaded = "overloaded"
	OutcomeTimeout    = "timeout"
)

// Metrics holds every collector on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	jobsTotal    *prometheus.CounterVec
	jobDuration  *prometheus.HistogramVec
	queueDepth   prometheus.Gauge
	workersBusy  prometheus.Gauge
	findings     *prometheus.CounterVec
	compliance   prometheus.Histogram
	cacheResults *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New(service, version string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	labels := prometheus.Labels{"service": service, "version": version}
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		jobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "document_jobs_total",
			Help:        "Validation and formatting jobs by outcome",
			ConstLabels: labels,
		}, []string{"kind", "outcome"}),
		jobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "document_job_duration_seconds",
			Help:        "Time a job held a worker",
			ConstLabels: labels,
			Buckets:     []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "document_queue_depth",
			Help:        "Jobs waiting for a worker",
			ConstLabels: labels,
		}),
		workersBusy: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "document_workers_busy",
			Help:        "Workers currently running a job",
			ConstLabels: labels,
		}),
		findings: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "validation_findings_total",
			Help:        "Findings emitted by validation",
			ConstLabels: labels,
		}, []string{"severity", "valid"}),
		compliance: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "validation_compliance_percentage",
			Help:        "Compliance percentage of validated documents",
			ConstLabels: labels,
			Buckets:     []float64{10, 25, 50, 75, 90, 95, 99, 100},
		}),
		cacheResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "report_cache_operations_total",
			Help:        "Report cache lookups by result",
			ConstLabels: labels,
		}, []string{"operation", "result"}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveJob records a finished or rejected job.
func (m *Metrics) ObserveJob(kind, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.jobsTotal.WithLabelValues(kind, outcome).Inc()
	if outcome == OutcomeOK || outcome == OutcomeError {
		m.jobDuration.WithLabelValues(kind).Observe(d.Seconds())
	}
}

// SetQueueDepth sets the number of waiting jobs.
func (m *Metrics) SetQueueDepth(n int64) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

// AddBusyWorkers moves the busy worker gauge by delta.
func (m *Metrics) AddBusyWorkers(delta int) {
	if m == nil {
		return
	}
	m.workersBusy.Add(float64(delta))
}

// ObserveReport records the findings and percentage of a report.
func (m *Metrics) ObserveReport(r *types.ValidationReport) {
	if m == nil || r == nil {
		return
	}
	for _, f := range r.Findings {
		m.findings.WithLabelValues(string(f.Severity), strconv.FormatBool(f.Valid)).Inc()
	}
	m.compliance.Observe(r.Percentage)
}

// ObserveCache records a cache operation result such as "hit", "miss" or "error".
func (m *Metrics) ObserveCache(operation, result string) {
	if m == nil {
		return
	}
	m.cacheResults.WithLabelValues(operation, result).Inc()
}
