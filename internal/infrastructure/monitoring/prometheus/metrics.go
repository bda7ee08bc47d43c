// Package prometheus registers and records the engine's operational metrics.
package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "compliance_engine"

// EngineMetrics holds every metric the engine emits.  It satisfies the
// application layer's metrics recorder and is shared with the HTTP
// middleware.
type EngineMetrics struct {
	registry *prometheus.Registry

	generationRuns     prometheus.Counter
	generationDuration prometheus.Histogram
	obligationsCreated prometheus.Counter
	obligationsExisted prometheus.Counter
	templateSkips      *prometheus.CounterVec
	completions        prometheus.Counter
	healthScores       prometheus.Histogram

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewEngineMetrics builds and registers all engine metrics on a fresh
// registry, alongside the standard Go and process collectors.
func NewEngineMetrics() *EngineMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &EngineMetrics{
		registry: registry,
		generationRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_runs_total",
			Help:      "Obligation generation runs executed.",
		}),
		generationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Duration of obligation generation runs.",
			Buckets:   prometheus.DefBuckets,
		}),
		obligationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "obligations_created_total",
			Help:      "Obligations newly created by generation runs.",
		}),
		obligationsExisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "obligations_existing_total",
			Help:      "Obligations already present when generation ran.",
		}),
		templateSkips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "template_skips_total",
			Help:      "Templates skipped during generation, by reason code.",
		}, []string{"code"}),
		completions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "obligations_completed_total",
			Help:      "Obligations marked completed.",
		}),
		healthScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "health_score",
			Help:      "Distribution of computed entity health scores.",
			Buckets:   []float64{0, 10, 25, 40, 55, 70, 80, 90, 100},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.generationRuns,
		m.generationDuration,
		m.obligationsCreated,
		m.obligationsExisted,
		m.templateSkips,
		m.completions,
		m.healthScores,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// RecordGenerationRun records the outcome of one generation run.
func (m *EngineMetrics) RecordGenerationRun(duration time.Duration, generated, existing, skipped int) {
	m.generationRuns.Inc()
	m.generationDuration.Observe(duration.Seconds())
	m.obligationsCreated.Add(float64(generated))
	m.obligationsExisted.Add(float64(existing))
	_ = skipped // skips are counted per-code via RecordSkip
}

// RecordSkip counts one skipped template by reason code.
func (m *EngineMetrics) RecordSkip(code string) {
	m.templateSkips.WithLabelValues(code).Inc()
}

// RecordObligationCompleted counts one completion.
func (m *EngineMetrics) RecordObligationCompleted() {
	m.completions.Inc()
}

// ObserveHealthScore records a computed health score.
func (m *EngineMetrics) ObserveHealthScore(score int) {
	m.healthScores.Observe(float64(score))
}

// RecordHTTPRequest records one served HTTP request.
func (m *EngineMetrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler returns the exposition endpoint for this registry.
func (m *EngineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
