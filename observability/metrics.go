// Package observability provides Prometheus instrumentation for the
// memory pipeline and the gateway.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements memory.MetricsHook and carries the gateway gauges.
// Create one per process with NewMetrics.
type Metrics struct {
	registry *prometheus.Registry

	turnsProcessed    prometheus.Counter
	summarizeDuration prometheus.Histogram
	summarizeFailures prometheus.Counter
	factsStored       *prometheus.CounterVec
	factsDeduped      *prometheus.CounterVec
	contextDuration   prometheus.Histogram
	bufferDepth       prometheus.Gauge
	windowDepth       prometheus.Gauge

	// ActiveSessions tracks open gateway sessions.
	ActiveSessions prometheus.Gauge
	// WSMessages counts websocket messages by direction ("in", "out").
	WSMessages *prometheus.CounterVec
}

// NewMetrics registers all instruments on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		turnsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "mira_turns_processed_total",
			Help: "Conversation turns accepted into the buffer.",
		}),
		summarizeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mira_summarize_duration_seconds",
			Help:    "Latency of batch summarization calls.",
			Buckets: prometheus.DefBuckets,
		}),
		summarizeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "mira_summarize_failures_total",
			Help: "Summarization calls that produced the failure digest.",
		}),
		factsStored: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mira_facts_stored_total",
			Help: "Facts persisted to long-term storage.",
		}, []string{"category"}),
		factsDeduped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mira_facts_deduplicated_total",
			Help: "Facts skipped as near-duplicates of stored ones.",
		}, []string{"category"}),
		contextDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mira_context_assembly_duration_seconds",
			Help:    "Latency of full context assembly including retrieval.",
			Buckets: prometheus.DefBuckets,
		}),
		bufferDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mira_turn_buffer_depth",
			Help: "Turns currently held in the short-term buffer.",
		}),
		windowDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mira_summary_window_depth",
			Help: "Digests currently held in the summary window.",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mira_active_sessions",
			Help: "Open gateway sessions.",
		}),
		WSMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mira_ws_messages_total",
			Help: "Websocket messages by direction.",
		}, []string{"direction"}),
	}
}

// TurnProcessed implements memory.MetricsHook.
func (m *Metrics) TurnProcessed() { m.turnsProcessed.Inc() }

// SummarizeObserved implements memory.MetricsHook.
func (m *Metrics) SummarizeObserved(d time.Duration, failed bool) {
	m.summarizeDuration.Observe(d.Seconds())
	if failed {
		m.summarizeFailures.Inc()
	}
}

// FactStored implements memory.MetricsHook.
func (m *Metrics) FactStored(category string) {
	m.factsStored.WithLabelValues(category).Inc()
}

// FactDeduplicated implements memory.MetricsHook.
func (m *Metrics) FactDeduplicated(category string) {
	m.factsDeduped.WithLabelValues(category).Inc()
}

// ContextAssembled implements memory.MetricsHook.
func (m *Metrics) ContextAssembled(d time.Duration) {
	m.contextDuration.Observe(d.Seconds())
}

// Depths implements memory.MetricsHook.
func (m *Metrics) Depths(buffer, window int) {
	m.bufferDepth.Set(float64(buffer))
	m.windowDepth.Set(float64(window))
}

// Handler exposes the registry for a /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
