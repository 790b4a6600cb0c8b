// Package middleware provides cross-cutting concerns for the classification engine.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/personakit/go-persona/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It provides real-time monitoring of classification throughput, outcome
// distribution, and pipeline performance.
type PrometheusMetrics struct {
	classifications      *prometheus.CounterVec
	classificationErrors *prometheus.CounterVec
	pipelineLatency      *prometheus.HistogramVec
	operationCounter     *prometheus.CounterVec
	sessionGauges        *prometheus.GaugeVec
	scoreDistribution    *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and registers
// all required metrics with the given registerer. Pass
// prometheus.DefaultRegisterer for the global registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		classifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "persona_classifications_total",
				Help: "Total number of completed classifications by catalog and primary persona.",
			},
			[]string{"catalog", "primary_persona"},
		),
		classificationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "persona_classification_errors_total",
				Help: "Total number of failed classification runs.",
			},
			[]string{"catalog"},
		),
		pipelineLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "persona_pipeline_duration_seconds",
				Help:    "Execution time of classification pipeline operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "catalog"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "persona_operations_total",
				Help: "Total number of engine operations by name and status.",
			},
			[]string{"operation", "status", "catalog"},
		),
		sessionGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "persona_session_state",
				Help: "Current session state values such as active session counts.",
			},
			[]string{"metric", "catalog"},
		),
		scoreDistribution: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "persona_score_distribution",
				Help:    "Distribution of winning persona scores across classifications.",
				Buckets: prometheus.LinearBuckets(0, 5, 20),
			},
			[]string{"catalog", "persona"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.pipelineLatency.WithLabelValues(operation, catalogLabel(labels)).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters. The classification outcome metrics emitted by the
// engine map onto dedicated counters; everything else lands in the
// general operation counter.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	catalog := catalogLabel(labels)

	switch metric {
	case "classifications_total":
		pm.classifications.WithLabelValues(catalog, labels["primary_persona"]).Add(value)
	case "classification_errors_total":
		pm.classificationErrors.WithLabelValues(catalog).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, "success", catalog).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.sessionGauges.WithLabelValues(metric, catalogLabel(labels)).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram. Score observations carry a persona
// label; other metrics fall back to the pipeline latency histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	catalog := catalogLabel(labels)

	if metric == "primary_persona_score" {
		pm.scoreDistribution.WithLabelValues(catalog, labels["persona"]).Observe(value)
		return
	}
	pm.pipelineLatency.WithLabelValues(metric, catalog).Observe(value)
}

func catalogLabel(labels map[string]string) string {
	if catalog, ok := labels["catalog"]; ok {
		return catalog
	}
	return "unknown"
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
