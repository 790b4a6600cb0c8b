// Package middleware contains the unit tests for the middleware package.
package middleware

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personakit/go-persona/internal/ports"
)

func newTestMetrics(t *testing.T) *PrometheusMetrics {
	t.Helper()
	// Each test gets its own registry so metric registration never
	// collides across tests in this package.
	return NewPrometheusMetrics(prometheus.NewRegistry())
}

func TestNewPrometheusMetrics(t *testing.T) {
	pm := newTestMetrics(t)

	require.NotNil(t, pm)
	assert.NotNil(t, pm.classifications)
	assert.NotNil(t, pm.classificationErrors)
	assert.NotNil(t, pm.pipelineLatency)
	assert.NotNil(t, pm.operationCounter)
	assert.NotNil(t, pm.sessionGauges)
	assert.NotNil(t, pm.scoreDistribution)

	var _ ports.MetricsCollector = pm
}

func TestPrometheusMetrics_RecordCounter(t *testing.T) {
	pm := newTestMetrics(t)

	pm.RecordCounter("classifications_total", 1, map[string]string{
		"catalog":         "quiz",
		"primary_persona": "idealist",
	})
	pm.RecordCounter("classifications_total", 1, map[string]string{
		"catalog":         "quiz",
		"primary_persona": "idealist",
	})
	pm.RecordCounter("classification_errors_total", 1, map[string]string{
		"catalog": "quiz",
	})
	pm.RecordCounter("custom_operation", 3, map[string]string{
		"catalog": "quiz",
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(
		pm.classifications.WithLabelValues("quiz", "idealist")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		pm.classificationErrors.WithLabelValues("quiz")))
	assert.Equal(t, 3.0, testutil.ToFloat64(
		pm.operationCounter.WithLabelValues("custom_operation", "success", "quiz")))
}

func TestPrometheusMetrics_RecordCounter_MissingCatalog(t *testing.T) {
	pm := newTestMetrics(t)

	pm.RecordCounter("classification_errors_total", 1, map[string]string{})

	assert.Equal(t, 1.0, testutil.ToFloat64(
		pm.classificationErrors.WithLabelValues("unknown")))
}

func TestPrometheusMetrics_RecordLatency(t *testing.T) {
	pm := newTestMetrics(t)

	pm.RecordLatency("classify", 120*time.Millisecond, map[string]string{"catalog": "quiz"})
	pm.RecordLatency("classify", 80*time.Millisecond, map[string]string{"catalog": "quiz"})

	count := testutil.CollectAndCount(pm.pipelineLatency)
	assert.Equal(t, 1, count, "both observations should land in one labeled series")
}

func TestPrometheusMetrics_RecordGauge(t *testing.T) {
	pm := newTestMetrics(t)

	pm.RecordGauge("active_sessions", 7, map[string]string{"catalog": "quiz"})
	assert.Equal(t, 7.0, testutil.ToFloat64(
		pm.sessionGauges.WithLabelValues("active_sessions", "quiz")))

	pm.RecordGauge("active_sessions", 4, map[string]string{"catalog": "quiz"})
	assert.Equal(t, 4.0, testutil.ToFloat64(
		pm.sessionGauges.WithLabelValues("active_sessions", "quiz")))
}

func TestPrometheusMetrics_RecordHistogram(t *testing.T) {
	pm := newTestMetrics(t)

	pm.RecordHistogram("primary_persona_score", 42, map[string]string{
		"catalog": "quiz",
		"persona": "idealist",
	})

	assert.Equal(t, 1, testutil.CollectAndCount(pm.scoreDistribution))
}
