package ports

import (
	"context"
	"time"

	"github.com/personakit/go-persona/internal/domain"
)

// MetricsCollector defines the interface for collecting operational
// metrics. Implementations should integrate with observability platforms
// like Prometheus, OpenTelemetry, or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like classifications completed,
	// guard rejections, errors, etc.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	// This is useful for tracking values like live sessions.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	// This is useful for tracking distributions like score spreads or
	// answered-question counts.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// CatalogSource defines the boundary to whatever system authors the
// question and persona content (a static content module, a CMS export,
// a file on disk). The engine only ever sees immutable, validated
// catalogs; fetching and authoring live behind this interface.
type CatalogSource interface {
	// Load reads the current catalog from the underlying source.
	// Implementations must return a fully validated catalog; corrupt
	// content fails here, at load time, not during classification.
	Load(ctx context.Context) (*domain.Catalog, error)

	// Watch monitors the source and calls the callback with a freshly
	// loaded catalog when the content changes. This enables hot-reload
	// without a restart; consumers must swap the catalog reference
	// atomically rather than editing a live catalog.
	// Returns a function to stop watching when called.
	Watch(ctx context.Context, callback func(*domain.Catalog)) (stop func(), err error)
}

// ResultStore defines the boundary to the persistence layer owned by
// the orchestrating UI (browser local storage, a session database).
// Storing and resuming results is entirely that layer's responsibility;
// the engine only defines the shape of the hand-off.
type ResultStore interface {
	// Save persists a completed result under a session key.
	Save(ctx context.Context, sessionID string, result *domain.TestResult) error

	// Load retrieves a previously saved result.
	// Returns the result and true if found, or nil and false otherwise.
	Load(ctx context.Context, sessionID string) (*domain.TestResult, bool, error)

	// Delete removes a saved result. Returns nil if the key is absent.
	Delete(ctx context.Context, sessionID string) error
}
