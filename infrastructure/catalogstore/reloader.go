package catalogstore

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/personakit/go-persona/internal/domain"
	"github.com/personakit/go-persona/internal/ports"
)

// Reloader connects a catalog source to a store, swapping in fresh
// catalogs as the source changes. A rate limiter throttles swaps so a
// flapping source cannot churn the active catalog faster than
// downstream consumers can absorb.
type Reloader struct {
	store   *Store
	source  ports.CatalogSource
	limiter *rate.Limiter
	metrics ports.MetricsCollector
}

// NewReloader creates a reloader that applies at most maxPerMinute
// catalog swaps per minute. A non-positive limit allows one swap per
// minute. The metrics collector may be nil.
func NewReloader(store *Store, source ports.CatalogSource, maxPerMinute int, metrics ports.MetricsCollector) (*Reloader, error) {
	if store == nil {
		return nil, fmt.Errorf("store must not be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("source must not be nil")
	}
	if maxPerMinute <= 0 {
		maxPerMinute = 1
	}

	return &Reloader{
		store:   store,
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(float64(maxPerMinute)/60.0), 1),
		metrics: metrics,
	}, nil
}

// Start begins watching the source and returns a stop function.
// Updates arriving faster than the rate limit allows are dropped; a
// later change delivers the newest content anyway, so nothing stays
// stale for longer than the limiter window plus one poll.
func (r *Reloader) Start(ctx context.Context) (func(), error) {
	stop, err := r.source.Watch(ctx, func(catalog *domain.Catalog) {
		labels := map[string]string{"catalog": catalog.Name()}

		if !r.limiter.Allow() {
			r.recordCounter("catalog_reloads_throttled_total", labels)
			return
		}

		if err := r.store.Replace(catalog); err != nil {
			r.recordCounter("catalog_reload_errors_total", labels)
			return
		}

		r.recordCounter("catalog_reloads_total", labels)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start watching source: %w", err)
	}

	return stop, nil
}

func (r *Reloader) recordCounter(metric string, labels map[string]string) {
	if r.metrics == nil {
		return
	}
	r.metrics.RecordCounter(metric, 1, labels)
}
