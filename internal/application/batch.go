package application

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/personakit/go-persona/internal/domain"
)

// DefaultBatchConcurrency bounds parallel pipeline runs when the
// caller does not specify a limit.
const DefaultBatchConcurrency = 8

// BatchClassifier classifies many response sets concurrently against
// a single engine, preserving input order in the results.
// Use it for offline jobs such as re-scoring stored submissions after
// a catalog revision.
type BatchClassifier struct {
	engine      *Engine
	concurrency int
}

// NewBatchClassifier creates a batch classifier running at most
// concurrency pipelines in parallel. A concurrency of zero or less
// falls back to DefaultBatchConcurrency.
func NewBatchClassifier(engine *Engine, concurrency int) (*BatchClassifier, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine must not be nil")
	}
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	return &BatchClassifier{engine: engine, concurrency: concurrency}, nil
}

// ClassifyAll runs the full pipeline over every response set and
// returns results in the same order as the inputs.
// ClassifyAll fails fast: the first pipeline error cancels the
// remaining work and is returned with the failing input's index.
func (b *BatchClassifier) ClassifyAll(ctx context.Context, sets []domain.ResponseSet) ([]*domain.TestResult, error) {
	results := make([]*domain.TestResult, len(sets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, set := range sets {
		i, set := i, set
		g.Go(func() error {
			result, err := b.engine.Classify(ctx, set)
			if err != nil {
				return fmt.Errorf("response set %d: %w", i, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
