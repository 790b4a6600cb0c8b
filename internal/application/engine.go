package application

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/personakit/go-persona/internal/domain"
	"github.com/personakit/go-persona/internal/ports"

	"github.com/personakit/go-persona/infrastructure/units"
)

// Engine runs the classification pipeline for a single catalog,
// turning raw response sets into persona and value-axis scores and
// final test results.
// An Engine is constructed once per loaded catalog and is safe for
// concurrent use; every run flows through the same four stateless
// stages with an immutable State carrying intermediate data.
type Engine struct {
	catalog *domain.Catalog

	normalizer *units.ScoreNormalizerUnit
	aggregator *units.ScoreAggregatorUnit
	classifier *units.PersonaClassifierUnit
	builder    *units.ResultBuilderUnit

	metrics  ports.MetricsCollector
	observer ClassificationObserver

	// Pending option overrides applied during construction.
	normalizerConfig *units.NormalizerConfig
	clock            func() time.Time

	// runSeq numbers pipeline runs for run IDs when the caller does
	// not supply a session ID.
	runSeq atomic.Int64
}

// ClassificationObserver receives callbacks around final
// classification runs, allowing tracing middleware to wrap the
// pipeline without the engine depending on any tracing library.
type ClassificationObserver interface {
	// ClassificationStarted is called before the pipeline runs and
	// returns a context to run under plus a completion callback.
	ClassificationStarted(ctx context.Context, catalogName, runID string) (context.Context, func(result *domain.TestResult, err error))
}

// Option configures an Engine during construction.
type Option func(*Engine)

// WithMetrics attaches a metrics collector that records pipeline
// latencies and classification outcome counters.
func WithMetrics(collector ports.MetricsCollector) Option {
	return func(e *Engine) { e.metrics = collector }
}

// WithObserver attaches an observer notified around final
// classification runs.
func WithObserver(observer ClassificationObserver) Option {
	return func(e *Engine) { e.observer = observer }
}

// WithClock overrides the wall clock used to timestamp results.
// Tests use this to produce deterministic output.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.clock = now }
}

// WithNormalizerConfig overrides the normalizer stage configuration,
// such as the unknown-question policy.
func WithNormalizerConfig(config units.NormalizerConfig) Option {
	return func(e *Engine) { e.normalizerConfig = &config }
}

// NewEngine constructs a classification engine for the given catalog,
// wiring the normalize, aggregate, classify, and build stages.
// NewEngine validates every stage against the catalog and returns an
// error when the catalog cannot support classification, such as having
// fewer than two personas.
func NewEngine(catalog *domain.Catalog, opts ...Option) (*Engine, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog must not be nil")
	}

	e := &Engine{catalog: catalog}
	for _, opt := range opts {
		opt(e)
	}

	normalizerCfg := units.DefaultNormalizerConfig()
	if e.normalizerConfig != nil {
		normalizerCfg = *e.normalizerConfig
	}

	normalizer, err := units.NewScoreNormalizerUnit("normalize_scores", catalog, normalizerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create normalizer: %w", err)
	}
	e.normalizer = normalizer

	aggregator, err := units.NewScoreAggregatorUnit("aggregate_scores", catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to create aggregator: %w", err)
	}
	e.aggregator = aggregator

	classifier, err := units.NewPersonaClassifierUnit("classify_personas", catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}
	e.classifier = classifier

	builder, err := units.NewResultBuilderUnit("build_result", e.clock)
	if err != nil {
		return nil, fmt.Errorf("failed to create result builder: %w", err)
	}
	e.builder = builder

	for _, unit := range []ports.Unit{e.normalizer, e.aggregator, e.classifier, e.builder} {
		if err := unit.Validate(); err != nil {
			return nil, fmt.Errorf("unit %s failed validation: %w", unit.Name(), err)
		}
	}

	return e, nil
}

// Catalog returns the catalog this engine classifies against.
func (e *Engine) Catalog() *domain.Catalog { return e.catalog }

// Preview computes persona and value-axis scores from whatever answers
// are present, without requiring a complete response set and without
// producing a classification.
// Preview is safe to call repeatedly as answers accumulate; unanswered
// questions simply contribute nothing.
func (e *Engine) Preview(ctx context.Context, responses domain.ResponseSet) (domain.PersonaScores, domain.ValueAxisScores, error) {
	start := time.Now()

	state := e.newRunState(responses, "")

	state, err := e.runStages(ctx, state, e.normalizer, e.aggregator)
	if err != nil {
		return nil, domain.ValueAxisScores{}, err
	}

	personaScores, ok := domain.Get(state, domain.KeyPersonaScores)
	if !ok {
		return nil, domain.ValueAxisScores{}, fmt.Errorf("pipeline produced no persona scores")
	}
	axisScores, ok := domain.Get(state, domain.KeyAxisScores)
	if !ok {
		return nil, domain.ValueAxisScores{}, fmt.Errorf("pipeline produced no axis scores")
	}

	e.recordLatency("preview", start)

	return personaScores, axisScores, nil
}

// Classify runs the full pipeline over the given responses and returns
// the assembled result with primary and secondary personas.
// Classify does not enforce completeness; use FinalizeClassify when
// every question must be answered first.
func (e *Engine) Classify(ctx context.Context, responses domain.ResponseSet) (*domain.TestResult, error) {
	return e.classify(ctx, responses, "")
}

// FinalizeClassify verifies that every catalog question has been
// answered and then runs the full pipeline.
// FinalizeClassify returns a *domain.IncompleteTestError listing the
// missing question IDs in catalog order when answers are absent.
// The sessionID, when non-empty, becomes the run identifier recorded
// on the result.
func (e *Engine) FinalizeClassify(ctx context.Context, sessionID string, responses domain.ResponseSet) (*domain.TestResult, error) {
	if err := CheckComplete(e.catalog, responses); err != nil {
		return nil, err
	}
	return e.classify(ctx, responses, sessionID)
}

func (e *Engine) classify(ctx context.Context, responses domain.ResponseSet, sessionID string) (*domain.TestResult, error) {
	start := time.Now()

	state := e.newRunState(responses, sessionID)
	execCtx, _ := state.GetExecutionContext()

	var finish func(result *domain.TestResult, err error)
	if e.observer != nil {
		ctx, finish = e.observer.ClassificationStarted(ctx, e.catalog.Name(), execCtx.RunID)
	}

	state, err := e.runStages(ctx, state, e.normalizer, e.aggregator, e.classifier, e.builder)
	if err != nil {
		if finish != nil {
			finish(nil, err)
		}
		e.recordOutcome("", false)
		return nil, err
	}

	result, ok := domain.Get(state, domain.KeyResult)
	if !ok {
		err := fmt.Errorf("pipeline produced no result")
		if finish != nil {
			finish(nil, err)
		}
		return nil, err
	}

	if finish != nil {
		finish(result, nil)
	}
	e.recordLatency("classify", start)
	e.recordOutcome(string(result.PrimaryPersonaID), true)

	return result, nil
}

// runStages executes the given units in order, threading the state
// through each and annotating failures with the failing unit's name.
func (e *Engine) runStages(ctx context.Context, state domain.State, stages ...ports.Unit) (domain.State, error) {
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		next, err := stage.Execute(ctx, state)
		if err != nil {
			return state, fmt.Errorf("unit %s failed: %w", stage.Name(), err)
		}
		state = next
	}
	return state, nil
}

// newRunState seeds a pipeline state with the responses and execution
// metadata. The run ID comes from the session ID when provided, else
// from a per-engine sequence.
func (e *Engine) newRunState(responses domain.ResponseSet, sessionID string) domain.State {
	runID := sessionID
	if runID == "" {
		runID = fmt.Sprintf("%s_run_%d", e.catalog.Name(), e.runSeq.Add(1))
	}

	state := domain.With(domain.NewState(), domain.KeyResponses, responses)
	return state.WithExecutionContext(domain.ExecutionContext{
		CatalogName: e.catalog.Name(),
		SessionID:   sessionID,
		RunID:       runID,
	})
}

func (e *Engine) recordLatency(operation string, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordLatency(operation, time.Since(start), map[string]string{
		"catalog": e.catalog.Name(),
	})
}

func (e *Engine) recordOutcome(primary string, success bool) {
	if e.metrics == nil {
		return
	}
	labels := map[string]string{"catalog": e.catalog.Name()}
	if success {
		labels["primary_persona"] = primary
		e.metrics.RecordCounter("classifications_total", 1, labels)
		return
	}
	e.metrics.RecordCounter("classification_errors_total", 1, labels)
}
