package units

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/personakit/go-persona/internal/domain"
	"github.com/personakit/go-persona/internal/ports"
)

var _ ports.Unit = (*ResultBuilderUnit)(nil)

// ResultBuilderUnit assembles the outputs of the aggregation and
// classification stages into a single immutable TestResult, stamping a
// creation timestamp. Pure composition; no validation logic lives here,
// since validation is the normalizer's and aggregator's job.
type ResultBuilderUnit struct {
	// name is the unique identifier for this unit instance.
	name string
	// now supplies timestamps; injectable for deterministic tests.
	now func() time.Time
	// tracer is the OpenTelemetry tracer for observability.
	tracer trace.Tracer
}

// NewResultBuilderUnit creates a ResultBuilderUnit. A nil clock
// defaults to time.Now.
func NewResultBuilderUnit(name string, now func() time.Time) (*ResultBuilderUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if now == nil {
		now = time.Now
	}

	return &ResultBuilderUnit{
		name:   name,
		now:    now,
		tracer: otel.Tracer("result-builder-unit"),
	}, nil
}

// Name returns the unique identifier for this unit instance.
func (u *ResultBuilderUnit) Name() string { return u.name }

// Build assembles a TestResult from the pipeline outputs. The score
// map is copied so the result stays immutable even if the caller later
// mutates its own copy.
func (u *ResultBuilderUnit) Build(
	runID string,
	primary, secondary domain.PersonaID,
	personaScores domain.PersonaScores,
	axisScores domain.ValueAxisScores,
	answered int,
) *domain.TestResult {
	return &domain.TestResult{
		ID:                 runID,
		PrimaryPersonaID:   primary,
		SecondaryPersonaID: secondary,
		PersonaScores:      personaScores.Clone(),
		ValueAxisScores:    axisScores,
		AnsweredQuestions:  answered,
		ComputedAt:         u.now(),
	}
}

// Execute collects the classifier and aggregator outputs from the state
// and stores the assembled result under KeyResult. The run identifier
// comes from the execution context when present, otherwise from the
// unit name.
func (u *ResultBuilderUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := u.tracer.Start(ctx, "ResultBuilderUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", "result_builder"),
			attribute.String("unit.id", u.name),
		),
	)
	defer span.End()

	primary, ok := domain.Get(state, domain.KeyPrimaryPersona)
	if !ok {
		err := fmt.Errorf("primary persona not found in state")
		span.RecordError(err)
		return state, err
	}

	secondary, ok := domain.Get(state, domain.KeySecondaryPersona)
	if !ok {
		err := fmt.Errorf("secondary persona not found in state")
		span.RecordError(err)
		return state, err
	}

	personaScores, ok := domain.Get(state, domain.KeyPersonaScores)
	if !ok {
		err := fmt.Errorf("persona scores not found in state")
		span.RecordError(err)
		return state, err
	}

	axisScores, ok := domain.Get(state, domain.KeyAxisScores)
	if !ok {
		err := fmt.Errorf("axis scores not found in state")
		span.RecordError(err)
		return state, err
	}

	normalized, ok := domain.Get(state, domain.KeyNormalizedScores)
	if !ok {
		err := fmt.Errorf("normalized scores not found in state")
		span.RecordError(err)
		return state, err
	}

	runID := fmt.Sprintf("%s_result", u.name)
	if execCtx, ok := state.GetExecutionContext(); ok && execCtx.RunID != "" {
		runID = execCtx.RunID
	}

	result := u.Build(runID, primary, secondary, personaScores, axisScores, len(normalized))

	span.SetAttributes(
		attribute.String("result.id", result.ID),
		attribute.String("result.primary", string(result.PrimaryPersonaID)),
	)

	return domain.With(state, domain.KeyResult, result), nil
}

// Validate checks if the unit is properly configured and ready for
// execution.
func (u *ResultBuilderUnit) Validate() error {
	if u.now == nil {
		return fmt.Errorf("clock cannot be nil")
	}
	return nil
}

// NewResultBuilderFromConfig creates a ResultBuilderUnit from a
// configuration map, following the UnitFactory pattern.
func NewResultBuilderFromConfig(id string, _ *domain.Catalog, _ map[string]any) (ports.Unit, error) {
	return NewResultBuilderUnit(id, nil)
}
