package units

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/personakit/go-persona/internal/domain"
	"github.com/personakit/go-persona/internal/ports"
)

var _ ports.Unit = (*ScoreAggregatorUnit)(nil)

// ScoreAggregatorUnit folds normalized per-question scores into two
// totals: a per-persona score map and a per-axis score record.
//
// Every catalog persona is initialized to zero before aggregation, so
// personas that received no matching answers are present in the map
// with score 0 rather than absent. The classifier depends on ranking
// the complete persona set.
//
// Aggregation is lenient: catalog questions without a
// matching normalized score are skipped without error, so partial
// response sets still produce a score for live previews. Strictness is
// the completeness guard's job, enforced by the orchestrating caller
// before a final classification, never here.
//
// Concurrency: stateless and safe for concurrent execution. Output
// depends only on inputs.
type ScoreAggregatorUnit struct {
	// name is the unique identifier for this unit instance.
	name string
	// catalog supplies question-to-key associations. Immutable.
	catalog *domain.Catalog
	// tracer is the OpenTelemetry tracer for observability.
	tracer trace.Tracer
}

// NewScoreAggregatorUnit creates a ScoreAggregatorUnit bound to a
// validated catalog. The unit has no tunable configuration; leniency
// toward unanswered questions is part of its contract.
func NewScoreAggregatorUnit(name string, catalog *domain.Catalog) (*ScoreAggregatorUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if catalog == nil {
		return nil, ErrNilCatalog
	}

	return &ScoreAggregatorUnit{
		name:    name,
		catalog: catalog,
		tracer:  otel.Tracer("score-aggregator-unit"),
	}, nil
}

// Name returns the unique identifier for this unit instance.
func (u *ScoreAggregatorUnit) Name() string { return u.name }

// Aggregate folds normalized scores into persona and axis totals.
// Iteration follows catalog question order, and the persona map is
// seeded from catalog persona order, so the output is deterministic
// for a given catalog regardless of how the input map was built.
func (u *ScoreAggregatorUnit) Aggregate(normalized map[domain.QuestionID]int) (domain.PersonaScores, domain.ValueAxisScores, error) {
	personaScores := domain.NewPersonaScores(u.catalog)
	var axisScores domain.ValueAxisScores

	for _, question := range u.catalog.Questions() {
		score, answered := normalized[question.ID]
		if !answered {
			// Unanswered questions contribute nothing.
			continue
		}

		switch question.Category {
		case domain.CategoryPersona:
			personaScores[question.PersonaKey()] += score
		case domain.CategoryValueAxis:
			if err := axisScores.Add(question.AxisKey(), score); err != nil {
				// Unreachable with a validated catalog.
				return nil, domain.ValueAxisScores{}, fmt.Errorf("question %q: %w", question.ID, err)
			}
		}
	}

	return personaScores, axisScores, nil
}

// Execute reads normalized scores from the state and stores the
// aggregated persona and axis totals under KeyPersonaScores and
// KeyAxisScores.
func (u *ScoreAggregatorUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := u.tracer.Start(ctx, "ScoreAggregatorUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", "score_aggregator"),
			attribute.String("unit.id", u.name),
			attribute.String("catalog.name", u.catalog.Name()),
		),
	)
	defer span.End()

	normalized, ok := domain.Get(state, domain.KeyNormalizedScores)
	if !ok {
		err := fmt.Errorf("normalized scores not found in state")
		span.RecordError(err)
		return state, err
	}

	personaScores, axisScores, err := u.Aggregate(normalized)
	if err != nil {
		span.RecordError(err)
		return state, err
	}

	span.SetAttributes(
		attribute.Int("aggregate.answered", len(normalized)),
		attribute.Int("aggregate.personas", len(personaScores)),
	)

	state = domain.With(state, domain.KeyPersonaScores, personaScores)
	return domain.With(state, domain.KeyAxisScores, axisScores), nil
}

// Validate checks if the unit is properly configured and ready for
// execution.
func (u *ScoreAggregatorUnit) Validate() error {
	if u.catalog == nil {
		return ErrNilCatalog
	}
	return nil
}

// NewScoreAggregatorFromConfig creates a ScoreAggregatorUnit from a
// configuration map, following the UnitFactory pattern. The aggregator
// takes no parameters; the map is accepted for factory symmetry.
func NewScoreAggregatorFromConfig(id string, catalog *domain.Catalog, _ map[string]any) (ports.Unit, error) {
	return NewScoreAggregatorUnit(id, catalog)
}
