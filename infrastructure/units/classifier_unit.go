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

var _ ports.Unit = (*PersonaClassifierUnit)(nil)

// PersonaClassifierUnit ranks the completed persona score map and
// selects the primary and secondary personas.
//
// Ranking key: descending accumulated score. Ties are expected with
// small question counts, so the tie-break is explicit and deterministic:
// when two personas have equal scores, the one declared earlier in the
// catalog ranks higher. The unit ranks by walking catalog declaration
// order, never map iteration order, which is what makes the rule hold.
//
// The secondary persona is the second-ranked one, chosen independently
// of whether its score equals the primary's. A catalog with fewer than
// two personas cannot be constructed (domain.NewCatalog rejects it), so
// a second rank always exists.
//
// Concurrency: stateless and safe for concurrent execution.
type PersonaClassifierUnit struct {
	// name is the unique identifier for this unit instance.
	name string
	// catalog supplies the deterministic persona ordering. Immutable.
	catalog *domain.Catalog
	// tracer is the OpenTelemetry tracer for observability.
	tracer trace.Tracer
}

// NewPersonaClassifierUnit creates a PersonaClassifierUnit bound to a
// validated catalog.
func NewPersonaClassifierUnit(name string, catalog *domain.Catalog) (*PersonaClassifierUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if catalog == nil {
		return nil, ErrNilCatalog
	}

	return &PersonaClassifierUnit{
		name:    name,
		catalog: catalog,
		tracer:  otel.Tracer("persona-classifier-unit"),
	}, nil
}

// Name returns the unique identifier for this unit instance.
func (u *PersonaClassifierUnit) Name() string { return u.name }

// Classify selects the primary and secondary personas from a completed
// score map. Every catalog persona must be present in scores; the
// aggregator guarantees that by zero-initializing the full set.
func (u *PersonaClassifierUnit) Classify(scores domain.PersonaScores) (primary, secondary domain.PersonaID, err error) {
	personas := u.catalog.Personas()
	if len(personas) < 2 {
		return "", "", domain.ErrInsufficientCatalog
	}

	// Walk declaration order so equal scores resolve to the earlier
	// persona. A strict > comparison keeps the first-seen maximum.
	primaryIdx, secondaryIdx := -1, -1
	for i, p := range personas {
		score, ok := scores[p.ID]
		if !ok {
			return "", "", fmt.Errorf("persona %q missing from score map", p.ID)
		}

		switch {
		case primaryIdx < 0 || score > scores[personas[primaryIdx].ID]:
			primaryIdx, secondaryIdx = i, primaryIdx
		case secondaryIdx < 0 || score > scores[personas[secondaryIdx].ID]:
			secondaryIdx = i
		}
	}

	return personas[primaryIdx].ID, personas[secondaryIdx].ID, nil
}

// Execute reads persona scores from the state and stores the selected
// primary and secondary personas under KeyPrimaryPersona and
// KeySecondaryPersona.
func (u *PersonaClassifierUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := u.tracer.Start(ctx, "PersonaClassifierUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", "persona_classifier"),
			attribute.String("unit.id", u.name),
			attribute.Int("catalog.personas", u.catalog.NumPersonas()),
		),
	)
	defer span.End()

	scores, ok := domain.Get(state, domain.KeyPersonaScores)
	if !ok {
		err := fmt.Errorf("persona scores not found in state")
		span.RecordError(err)
		return state, err
	}

	primary, secondary, err := u.Classify(scores)
	if err != nil {
		span.RecordError(err)
		return state, err
	}

	span.SetAttributes(
		attribute.String("classify.primary", string(primary)),
		attribute.String("classify.secondary", string(secondary)),
	)

	state = domain.With(state, domain.KeyPrimaryPersona, primary)
	return domain.With(state, domain.KeySecondaryPersona, secondary), nil
}

// Validate checks if the unit is properly configured and ready for
// execution.
func (u *PersonaClassifierUnit) Validate() error {
	if u.catalog == nil {
		return ErrNilCatalog
	}
	if u.catalog.NumPersonas() < 2 {
		return domain.ErrInsufficientCatalog
	}
	return nil
}

// NewPersonaClassifierFromConfig creates a PersonaClassifierUnit from a
// configuration map, following the UnitFactory pattern. The classifier
// takes no parameters; the tie-break rule is not configurable.
func NewPersonaClassifierFromConfig(id string, catalog *domain.Catalog, _ map[string]any) (ports.Unit, error) {
	return NewPersonaClassifierUnit(id, catalog)
}
