package units

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/personakit/go-persona/internal/domain"
	"github.com/personakit/go-persona/internal/ports"
)

var _ ports.Unit = (*ScoreNormalizerUnit)(nil)

// ScoreNormalizerUnit converts raw answers into normalized,
// direction-corrected scores. For a question marked as reversed the raw
// score is inverted on the response scale (min + max - raw); otherwise
// the raw score passes through unchanged.
//
// The normalizer validates, it never repairs: a raw score outside the
// catalog's scale fails the whole computation with ErrOutOfRangeScore
// rather than being clamped, because a silently repaired answer would
// poison every downstream total.
//
// Concurrency: stateless and safe for concurrent execution.
type ScoreNormalizerUnit struct {
	// name is the unique identifier for this unit instance.
	name string
	// catalog supplies questions and the response scale. Immutable.
	catalog *domain.Catalog
	// config contains the validated configuration parameters.
	config NormalizerConfig
	// tracer is the OpenTelemetry tracer for observability.
	tracer trace.Tracer
}

// NormalizerConfig controls normalizer behavior for edge-case input.
// The zero value is not valid; use DefaultNormalizerConfig.
type NormalizerConfig struct {
	// OnUnknownQuestion decides what happens to responses referencing
	// questions absent from the catalog: "ignore" drops them, "error"
	// fails the computation.
	OnUnknownQuestion UnknownQuestionPolicy `yaml:"on_unknown_question" json:"on_unknown_question" validate:"required,oneof=ignore error"`
}

// DefaultNormalizerConfig returns the production default: unknown
// questions are ignored so partial or stale response sets still score.
func DefaultNormalizerConfig() NormalizerConfig {
	return NormalizerConfig{OnUnknownQuestion: UnknownIgnore}
}

// NewScoreNormalizerUnit creates a ScoreNormalizerUnit bound to a
// validated catalog. Returns ErrEmptyUnitName for an empty name,
// ErrNilCatalog for a nil catalog, or a configuration validation error.
func NewScoreNormalizerUnit(name string, catalog *domain.Catalog, config NormalizerConfig) (*ScoreNormalizerUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if catalog == nil {
		return nil, ErrNilCatalog
	}

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &ScoreNormalizerUnit{
		name:    name,
		catalog: catalog,
		config:  config,
		tracer:  otel.Tracer("score-normalizer-unit"),
	}, nil
}

// Name returns the unique identifier for this unit instance.
func (u *ScoreNormalizerUnit) Name() string { return u.name }

// Normalize converts one response into its direction-corrected score.
// The question must belong to the unit's catalog and match the
// response's question ID; the raw score must lie within the catalog's
// scale bounds or ErrOutOfRangeScore is returned.
func (u *ScoreNormalizerUnit) Normalize(question domain.Question, response domain.UserResponse) (int, error) {
	if question.ID != response.QuestionID {
		return 0, fmt.Errorf("question %q does not match response for %q",
			question.ID, response.QuestionID)
	}

	scale := u.catalog.Scale()
	if !scale.Contains(response.RawScore) {
		return 0, fmt.Errorf("question %q: raw score %d outside scale [%d, %d]: %w",
			question.ID, response.RawScore, scale.Min, scale.Max, domain.ErrOutOfRangeScore)
	}

	if question.Reversed {
		return scale.Reverse(response.RawScore), nil
	}
	return response.RawScore, nil
}

// Execute normalizes every response in the state's response set and
// stores the per-question normalized scores under KeyNormalizedScores.
// Responses to questions not in the catalog are handled according to
// the configured policy. A single out-of-range score fails the whole
// run; there is no partial normalization.
func (u *ScoreNormalizerUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := u.tracer.Start(ctx, "ScoreNormalizerUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", "score_normalizer"),
			attribute.String("unit.id", u.name),
			attribute.String("config.on_unknown_question", string(u.config.OnUnknownQuestion)),
		),
	)
	defer span.End()

	responses, ok := domain.Get(state, domain.KeyResponses)
	if !ok {
		err := fmt.Errorf("responses not found in state")
		span.RecordError(err)
		return state, err
	}

	normalized := make(map[domain.QuestionID]int, responses.Len())
	dropped := 0

	for id, response := range responses {
		question, found := u.catalog.QuestionByID(id)
		if !found {
			if u.config.OnUnknownQuestion == UnknownError {
				err := fmt.Errorf("question %q: %w", id, domain.ErrUnknownQuestion)
				span.RecordError(err)
				return state, err
			}
			dropped++
			continue
		}

		score, err := u.Normalize(question, response)
		if err != nil {
			span.RecordError(err)
			return state, err
		}
		normalized[id] = score
	}

	span.SetAttributes(
		attribute.Int("normalize.responses", responses.Len()),
		attribute.Int("normalize.dropped", dropped),
	)

	return domain.With(state, domain.KeyNormalizedScores, normalized), nil
}

// Validate checks if the unit is properly configured and ready for
// execution.
func (u *ScoreNormalizerUnit) Validate() error {
	if u.catalog == nil {
		return ErrNilCatalog
	}
	if err := validate.Struct(u.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters deserializes YAML configuration parameters into
// the unit's configuration struct with validation. The unit's
// configuration remains unchanged on error.
func (u *ScoreNormalizerUnit) UnmarshalParameters(params yaml.Node) error {
	var config NormalizerConfig

	if err := params.Decode(&config); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}

	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("parameter validation failed: %w", err)
	}

	u.config = config
	return nil
}

// NewScoreNormalizerFromConfig creates a ScoreNormalizerUnit from a
// configuration map. This is the boundary adapter for YAML/JSON
// configuration, following the UnitFactory pattern.
func NewScoreNormalizerFromConfig(id string, catalog *domain.Catalog, config map[string]any) (ports.Unit, error) {
	cfg := DefaultNormalizerConfig()

	if policy, ok := config["on_unknown_question"].(string); ok {
		cfg.OnUnknownQuestion = UnknownQuestionPolicy(policy)
	}

	return NewScoreNormalizerUnit(id, catalog, cfg)
}
