// Package domain contains pure, dependency-free domain models and types
// for the persona classification engine.
package domain

import (
	"fmt"
	"slices"
)

// QuestionID uniquely identifies a question within a catalog.
type QuestionID string

// PersonaID uniquely identifies a persona within a catalog.
type PersonaID string

// AxisID identifies one of the fixed value axes scored independently
// of persona classification.
type AxisID string

// The value axes form a closed set. Each axis measures a continuous
// dimension of the respondent's values; axis-tagged questions contribute
// to exactly one of these.
const (
	// AxisIndividualCollective measures individual versus collective
	// orientation.
	AxisIndividualCollective AxisID = "individual-collective"

	// AxisEconomyEnvironment measures economic growth versus
	// environmental protection orientation.
	AxisEconomyEnvironment AxisID = "economy-environment"

	// AxisSecurityFreedom measures security versus personal freedom
	// orientation.
	AxisSecurityFreedom AxisID = "security-freedom"

	// AxisShortTermLongTerm measures short-term versus long-term
	// policy orientation.
	AxisShortTermLongTerm AxisID = "shortterm-longterm"
)

// ValueAxes returns the fixed set of value axes in canonical order.
// The returned slice is a fresh copy and safe to modify.
func ValueAxes() []AxisID {
	return []AxisID{
		AxisIndividualCollective,
		AxisEconomyEnvironment,
		AxisSecurityFreedom,
		AxisShortTermLongTerm,
	}
}

// KnownAxis reports whether id names one of the fixed value axes.
func KnownAxis(id AxisID) bool {
	switch id {
	case AxisIndividualCollective, AxisEconomyEnvironment,
		AxisSecurityFreedom, AxisShortTermLongTerm:
		return true
	}
	return false
}

// QuestionCategory partitions the question set. Every question
// contributes either to a persona score or to a value axis, never both.
type QuestionCategory string

// Supported question categories.
const (
	// CategoryPersona marks a question whose normalized score is added
	// to the persona named by its associated key.
	CategoryPersona QuestionCategory = "persona"

	// CategoryValueAxis marks a question whose normalized score is added
	// to the value axis named by its associated key.
	CategoryValueAxis QuestionCategory = "value-axis"
)

// Valid reports whether the category is one of the supported values.
func (c QuestionCategory) Valid() bool {
	return c == CategoryPersona || c == CategoryValueAxis
}

// ResponseScale describes the closed integer scale raw answers are
// given on. The observed system uses 1-5, but all scoring logic is
// generic over the bounds so reversal stays scale-correct.
type ResponseScale struct {
	// Min is the lowest admissible raw score, inclusive.
	Min int `json:"min" yaml:"min"`

	// Max is the highest admissible raw score, inclusive.
	Max int `json:"max" yaml:"max"`
}

// DefaultScale is the 1-5 Likert scale used by the observed system.
var DefaultScale = ResponseScale{Min: 1, Max: 5}

// Validate checks that the scale bounds describe a non-empty range.
func (s ResponseScale) Validate() error {
	if s.Min >= s.Max {
		return fmt.Errorf("%w: min=%d, max=%d", ErrInvalidScale, s.Min, s.Max)
	}
	return nil
}

// Contains reports whether raw lies within the scale bounds.
func (s ResponseScale) Contains(raw int) bool {
	return raw >= s.Min && raw <= s.Max
}

// Reverse inverts a raw score on the scale. For a 1-5 scale this maps
// 1 to 5, 2 to 4, 3 to 3, and so on.
func (s ResponseScale) Reverse(raw int) int {
	return s.Min + s.Max - raw
}

// Question is one entry of the authored question catalog.
// Questions are immutable reference data; the engine never mutates them.
type Question struct {
	// ID uniquely identifies this question within the catalog.
	ID QuestionID `json:"id"`

	// Text is the question prompt shown to respondents. It is display
	// metadata only; scoring never inspects it.
	Text string `json:"text,omitempty"`

	// Category determines whether the question contributes to a persona
	// or to a value axis.
	Category QuestionCategory `json:"category"`

	// AssociatedKey names the persona or axis this question contributes
	// to, depending on Category. It must resolve against the catalog.
	AssociatedKey string `json:"associated_key"`

	// Reversed marks questions whose raw answer must be inverted on the
	// response scale before aggregation, because higher raw agreement
	// indicates a lower value on the measured dimension.
	Reversed bool `json:"reversed,omitempty"`
}

// PersonaKey returns the associated key typed as a PersonaID.
// Only meaningful when Category is CategoryPersona.
func (q Question) PersonaKey() PersonaID { return PersonaID(q.AssociatedKey) }

// AxisKey returns the associated key typed as an AxisID.
// Only meaningful when Category is CategoryValueAxis.
func (q Question) AxisKey() AxisID { return AxisID(q.AssociatedKey) }

// Persona is one archetype of the fixed catalog a respondent can be
// classified into. All fields beyond ID are display metadata carried
// through untouched for the presentation layer.
type Persona struct {
	// ID uniquely identifies this persona within the catalog.
	ID PersonaID `json:"id"`

	// Name is the display name of the archetype.
	Name string `json:"name,omitempty"`

	// Description explains the archetype to the respondent.
	Description string `json:"description,omitempty"`

	// Traits lists short characteristics of the archetype.
	Traits []string `json:"traits,omitempty"`

	// GoodMatches lists persona IDs this archetype pairs well with.
	GoodMatches []PersonaID `json:"good_matches,omitempty"`
}

// Catalog is the authored, immutable set of questions and personas the
// engine classifies against. It is validated once at construction; a
// successfully built Catalog satisfies every referential invariant the
// scoring pipeline relies on, so the pipeline itself never has to
// recover from corrupt content.
//
// Declaration order of personas and questions is preserved and serves
// as the canonical, deterministic iteration order. The Classifier's
// tie-break rule depends on it.
//
// A Catalog is safe for concurrent readers. Replacing a catalog at
// runtime must be done by swapping the reference atomically, never by
// editing in place.
type Catalog struct {
	name      string
	scale     ResponseScale
	personas  []Persona
	questions []Question

	personaIndex  map[PersonaID]int
	questionIndex map[QuestionID]int
}

// NewCatalog builds and validates a Catalog. It fails fast on content
// integrity problems: an invalid scale, fewer than two personas
// (ErrInsufficientCatalog, "secondary persona" would be undefined),
// duplicate or empty identifiers, and questions whose associated key
// does not resolve (UnknownAssociationError).
//
// The persona and question slices are copied; callers may reuse their
// arguments afterwards.
func NewCatalog(name string, scale ResponseScale, personas []Persona, questions []Question) (*Catalog, error) {
	if err := scale.Validate(); err != nil {
		return nil, err
	}

	if len(personas) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientCatalog, len(personas))
	}

	personaIndex := make(map[PersonaID]int, len(personas))
	for i, p := range personas {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: persona at position %d has empty id", ErrInvalidCatalog, i)
		}
		if _, dup := personaIndex[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate persona id %q", ErrInvalidCatalog, p.ID)
		}
		personaIndex[p.ID] = i
	}

	questionIndex := make(map[QuestionID]int, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			return nil, fmt.Errorf("%w: question at position %d has empty id", ErrInvalidCatalog, i)
		}
		if _, dup := questionIndex[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question id %q", ErrInvalidCatalog, q.ID)
		}
		if !q.Category.Valid() {
			return nil, fmt.Errorf("%w: question %q has unknown category %q", ErrInvalidCatalog, q.ID, q.Category)
		}
		if q.AssociatedKey == "" {
			return nil, fmt.Errorf("%w: question %q has empty associated key", ErrInvalidCatalog, q.ID)
		}

		switch q.Category {
		case CategoryPersona:
			if _, ok := personaIndex[q.PersonaKey()]; !ok {
				return nil, &UnknownAssociationError{
					QuestionID: q.ID,
					Category:   q.Category,
					Key:        q.AssociatedKey,
				}
			}
		case CategoryValueAxis:
			if !KnownAxis(q.AxisKey()) {
				return nil, &UnknownAssociationError{
					QuestionID: q.ID,
					Category:   q.Category,
					Key:        q.AssociatedKey,
				}
			}
		}
		questionIndex[q.ID] = i
	}

	return &Catalog{
		name:          name,
		scale:         scale,
		personas:      slices.Clone(personas),
		questions:     slices.Clone(questions),
		personaIndex:  personaIndex,
		questionIndex: questionIndex,
	}, nil
}

// Name returns the catalog's display name.
func (c *Catalog) Name() string { return c.name }

// Scale returns the response scale all raw answers are measured on.
func (c *Catalog) Scale() ResponseScale { return c.scale }

// Personas returns the personas in declaration order.
// The returned slice is a copy; the catalog itself stays immutable.
func (c *Catalog) Personas() []Persona { return slices.Clone(c.personas) }

// Questions returns the questions in declaration order.
// The returned slice is a copy; the catalog itself stays immutable.
func (c *Catalog) Questions() []Question { return slices.Clone(c.questions) }

// NumPersonas returns the number of personas in the catalog.
func (c *Catalog) NumPersonas() int { return len(c.personas) }

// NumQuestions returns the number of questions in the catalog.
func (c *Catalog) NumQuestions() int { return len(c.questions) }

// PersonaByID looks up a persona by its identifier.
func (c *Catalog) PersonaByID(id PersonaID) (Persona, bool) {
	i, ok := c.personaIndex[id]
	if !ok {
		return Persona{}, false
	}
	return c.personas[i], true
}

// QuestionByID looks up a question by its identifier.
func (c *Catalog) QuestionByID(id QuestionID) (Question, bool) {
	i, ok := c.questionIndex[id]
	if !ok {
		return Question{}, false
	}
	return c.questions[i], true
}

// PersonaRank returns the declaration position of a persona. The rank
// is the deterministic tie-break key used by the classifier: when two
// personas accumulate equal scores, the lower rank wins.
func (c *Catalog) PersonaRank(id PersonaID) (int, bool) {
	i, ok := c.personaIndex[id]
	return i, ok
}
