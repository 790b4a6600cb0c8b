package domain

import (
	"fmt"
	"time"
)

// PersonaScores maps every catalog persona to its accumulated score.
// A completed aggregation run contains an entry for every persona in
// the catalog, including personas no answered question contributed to
// (score 0), so the classifier can always rank the complete set.
//
// Ranking must never iterate the map directly; deterministic order
// always comes from Catalog.Personas.
type PersonaScores map[PersonaID]int

// NewPersonaScores creates a score map with every catalog persona
// initialized to zero.
func NewPersonaScores(catalog *Catalog) PersonaScores {
	scores := make(PersonaScores, catalog.NumPersonas())
	for _, p := range catalog.Personas() {
		scores[p.ID] = 0
	}
	return scores
}

// Clone returns an independent copy of the score map.
func (s PersonaScores) Clone() PersonaScores {
	out := make(PersonaScores, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// ValueAxisScores holds the accumulated score per value axis. It is a
// fixed record rather than an open map: the axis set is closed, and a
// record makes a missing or misspelled axis a compile-time impossibility
// for consumers.
//
// Each field holds the sum of the normalized scores of the axis-tagged
// questions mapped to it. Catalogs that assign a single question per
// axis simply produce single-term sums.
type ValueAxisScores struct {
	// IndividualCollective accumulates the individual-vs-collective axis.
	IndividualCollective int `json:"individual_collective"`

	// EconomyEnvironment accumulates the economy-vs-environment axis.
	EconomyEnvironment int `json:"economy_environment"`

	// SecurityFreedom accumulates the security-vs-freedom axis.
	SecurityFreedom int `json:"security_freedom"`

	// ShortTermLongTerm accumulates the short-term-vs-long-term axis.
	ShortTermLongTerm int `json:"shortterm_longterm"`
}

// Add accumulates delta onto the named axis. Unknown axis IDs are an
// error; a validated catalog never produces one, so hitting this path
// indicates a bug in the caller rather than bad content.
func (s *ValueAxisScores) Add(axis AxisID, delta int) error {
	switch axis {
	case AxisIndividualCollective:
		s.IndividualCollective += delta
	case AxisEconomyEnvironment:
		s.EconomyEnvironment += delta
	case AxisSecurityFreedom:
		s.SecurityFreedom += delta
	case AxisShortTermLongTerm:
		s.ShortTermLongTerm += delta
	default:
		return fmt.Errorf("unknown value axis %q", axis)
	}
	return nil
}

// Get returns the accumulated score for the named axis.
func (s ValueAxisScores) Get(axis AxisID) (int, bool) {
	switch axis {
	case AxisIndividualCollective:
		return s.IndividualCollective, true
	case AxisEconomyEnvironment:
		return s.EconomyEnvironment, true
	case AxisSecurityFreedom:
		return s.SecurityFreedom, true
	case AxisShortTermLongTerm:
		return s.ShortTermLongTerm, true
	}
	return 0, false
}

// TestResult is the final, immutable outcome of one classification run.
// It is created once per completed run, never mutated afterwards, and
// is safe to serialize and persist by the orchestrating layer.
type TestResult struct {
	// ID identifies this classification run.
	ID string `json:"id"`

	// PrimaryPersonaID is the top-ranked persona.
	PrimaryPersonaID PersonaID `json:"primary_persona_id"`

	// SecondaryPersonaID is the second-ranked persona, chosen
	// independently of whether its score equals the primary's.
	SecondaryPersonaID PersonaID `json:"secondary_persona_id"`

	// PersonaScores contains one entry per catalog persona.
	PersonaScores PersonaScores `json:"persona_scores"`

	// ValueAxisScores contains the per-axis accumulated scores.
	ValueAxisScores ValueAxisScores `json:"value_axis_scores"`

	// AnsweredQuestions counts the distinct catalog questions that
	// contributed a response to this run.
	AnsweredQuestions int `json:"answered_questions"`

	// ComputedAt records when this result was created.
	ComputedAt time.Time `json:"computed_at"`
}
