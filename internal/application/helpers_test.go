package application

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/personakit/go-persona/internal/domain"
)

// quizPersonas returns the persona roster used by application tests.
// Declaration order matters: classification ties resolve to the
// earliest persona.
func quizPersonas() []domain.Persona {
	return []domain.Persona{
		{ID: "idealist", Name: "The Idealist", GoodMatches: []domain.PersonaID{"pragmatist"}},
		{ID: "pragmatist", Name: "The Pragmatist", GoodMatches: []domain.PersonaID{"idealist"}},
		{ID: "guardian", Name: "The Guardian"},
	}
}

// quizQuestions returns a small question bank exercising persona and
// value-axis categories, including reversed questions.
func quizQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Category: domain.CategoryPersona, AssociatedKey: "idealist"},
		{ID: "q2", Category: domain.CategoryPersona, AssociatedKey: "pragmatist"},
		{ID: "q3", Category: domain.CategoryPersona, AssociatedKey: "guardian", Reversed: true},
		{ID: "q4", Category: domain.CategoryValueAxis, AssociatedKey: string(domain.AxisIndividualCollective)},
		{ID: "q5", Category: domain.CategoryValueAxis, AssociatedKey: string(domain.AxisSecurityFreedom), Reversed: true},
	}
}

// quizCatalog builds the standard test catalog on the default scale.
func quizCatalog(t *testing.T) *domain.Catalog {
	t.Helper()

	catalog, err := domain.NewCatalog("quiz", domain.DefaultScale, quizPersonas(), quizQuestions())
	require.NoError(t, err)
	return catalog
}

// fullResponses answers every question in the test catalog such that
// idealist leads, pragmatist comes second, and both axes get non-zero
// totals after reversal.
func fullResponses() domain.ResponseSet {
	return domain.NewResponseSet(
		domain.UserResponse{QuestionID: "q1", RawScore: 5}, // idealist +5
		domain.UserResponse{QuestionID: "q2", RawScore: 4}, // pragmatist +4
		domain.UserResponse{QuestionID: "q3", RawScore: 4}, // guardian +2 after reversal
		domain.UserResponse{QuestionID: "q4", RawScore: 3}, // individual-collective +3
		domain.UserResponse{QuestionID: "q5", RawScore: 1}, // security-freedom +5 after reversal
	)
}
