package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personakit/go-persona/internal/domain"
)

func TestCheckComplete(t *testing.T) {
	catalog := quizCatalog(t)

	t.Run("complete set passes", func(t *testing.T) {
		assert.NoError(t, CheckComplete(catalog, fullResponses()))
	})

	t.Run("empty set reports every question", func(t *testing.T) {
		err := CheckComplete(catalog, domain.NewResponseSet())
		incomplete, ok := domain.IsIncomplete(err)
		require.True(t, ok)
		assert.Equal(t, []domain.QuestionID{"q1", "q2", "q3", "q4", "q5"}, incomplete.Missing)
	})

	t.Run("missing IDs follow catalog order", func(t *testing.T) {
		responses := domain.NewResponseSet(
			domain.UserResponse{QuestionID: "q5", RawScore: 3},
			domain.UserResponse{QuestionID: "q1", RawScore: 3},
		)

		err := CheckComplete(catalog, responses)
		incomplete, ok := domain.IsIncomplete(err)
		require.True(t, ok)
		assert.Equal(t, []domain.QuestionID{"q2", "q3", "q4"}, incomplete.Missing)
	})

	t.Run("stray answers do not satisfy completeness", func(t *testing.T) {
		responses := fullResponses()
		delete(responses, "q3")
		responses["q99"] = domain.UserResponse{QuestionID: "q99", RawScore: 3}

		err := CheckComplete(catalog, responses)
		incomplete, ok := domain.IsIncomplete(err)
		require.True(t, ok)
		assert.Equal(t, []domain.QuestionID{"q3"}, incomplete.Missing)
	})
}
