package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResponseSet_LastAnswerWins(t *testing.T) {
	set := NewResponseSet(
		UserResponse{QuestionID: "q1", RawScore: 2},
		UserResponse{QuestionID: "q2", RawScore: 4},
		UserResponse{QuestionID: "q1", RawScore: 5},
	)

	require.Equal(t, 2, set.Len())

	r, ok := set.Get("q1")
	require.True(t, ok)
	assert.Equal(t, 5, r.RawScore, "later answer must replace the earlier one")

	r, ok = set.Get("q2")
	require.True(t, ok)
	assert.Equal(t, 4, r.RawScore)
}

func TestResponseSet_Answered(t *testing.T) {
	set := NewResponseSet(UserResponse{QuestionID: "q1", RawScore: 3})

	assert.True(t, set.Answered("q1"))
	assert.False(t, set.Answered("q2"))
}

func TestResponseSet_Clone(t *testing.T) {
	set := NewResponseSet(UserResponse{QuestionID: "q1", RawScore: 3})

	clone := set.Clone()
	clone["q1"] = UserResponse{QuestionID: "q1", RawScore: 1}
	clone["q2"] = UserResponse{QuestionID: "q2", RawScore: 2}

	r, ok := set.Get("q1")
	require.True(t, ok)
	assert.Equal(t, 3, r.RawScore)
	assert.False(t, set.Answered("q2"))
}
