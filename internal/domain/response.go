package domain

// UserResponse is one raw answer to one question. RawScore is the
// respondent's answer on the catalog's response scale, before any
// direction correction.
type UserResponse struct {
	// QuestionID names the question this response answers.
	QuestionID QuestionID `json:"question_id"`

	// RawScore is the answer on the closed response scale.
	RawScore int `json:"raw_score"`
}

// ResponseSet holds at most one response per question. Keying responses
// by question eliminates duplicate-handling ambiguity at the type level:
// whatever produced the set has already resolved duplicates.
type ResponseSet map[QuestionID]UserResponse

// NewResponseSet builds a ResponseSet from a list of responses.
// When the same question is answered more than once, the later answer
// (by list order) replaces the earlier one.
func NewResponseSet(responses ...UserResponse) ResponseSet {
	set := make(ResponseSet, len(responses))
	for _, r := range responses {
		set[r.QuestionID] = r
	}
	return set
}

// Get returns the response for a question, if one exists.
func (s ResponseSet) Get(id QuestionID) (UserResponse, bool) {
	r, ok := s[id]
	return r, ok
}

// Answered reports whether a response for the question exists.
func (s ResponseSet) Answered(id QuestionID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of distinct answered questions.
func (s ResponseSet) Len() int { return len(s) }

// Clone returns an independent copy of the set.
func (s ResponseSet) Clone() ResponseSet {
	out := make(ResponseSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
