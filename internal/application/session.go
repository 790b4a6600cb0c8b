package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/personakit/go-persona/internal/domain"
)

// Session lifecycle errors.
var (
	// ErrSessionClassified indicates an attempt to record an answer
	// after the session has been finalized. Reset the session to start
	// a fresh attempt.
	ErrSessionClassified = errors.New("session already classified")

	// ErrSessionNotClassified indicates a result was requested before
	// the session was finalized.
	ErrSessionNotClassified = errors.New("session not yet classified")
)

// SessionState tracks where a respondent session is in its lifecycle.
type SessionState string

const (
	// StateCollecting is the initial state in which answers are being
	// recorded and the question set is not yet fully covered.
	StateCollecting SessionState = "collecting"

	// StateReady means every catalog question has an answer and the
	// session can be finalized. Recording is still allowed; answers
	// may be revised until finalization.
	StateReady SessionState = "ready"

	// StateClassified means the session has been finalized and holds
	// an immutable result. Further recording is rejected.
	StateClassified SessionState = "classified"
)

// Session accumulates one respondent's answers against a catalog and
// drives them through preview and final classification.
// A Session moves through collecting, ready, and classified states.
// Recording is allowed until finalization so respondents can revise
// earlier answers; after finalization the session is frozen until
// Reset. Session is safe for concurrent use.
type Session struct {
	engine *Engine
	id     string

	mu        sync.Mutex
	state     SessionState
	responses domain.ResponseSet
	result    *domain.TestResult
}

// NewSession creates a session for one respondent identified by id,
// classifying against the engine's catalog.
func NewSession(engine *Engine, id string) (*Session, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine must not be nil")
	}
	if id == "" {
		return nil, fmt.Errorf("session ID must not be empty")
	}

	return &Session{
		engine:    engine,
		id:        id,
		state:     StateCollecting,
		responses: domain.NewResponseSet(),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the session's current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Record stores the answer for a question, replacing any earlier
// answer to the same question.
// Record rejects answers after finalization with ErrSessionClassified,
// answers to questions outside the catalog with an error wrapping
// domain.ErrUnknownQuestion, and raw scores outside the response scale
// with an error wrapping domain.ErrOutOfRangeScore.
func (s *Session) Record(questionID domain.QuestionID, rawScore int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClassified {
		return fmt.Errorf("%w: cannot record answer for question %q", ErrSessionClassified, questionID)
	}

	catalog := s.engine.Catalog()
	if _, ok := catalog.QuestionByID(questionID); !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownQuestion, questionID)
	}

	scale := catalog.Scale()
	if !scale.Contains(rawScore) {
		return fmt.Errorf("%w: question %q score %d outside [%d, %d]",
			domain.ErrOutOfRangeScore, questionID, rawScore, scale.Min, scale.Max)
	}

	s.responses[questionID] = domain.UserResponse{QuestionID: questionID, RawScore: rawScore}

	if CheckComplete(catalog, s.responses) == nil {
		s.state = StateReady
	}

	return nil
}

// Progress reports how many catalog questions have been answered and
// the total number of questions.
func (s *Session) Progress() (answered, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog := s.engine.Catalog()
	for _, question := range catalog.Questions() {
		if s.responses.Answered(question.ID) {
			answered++
		}
	}
	return answered, catalog.NumQuestions()
}

// Preview computes interim persona and value-axis scores from the
// answers recorded so far, without finalizing the session.
func (s *Session) Preview(ctx context.Context) (domain.PersonaScores, domain.ValueAxisScores, error) {
	s.mu.Lock()
	responses := s.responses.Clone()
	s.mu.Unlock()

	return s.engine.Preview(ctx, responses)
}

// Finalize verifies completeness and runs the full classification
// pipeline, transitioning the session to the classified state.
// Finalize returns a *domain.IncompleteTestError when catalog
// questions remain unanswered, and ErrSessionClassified when the
// session was already finalized.
func (s *Session) Finalize(ctx context.Context) (*domain.TestResult, error) {
	s.mu.Lock()
	if s.state == StateClassified {
		s.mu.Unlock()
		return nil, ErrSessionClassified
	}
	responses := s.responses.Clone()
	s.mu.Unlock()

	// The pipeline runs outside the lock; concurrent Record calls
	// between the snapshot and completion do not affect this run.
	result, err := s.engine.FinalizeClassify(ctx, s.id, responses)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClassified {
		// A concurrent Finalize won the race; keep the first result.
		return s.result, nil
	}
	s.state = StateClassified
	s.result = result

	return result, nil
}

// Result returns the final classification, or
// ErrSessionNotClassified when Finalize has not succeeded yet.
func (s *Session) Result() (*domain.TestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateClassified {
		return nil, ErrSessionNotClassified
	}
	return s.result, nil
}

// Reset discards all answers and any result, returning the session to
// the collecting state for a fresh attempt.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateCollecting
	s.responses = domain.NewResponseSet()
	s.result = nil
}
