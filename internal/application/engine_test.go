package application

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personakit/go-persona/infrastructure/units"
	"github.com/personakit/go-persona/internal/domain"
)

// recordingCollector captures metric calls for assertions.
type recordingCollector struct {
	mu        sync.Mutex
	latencies []string
	counters  map[string]float64
}

func newRecordingCollector() *recordingCollector {
	return &recordingCollector{counters: make(map[string]float64)}
}

func (c *recordingCollector) RecordLatency(operation string, _ time.Duration, _ map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latencies = append(c.latencies, operation)
}

func (c *recordingCollector) RecordCounter(metric string, value float64, _ map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[metric] += value
}

func (c *recordingCollector) RecordGauge(string, float64, map[string]string)     {}
func (c *recordingCollector) RecordHistogram(string, float64, map[string]string) {}

func TestNewEngine(t *testing.T) {
	catalog := quizCatalog(t)

	engine, err := NewEngine(catalog)
	require.NoError(t, err)
	assert.Same(t, catalog, engine.Catalog())

	_, err = NewEngine(nil)
	assert.ErrorContains(t, err, "catalog must not be nil")
}

func TestEngine_Classify(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	engine, err := NewEngine(quizCatalog(t), WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	result, err := engine.Classify(context.Background(), fullResponses())
	require.NoError(t, err)

	assert.Equal(t, domain.PersonaID("idealist"), result.PrimaryPersonaID)
	assert.Equal(t, domain.PersonaID("pragmatist"), result.SecondaryPersonaID)
	assert.Equal(t, domain.PersonaScores{"idealist": 5, "pragmatist": 4, "guardian": 2}, result.PersonaScores)
	assert.Equal(t, 3, result.ValueAxisScores.IndividualCollective)
	assert.Equal(t, 5, result.ValueAxisScores.SecurityFreedom, "reversed axis question should mirror the raw score")
	assert.Equal(t, 0, result.ValueAxisScores.EconomyEnvironment)
	assert.Equal(t, 5, result.AnsweredQuestions)
	assert.Equal(t, fixed, result.ComputedAt)
	assert.Equal(t, "quiz_run_1", result.ID)
}

func TestEngine_Classify_TieBreaksByCatalogOrder(t *testing.T) {
	engine, err := NewEngine(quizCatalog(t))
	require.NoError(t, err)

	// Idealist and pragmatist tie at 3; guardian trails. The earlier
	// catalog declaration wins the tie.
	responses := domain.NewResponseSet(
		domain.UserResponse{QuestionID: "q1", RawScore: 3},
		domain.UserResponse{QuestionID: "q2", RawScore: 3},
		domain.UserResponse{QuestionID: "q3", RawScore: 5}, // guardian +1 after reversal
		domain.UserResponse{QuestionID: "q4", RawScore: 3},
		domain.UserResponse{QuestionID: "q5", RawScore: 3},
	)

	result, err := engine.Classify(context.Background(), responses)
	require.NoError(t, err)
	assert.Equal(t, domain.PersonaID("idealist"), result.PrimaryPersonaID)
	assert.Equal(t, domain.PersonaID("pragmatist"), result.SecondaryPersonaID)
}

func TestEngine_Classify_OrderIndependent(t *testing.T) {
	engine, err := NewEngine(quizCatalog(t))
	require.NoError(t, err)

	answers := []domain.UserResponse{
		{QuestionID: "q1", RawScore: 2},
		{QuestionID: "q2", RawScore: 5},
		{QuestionID: "q3", RawScore: 1},
		{QuestionID: "q4", RawScore: 4},
		{QuestionID: "q5", RawScore: 2},
	}

	baseline, err := engine.Classify(context.Background(), domain.NewResponseSet(answers...))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := make([]domain.UserResponse, len(answers))
		copy(shuffled, answers)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		result, err := engine.Classify(context.Background(), domain.NewResponseSet(shuffled...))
		require.NoError(t, err)
		assert.Equal(t, baseline.PrimaryPersonaID, result.PrimaryPersonaID)
		assert.Equal(t, baseline.SecondaryPersonaID, result.SecondaryPersonaID)
		assert.Equal(t, baseline.PersonaScores, result.PersonaScores)
		assert.Equal(t, baseline.ValueAxisScores, result.ValueAxisScores)
	}
}

func TestEngine_Classify_Idempotent(t *testing.T) {
	engine, err := NewEngine(quizCatalog(t))
	require.NoError(t, err)

	responses := fullResponses()
	first, err := engine.Classify(context.Background(), responses)
	require.NoError(t, err)
	second, err := engine.Classify(context.Background(), responses)
	require.NoError(t, err)

	assert.Equal(t, first.PersonaScores, second.PersonaScores)
	assert.Equal(t, first.ValueAxisScores, second.ValueAxisScores)
	assert.Equal(t, first.PrimaryPersonaID, second.PrimaryPersonaID)
}

func TestEngine_Preview_PartialAnswers(t *testing.T) {
	engine, err := NewEngine(quizCatalog(t))
	require.NoError(t, err)

	// Only two answers recorded; every persona still appears in the
	// totals, unanswered questions contribute nothing.
	responses := domain.NewResponseSet(
		domain.UserResponse{QuestionID: "q1", RawScore: 5},
		domain.UserResponse{QuestionID: "q4", RawScore: 2},
	)

	personaScores, axisScores, err := engine.Preview(context.Background(), responses)
	require.NoError(t, err)

	assert.Equal(t, domain.PersonaScores{"idealist": 5, "pragmatist": 0, "guardian": 0}, personaScores)
	assert.Equal(t, 2, axisScores.IndividualCollective)
	assert.Equal(t, 0, axisScores.SecurityFreedom)
}

func TestEngine_Preview_OutOfRangeScore(t *testing.T) {
	engine, err := NewEngine(quizCatalog(t))
	require.NoError(t, err)

	responses := domain.NewResponseSet(
		domain.UserResponse{QuestionID: "q1", RawScore: 6},
	)

	_, _, err = engine.Preview(context.Background(), responses)
	assert.ErrorIs(t, err, domain.ErrOutOfRangeScore)
}

func TestEngine_FinalizeClassify(t *testing.T) {
	engine, err := NewEngine(quizCatalog(t))
	require.NoError(t, err)

	t.Run("incomplete set reports missing in catalog order", func(t *testing.T) {
		responses := domain.NewResponseSet(
			domain.UserResponse{QuestionID: "q2", RawScore: 3},
			domain.UserResponse{QuestionID: "q4", RawScore: 3},
		)

		_, err := engine.FinalizeClassify(context.Background(), "sess-1", responses)
		incomplete, ok := domain.IsIncomplete(err)
		require.True(t, ok)
		assert.Equal(t, []domain.QuestionID{"q1", "q3", "q5"}, incomplete.Missing)
	})

	t.Run("complete set classifies with session run ID", func(t *testing.T) {
		result, err := engine.FinalizeClassify(context.Background(), "sess-2", fullResponses())
		require.NoError(t, err)
		assert.Equal(t, "sess-2", result.ID)
		assert.Equal(t, domain.PersonaID("idealist"), result.PrimaryPersonaID)
	})
}

func TestEngine_UnknownQuestionPolicy(t *testing.T) {
	responses := fullResponses()
	responses["q99"] = domain.UserResponse{QuestionID: "q99", RawScore: 3}

	t.Run("default policy ignores strays", func(t *testing.T) {
		engine, err := NewEngine(quizCatalog(t))
		require.NoError(t, err)

		result, err := engine.Classify(context.Background(), responses)
		require.NoError(t, err)
		assert.Equal(t, 5, result.AnsweredQuestions, "stray answer should not count")
	})

	t.Run("error policy rejects strays", func(t *testing.T) {
		engine, err := NewEngine(quizCatalog(t), WithNormalizerConfig(units.NormalizerConfig{
			OnUnknownQuestion: units.UnknownError,
		}))
		require.NoError(t, err)

		_, err = engine.Classify(context.Background(), responses)
		assert.ErrorIs(t, err, domain.ErrUnknownQuestion)
	})
}

func TestEngine_Metrics(t *testing.T) {
	collector := newRecordingCollector()
	engine, err := NewEngine(quizCatalog(t), WithMetrics(collector))
	require.NoError(t, err)

	_, err = engine.Classify(context.Background(), fullResponses())
	require.NoError(t, err)
	_, _, err = engine.Preview(context.Background(), fullResponses())
	require.NoError(t, err)

	assert.Contains(t, collector.latencies, "classify")
	assert.Contains(t, collector.latencies, "preview")
	assert.Equal(t, 1.0, collector.counters["classifications_total"])
}

// stubObserver records observer callbacks.
type stubObserver struct {
	started  int
	finished int
	lastErr  error
}

func (o *stubObserver) ClassificationStarted(ctx context.Context, _, _ string) (context.Context, func(*domain.TestResult, error)) {
	o.started++
	return ctx, func(_ *domain.TestResult, err error) {
		o.finished++
		o.lastErr = err
	}
}

func TestEngine_Observer(t *testing.T) {
	observer := &stubObserver{}
	engine, err := NewEngine(quizCatalog(t), WithObserver(observer))
	require.NoError(t, err)

	_, err = engine.Classify(context.Background(), fullResponses())
	require.NoError(t, err)
	assert.Equal(t, 1, observer.started)
	assert.Equal(t, 1, observer.finished)
	assert.NoError(t, observer.lastErr)

	bad := domain.NewResponseSet(domain.UserResponse{QuestionID: "q1", RawScore: 99})
	_, err = engine.Classify(context.Background(), bad)
	require.Error(t, err)
	assert.Equal(t, 2, observer.finished)
	assert.Error(t, observer.lastErr)
}

func TestEngine_CancelledContext(t *testing.T) {
	engine, err := NewEngine(quizCatalog(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = engine.Classify(ctx, fullResponses())
	assert.ErrorIs(t, err, context.Canceled)
}
