package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/personakit/go-persona/internal/application"
	"github.com/personakit/go-persona/internal/domain"
	"github.com/personakit/go-persona/internal/ports"
)

var _ application.ClassificationObserver = (*OTelClassificationObserver)(nil)

// OTelClassificationObserver implements observability for final
// classification runs using OpenTelemetry tracing. It wraps each run
// in a span carrying the catalog, run identifier, and outcome, and
// optionally forwards score observations to a metrics collector.
type OTelClassificationObserver struct {
	metrics ports.MetricsCollector
	tracer  trace.Tracer
}

// NewOTelClassificationObserver creates an observer. The metrics
// collector may be nil when only tracing is wanted.
func NewOTelClassificationObserver(metrics ports.MetricsCollector) *OTelClassificationObserver {
	return &OTelClassificationObserver{
		metrics: metrics,
		tracer:  otel.Tracer("classification-engine"),
	}
}

// ClassificationStarted implements application.ClassificationObserver.
// It opens a span for the pipeline run and returns a callback that
// finalizes the span with the outcome once the run completes.
func (o *OTelClassificationObserver) ClassificationStarted(
	ctx context.Context, catalogName, runID string,
) (context.Context, func(result *domain.TestResult, err error)) {
	ctx, span := o.tracer.Start(ctx, "Engine.Classify",
		trace.WithAttributes(
			attribute.String("catalog.name", catalogName),
			attribute.String("run.id", runID),
		),
	)
	start := time.Now()

	return ctx, func(result *domain.TestResult, err error) {
		defer span.End()

		if err != nil {
			span.RecordError(err)
			if incomplete, ok := domain.IsIncomplete(err); ok {
				span.AddEvent("classification.incomplete", trace.WithAttributes(
					attribute.Int("missing_questions", len(incomplete.Missing)),
				))
			}
			span.SetStatus(codes.Error, "classification failed")
			return
		}

		span.SetAttributes(
			attribute.String("result.primary_persona", string(result.PrimaryPersonaID)),
			attribute.String("result.secondary_persona", string(result.SecondaryPersonaID)),
			attribute.Int("result.answered_questions", result.AnsweredQuestions),
		)
		span.AddEvent("classification.completed")
		span.SetStatus(codes.Ok, "")

		if o.metrics != nil {
			o.metrics.RecordHistogram("primary_persona_score",
				float64(result.PersonaScores[result.PrimaryPersonaID]),
				map[string]string{
					"catalog": catalogName,
					"persona": string(result.PrimaryPersonaID),
				})
			o.metrics.RecordLatency("classify_observed", time.Since(start), map[string]string{
				"catalog": catalogName,
			})
		}
	}
}
