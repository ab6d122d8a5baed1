package eval

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName identifies this package to OpenTelemetry.
const instrumentationName = "github.com/threatflow/engine/eval"

// otelInstruments holds the OpenTelemetry instruments for the runner.
// These are created once during option processing and reused for all
// evaluations. A nil otelInstruments disables instrumentation.
type otelInstruments struct {
	tracer trace.Tracer

	// durationHistogram records evaluation duration in milliseconds.
	durationHistogram metric.Float64Histogram

	// findingCounter counts emitted findings, attributed by severity.
	findingCounter metric.Int64Counter
}

// WithTracerProvider enables a span per Evaluate call.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Runner) {
		if tp == nil {
			return
		}
		if r.tracing == nil {
			r.tracing = &otelInstruments{}
		}
		r.tracing.tracer = tp.Tracer(instrumentationName)
	}
}

// WithMeterProvider enables duration and finding-count metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(r *Runner) {
		if mp == nil {
			return
		}
		meter := mp.Meter(instrumentationName)
		durationHistogram, err := meter.Float64Histogram(
			"threatflow.evaluate.duration",
			metric.WithDescription("Duration of rule evaluation runs"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return
		}
		findingCounter, err := meter.Int64Counter(
			"threatflow.evaluate.findings",
			metric.WithDescription("Findings emitted by rule evaluation, by severity"),
		)
		if err != nil {
			return
		}
		if r.tracing == nil {
			r.tracing = &otelInstruments{}
		}
		r.tracing.durationHistogram = durationHistogram
		r.tracing.findingCounter = findingCounter
	}
}

// startEvaluate starts the evaluation span. Without a configured
// tracer it returns a non-recording span so callers can End it
// unconditionally.
func (t *otelInstruments) startEvaluate(ctx context.Context, document, runID string, ruleCount int) (context.Context, trace.Span) {
	if t == nil || t.tracer == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return t.tracer.Start(ctx, "threatflow.evaluate",
		trace.WithAttributes(
			attribute.String("threatflow.document", document),
			attribute.String("threatflow.run_id", runID),
			attribute.Int("threatflow.rules", ruleCount),
		))
}

// recordEvaluate records duration and finding-count metrics for one
// completed evaluation.
func (t *otelInstruments) recordEvaluate(ctx context.Context, elapsed time.Duration, result *EvaluationResult) {
	if t == nil {
		return
	}
	if t.durationHistogram != nil {
		t.durationHistogram.Record(ctx, float64(elapsed.Microseconds())/1000.0,
			metric.WithAttributes(attribute.Int("threatflow.findings", len(result.Findings))))
	}
	if t.findingCounter != nil {
		for severity, count := range result.Summary {
			t.findingCounter.Add(ctx, int64(count),
				metric.WithAttributes(attribute.String("severity", severity.String())))
		}
	}
}
