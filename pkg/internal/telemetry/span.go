package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanOptions configures one telemetry span.
type SpanOptions struct {
	// Name is the span's operation name.
	Name string

	// Attributes are key-value pairs attached to the span at start.
	Attributes []attribute.KeyValue

	// EndWhenDone controls whether the span ends automatically when fn
	// returns successfully. A failed fn always ends its span immediately
	// so the error status is visible without waiting on the caller.
	EndWhenDone bool
}

// RecordSpan starts a span named opts.Name, runs fn with it attached to
// ctx, and records any error fn returns on the span before propagating
// it.
func RecordSpan[T any](
	ctx context.Context,
	tracer trace.Tracer,
	opts SpanOptions,
	fn func(context.Context) (T, error),
) (T, error) {
	ctx, span := tracer.Start(ctx, opts.Name, trace.WithAttributes(opts.Attributes...))

	result, err := fn(ctx)

	if err != nil {
		RecordErrorOnSpan(span, err)
		span.End()
		var zero T
		return zero, err
	}

	if opts.EndWhenDone {
		span.End()
	}

	return result, nil
}

// RecordErrorOnSpan records err on span and marks the span's status as
// an error.
func RecordErrorOnSpan(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
