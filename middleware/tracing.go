package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/netqueue/task"
)

const tracerName = "github.com/xraph/netqueue"

// Tracing wraps each run in a span from the global TracerProvider. With no
// provider configured the noop tracer makes this a pass-through.
func Tracing() Middleware {
	return TracingWithTracer(otel.Tracer(tracerName))
}

// TracingWithTracer is Tracing with an explicit tracer.
//
// Span attributes: netqueue.queue, netqueue.task.id, netqueue.task.name,
// netqueue.task.key.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, queue string, t task.Task, next Handler) error {
		ctx, span := tracer.Start(ctx, "netqueue.task.run",
			trace.WithAttributes(
				attribute.String("netqueue.queue", queue),
				attribute.String("netqueue.task.id", t.ID().String()),
				attribute.String("netqueue.task.name", t.Name()),
				attribute.String("netqueue.task.key", task.KeyOf(t)),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return err
	}
}
