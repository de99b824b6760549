package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AdiechaHK/hooks"
	"github.com/AdiechaHK/hooks/registry"
)

// tracerName is the instrumentation scope name for hook tracing.
const tracerName = "github.com/AdiechaHK/hooks"

// Tracing returns middleware that wraps listener invocation in an
// OpenTelemetry span. If no TracerProvider is configured globally, the
// default noop tracer is used and this middleware becomes a pass-through
// with zero overhead.
//
// Span attributes include: hooks.event, hooks.kind, hooks.listener.id,
// hooks.extension. On error the span status is set to codes.Error; a
// cancellation signal is recorded as an event, not an error, since it is
// intentional control flow.
func Tracing() Middleware {
	tracer := otel.Tracer(tracerName)
	return TracingWithTracer(tracer)
}

// TracingWithTracer returns tracing middleware using the provided tracer.
// This variant allows injecting a specific TracerProvider for testing or
// when multiple providers are in use.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, l *registry.Listener, event string, next Handler) error {
		ctx, span := tracer.Start(ctx, "hooks.listener.invoke",
			trace.WithAttributes(
				attribute.String("hooks.event", event),
				attribute.String("hooks.kind", l.Kind.String()),
				attribute.String("hooks.listener.id", l.ID.String()),
				attribute.String("hooks.extension", l.Extension),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		err := next(ctx)
		switch {
		case err == nil:
			span.SetStatus(codes.Ok, "")
		case hooks.IsCancel(err):
			span.AddEvent("hooks.cancelled",
				trace.WithAttributes(attribute.String("hooks.cancel.reason", err.Error())))
			span.SetStatus(codes.Ok, "")
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		return err
	}
}
