package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/AdiechaHK/hooks"
	"github.com/AdiechaHK/hooks/registry"
)

// meterName is the instrumentation scope name for hook metrics.
const meterName = "github.com/AdiechaHK/hooks"

// Metrics returns middleware that records per-listener invocation metrics
// using the global OTel MeterProvider. If no MeterProvider is configured,
// noop instruments are used and this middleware becomes a pass-through.
//
// Instruments:
//   - hooks.listener.duration (Float64Histogram): invocation time in
//     seconds, with attributes: event, kind, status
//   - hooks.listener.invocations (Int64Counter): total invocations,
//     with attributes: event, kind, status
//
// Status is one of "ok", "error", or "cancelled".
func Metrics() Middleware {
	meter := otel.Meter(meterName)
	return MetricsWithMeter(meter)
}

// MetricsWithMeter returns metrics middleware using the provided meter.
// This variant allows injecting a specific MeterProvider for testing.
func MetricsWithMeter(meter metric.Meter) Middleware {
	// Create instruments once at middleware construction time.
	// OTel instruments are safe for concurrent use. On error, the API
	// returns noop instruments so the middleware degrades gracefully.
	duration, dErr := meter.Float64Histogram(
		"hooks.listener.duration",
		metric.WithDescription("Duration of listener invocation in seconds"),
		metric.WithUnit("s"),
	)
	_ = dErr // noop fallback guaranteed by OTel API contract

	invocations, iErr := meter.Int64Counter(
		"hooks.listener.invocations",
		metric.WithDescription("Total number of listener invocations"),
		metric.WithUnit("{invocation}"),
	)
	_ = iErr // noop fallback guaranteed by OTel API contract

	return func(ctx context.Context, l *registry.Listener, event string, next Handler) error {
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start).Seconds()

		status := "ok"
		switch {
		case hooks.IsCancel(err):
			status = "cancelled"
		case err != nil:
			status = "error"
		}

		attrs := metric.WithAttributes(
			attribute.String("event", event),
			attribute.String("kind", l.Kind.String()),
			attribute.String("status", status),
		)

		duration.Record(ctx, elapsed, attrs)
		invocations.Add(ctx, 1, attrs)

		return err
	}
}
