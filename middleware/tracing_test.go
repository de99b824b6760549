package middleware_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/AdiechaHK/hooks"
	mw "github.com/AdiechaHK/hooks/middleware"
)

func setupTestTracer() (*tracetest.SpanRecorder, trace.Tracer) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	tracer := tp.Tracer("test")
	return sr, tracer
}

func TestTracing_CreatesSpan(t *testing.T) {
	sr, tracer := setupTestTracer()
	m := mw.TracingWithTracer(tracer)
	l := newListener(t)

	err := m(context.Background(), l, "items.create", func(_ context.Context) error {
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	if spans[0].Name() != "hooks.listener.invoke" {
		t.Errorf("expected span name %q, got %q", "hooks.listener.invoke", spans[0].Name())
	}
}

func TestTracing_SpanAttributes(t *testing.T) {
	sr, tracer := setupTestTracer()
	m := mw.TracingWithTracer(tracer)
	l := newListener(t)

	_ = m(context.Background(), l, "items.create", func(_ context.Context) error {
		return nil
	})

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	expected := map[string]string{
		"hooks.event":       "items.create",
		"hooks.kind":        "filter",
		"hooks.listener.id": l.ID.String(),
	}
	got := make(map[string]string)
	for _, attr := range spans[0].Attributes() {
		got[string(attr.Key)] = attr.Value.Emit()
	}
	for key, want := range expected {
		if got[key] != want {
			t.Errorf("attribute %s = %q, want %q", key, got[key], want)
		}
	}
}

func TestTracing_ErrorStatus(t *testing.T) {
	sr, tracer := setupTestTracer()
	m := mw.TracingWithTracer(tracer)

	wantErr := errors.New("listener exploded")
	err := m(context.Background(), newListener(t), "items.create", func(_ context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected listener error, got %v", err)
	}

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("expected Error status, got %v", spans[0].Status().Code)
	}
}

func TestTracing_CancellationIsNotError(t *testing.T) {
	sr, tracer := setupTestTracer()
	m := mw.TracingWithTracer(tracer)

	err := m(context.Background(), newListener(t), "items.create", func(_ context.Context) error {
		return hooks.Cancel("blocked by policy")
	})
	if !hooks.IsCancel(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status().Code == codes.Error {
		t.Error("cancellation must not mark the span as an error")
	}

	var found bool
	for _, ev := range spans[0].Events() {
		if ev.Name == "hooks.cancelled" {
			found = true
		}
	}
	if !found {
		t.Error("expected hooks.cancelled span event")
	}
}
