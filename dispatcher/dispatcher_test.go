package dispatcher_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AdiechaHK/hooks"
	"github.com/AdiechaHK/hooks/dispatcher"
	"github.com/AdiechaHK/hooks/middleware"
	"github.com/AdiechaHK/hooks/registry"
	"github.com/AdiechaHK/hooks/scope"
	"github.com/AdiechaHK/hooks/store/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEmitFilter_FoldsPayload(t *testing.T) {
	reg := registry.New()

	// Three filters appending suffixes: the final payload is the
	// left-fold of the listeners over the initial payload.
	for i := 0; i < 3; i++ {
		suffix := fmt.Sprintf("-%d", i)
		_, err := reg.RegisterFilter("items.create",
			func(_ context.Context, p any, _ hooks.Meta, _ *scope.ExecutionContext) (any, error) {
				return p.(string) + suffix, nil
			})
		if err != nil {
			t.Fatalf("RegisterFilter: %v", err)
		}
	}

	d := dispatcher.New(reg)
	got, err := d.EmitFilter(context.Background(), "items.create", "seed", nil, nil)
	if err != nil {
		t.Fatalf("EmitFilter: %v", err)
	}
	if got != "seed-0-1-2" {
		t.Errorf("payload = %q, want %q", got, "seed-0-1-2")
	}
}

func TestEmitFilter_NoListenersReturnsOriginal(t *testing.T) {
	d := dispatcher.New(registry.New())

	got, err := d.EmitFilter(context.Background(), "items.create", 42, nil, nil)
	if err != nil {
		t.Fatalf("EmitFilter: %v", err)
	}
	if got != 42 {
		t.Errorf("payload = %v, want 42", got)
	}
}

func TestEmitFilter_CancellationStopsChain(t *testing.T) {
	reg := registry.New()

	var before, after atomic.Int64
	if _, err := reg.RegisterFilter("items.create",
		func(_ context.Context, p any, _ hooks.Meta, _ *scope.ExecutionContext) (any, error) {
			before.Add(1)
			return p, nil
		}); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.RegisterFilter("items.create",
		func(_ context.Context, _ any, _ hooks.Meta, _ *scope.ExecutionContext) (any, error) {
			return nil, hooks.Cancel("forbidden by policy")
		}); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.RegisterFilter("items.create",
		func(_ context.Context, p any, _ hooks.Meta, _ *scope.ExecutionContext) (any, error) {
			after.Add(1)
			return p, nil
		}); err != nil {
		t.Fatal(err)
	}

	d := dispatcher.New(reg)
	_, err := d.EmitFilter(context.Background(), "items.create", "seed", nil, nil)

	// The emitting caller observes the cancellation.
	if !hooks.IsCancel(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if before.Load() != 1 {
		t.Errorf("first listener ran %d times, want 1", before.Load())
	}
	// No subsequent filter listener for that emission executes.
	if after.Load() != 0 {
		t.Errorf("listener after cancellation ran %d times, want 0", after.Load())
	}
}

func TestEmitFilter_CollectionWildcard(t *testing.T) {
	reg := registry.New()

	var invoked atomic.Int64
	if _, err := reg.RegisterFilter("items.create",
		func(_ context.Context, p any, _ hooks.Meta, _ *scope.ExecutionContext) (any, error) {
			invoked.Add(1)
			return p, nil
		}); err != nil {
		t.Fatal(err)
	}

	d := dispatcher.New(reg)
	if _, err := d.EmitFilter(context.Background(), "recipes.items.create", "p", nil, nil); err != nil {
		t.Fatalf("EmitFilter: %v", err)
	}
	if invoked.Load() != 1 {
		t.Errorf("generic listener invoked %d times for scoped event, want 1", invoked.Load())
	}
}

func TestEmitFilter_MetaAndContextPassed(t *testing.T) {
	reg := registry.New()

	ec := &scope.ExecutionContext{
		Accountability: &scope.Accountability{UserID: "user_1"},
	}
	meta := hooks.Meta{"collection": "recipes"}

	if _, err := reg.RegisterFilter("items.create",
		func(_ context.Context, p any, m hooks.Meta, gotEC *scope.ExecutionContext) (any, error) {
			if m["collection"] != "recipes" {
				t.Errorf("meta collection = %v", m["collection"])
			}
			if gotEC != ec {
				t.Error("expected the emission's execution context")
			}
			return p, nil
		}); err != nil {
		t.Fatal(err)
	}

	d := dispatcher.New(reg)
	if _, err := d.EmitFilter(context.Background(), "items.create", "p", meta, ec); err != nil {
		t.Fatalf("EmitFilter: %v", err)
	}
}

func TestEmitAction_ErrorsIsolated(t *testing.T) {
	reg := registry.New()

	var second atomic.Int64
	if _, err := reg.RegisterAction("items.create",
		func(_ context.Context, _ hooks.Meta, _ *scope.ExecutionContext) error {
			return errors.New("first listener fails")
		}); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.RegisterAction("items.create",
		func(_ context.Context, _ hooks.Meta, _ *scope.ExecutionContext) error {
			second.Add(1)
			return nil
		}); err != nil {
		t.Fatal(err)
	}

	d := dispatcher.New(reg)
	if err := d.EmitAction(context.Background(), "items.create", nil, nil); err != nil {
		t.Fatalf("EmitAction must isolate listener failures, got %v", err)
	}
	if second.Load() != 1 {
		t.Errorf("second listener ran %d times, want 1", second.Load())
	}
}

func TestEmitAction_PropagateConfigured(t *testing.T) {
	reg := registry.New()

	want := errors.New("boom")
	var second atomic.Int64
	if _, err := reg.RegisterAction("items.create",
		func(_ context.Context, _ hooks.Meta, _ *scope.ExecutionContext) error {
			return want
		}); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.RegisterAction("items.create",
		func(_ context.Context, _ hooks.Meta, _ *scope.ExecutionContext) error {
			second.Add(1)
			return nil
		}); err != nil {
		t.Fatal(err)
	}

	cfg := hooks.DefaultConfig()
	cfg.PropagateActionErrors = true
	d := dispatcher.New(reg, dispatcher.WithConfig(cfg))

	if err := d.EmitAction(context.Background(), "items.create", nil, nil); !errors.Is(err, want) {
		t.Fatalf("expected propagated error, got %v", err)
	}
	if second.Load() != 0 {
		t.Errorf("second listener ran after propagated failure")
	}
}

func TestEmitAction_Detached(t *testing.T) {
	reg := registry.New()

	var fired atomic.Int64
	for i := 0; i < 3; i++ {
		if _, err := reg.RegisterAction("items.create",
			func(_ context.Context, _ hooks.Meta, _ *scope.ExecutionContext) error {
				fired.Add(1)
				return nil
			}); err != nil {
			t.Fatal(err)
		}
	}

	cfg := hooks.DefaultConfig()
	cfg.ActionMode = hooks.ActionDetached
	d := dispatcher.New(reg, dispatcher.WithConfig(cfg))

	if err := d.EmitAction(context.Background(), "items.create", nil, nil); err != nil {
		t.Fatalf("EmitAction: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Drain(ctx); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if fired.Load() != 3 {
		t.Errorf("fired = %d, want 3", fired.Load())
	}
}

func TestEmitInit_ErrorsIsolated(t *testing.T) {
	reg := registry.New()

	var order []string
	if _, err := reg.RegisterInit("routes.init.before",
		func(_ context.Context, _ hooks.Meta) error {
			order = append(order, "first")
			return errors.New("init listener fails")
		}); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.RegisterInit("routes.init.before",
		func(_ context.Context, _ hooks.Meta) error {
			order = append(order, "second")
			return nil
		}); err != nil {
		t.Fatal(err)
	}

	d := dispatcher.New(reg)
	d.EmitInit(context.Background(), "routes.init.before", nil)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("init listeners = %v, want both in order", order)
	}
}

func TestDispatcher_MiddlewareApplied(t *testing.T) {
	reg := registry.New()

	if _, err := reg.RegisterFilter("items.create",
		func(_ context.Context, _ any, _ hooks.Meta, _ *scope.ExecutionContext) (any, error) {
			panic("listener panic")
		}); err != nil {
		t.Fatal(err)
	}

	d := dispatcher.New(reg, dispatcher.WithMiddleware(middleware.Recover(testLogger())))

	_, err := d.EmitFilter(context.Background(), "items.create", "p", nil, nil)
	if err == nil {
		t.Fatal("expected recovered panic error")
	}
	if hooks.IsCancel(err) {
		t.Error("recovered panic must not look like a cancellation")
	}
}

func TestDispatcher_EmissionAudit(t *testing.T) {
	reg := registry.New()
	st := memory.New()

	if _, err := reg.RegisterFilter("items.create",
		func(_ context.Context, _ any, _ hooks.Meta, _ *scope.ExecutionContext) (any, error) {
			return nil, hooks.Cancel("nope")
		}); err != nil {
		t.Fatal(err)
	}

	d := dispatcher.New(reg, dispatcher.WithStore(st))

	if _, err := d.EmitFilter(context.Background(), "items.create", "p", nil, nil); !hooks.IsCancel(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	d.EmitInit(context.Background(), "server.start", nil)

	got, err := st.ListEmissions(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListEmissions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 emission records, got %d", len(got))
	}
	// Newest first: the init emission, then the cancelled filter.
	if got[0].Name != "server.start" || got[0].Kind != hooks.KindInit {
		t.Errorf("unexpected first record: %+v", got[0])
	}
	if !got[1].Cancelled {
		t.Error("filter emission must be recorded as cancelled")
	}
	if got[1].Listeners != 1 {
		t.Errorf("Listeners = %d, want 1", got[1].Listeners)
	}
}
