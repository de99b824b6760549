package registry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AdiechaHK/hooks"
	"github.com/AdiechaHK/hooks/registry"
	"github.com/AdiechaHK/hooks/scope"
)

func noopAction(_ context.Context, _ hooks.Meta, _ *scope.ExecutionContext) error { return nil }

func noopFilter(_ context.Context, payload any, _ hooks.Meta, _ *scope.ExecutionContext) (any, error) {
	return payload, nil
}

func TestRegistry_ExactLookup(t *testing.T) {
	r := registry.New()

	l, err := r.RegisterAction("items.create", noopAction)
	if err != nil {
		t.Fatalf("RegisterAction: %v", err)
	}
	if l.ID.IsNil() {
		t.Error("expected a listener ID")
	}

	got := r.Lookup(hooks.KindAction, "items.create")
	if len(got) != 1 || got[0] != l {
		t.Fatalf("Lookup = %v, want the registered listener", got)
	}

	// Kind isolation: no filter listeners registered.
	if got := r.Lookup(hooks.KindFilter, "items.create"); len(got) != 0 {
		t.Errorf("expected no filter listeners, got %d", len(got))
	}
}

func TestRegistry_CollectionWildcard(t *testing.T) {
	r := registry.New()

	generic, err := r.RegisterFilter("items.create", noopFilter)
	if err != nil {
		t.Fatalf("RegisterFilter: %v", err)
	}

	// Emitting the collection-scoped event must invoke the generic
	// registration.
	got := r.Lookup(hooks.KindFilter, "recipes.items.create")
	if len(got) != 1 || got[0] != generic {
		t.Fatalf("Lookup(recipes.items.create) = %v, want the generic listener", got)
	}
}

func TestRegistry_GenericBeforeSpecific(t *testing.T) {
	r := registry.New()

	// Register collection-specific first so ordering cannot be an
	// accident of registration order.
	specific, err := r.RegisterFilter("recipes.items.create", noopFilter)
	if err != nil {
		t.Fatalf("RegisterFilter(specific): %v", err)
	}
	generic, err := r.RegisterFilter("items.create", noopFilter)
	if err != nil {
		t.Fatalf("RegisterFilter(generic): %v", err)
	}

	got := r.Lookup(hooks.KindFilter, "recipes.items.create")
	if len(got) != 2 {
		t.Fatalf("expected 2 listeners, got %d", len(got))
	}
	if got[0] != generic || got[1] != specific {
		t.Error("expected generic listener to fire before collection-specific")
	}
}

func TestRegistry_RegistrationOrderWithinPattern(t *testing.T) {
	r := registry.New()

	var order []*registry.Listener
	for i := 0; i < 4; i++ {
		l, err := r.RegisterAction("items.update", noopAction)
		if err != nil {
			t.Fatalf("RegisterAction: %v", err)
		}
		order = append(order, l)
	}

	got := r.Lookup(hooks.KindAction, "items.update")
	if len(got) != 4 {
		t.Fatalf("expected 4 listeners, got %d", len(got))
	}
	for i := range got {
		if got[i] != order[i] {
			t.Fatalf("listener %d out of registration order", i)
		}
	}
}

func TestRegistry_DuplicatesBothFire(t *testing.T) {
	r := registry.New()

	// Identical registrations are not deduplicated.
	if _, err := r.RegisterAction("items.delete", noopAction); err != nil {
		t.Fatal(err)
	}
	if _, err := r.RegisterAction("items.delete", noopAction); err != nil {
		t.Fatal(err)
	}

	if got := r.Lookup(hooks.KindAction, "items.delete"); len(got) != 2 {
		t.Errorf("expected both duplicate listeners, got %d", len(got))
	}
}

func TestRegistry_TwoSegmentEventsNeverGenericMatch(t *testing.T) {
	r := registry.New()

	// A one-segment registration must not match two-segment events:
	// collection scoping applies to three or more segments only.
	if _, err := r.RegisterAction("login", noopAction); err != nil {
		t.Fatal(err)
	}

	if got := r.Lookup(hooks.KindAction, "auth.login"); len(got) != 0 {
		t.Errorf("expected no match for auth.login, got %d", len(got))
	}
}

func TestRegistry_InvalidPatterns(t *testing.T) {
	r := registry.New()

	bad := []string{
		"",
		".items.create",
		"items..create",
		"items.create.",
		"Items.Create",
		"items create",
		"items.cre*te",
	}

	for _, p := range bad {
		if _, err := r.RegisterAction(p, noopAction); !errors.Is(err, hooks.ErrInvalidPattern) {
			t.Errorf("RegisterAction(%q): expected ErrInvalidPattern, got %v", p, err)
		}
	}
}

func TestRegistry_Options(t *testing.T) {
	r := registry.New()

	l, err := r.RegisterFilter("items.create", noopFilter,
		registry.WithExtension("audit"),
		registry.WithTimeout(5*time.Second),
	)
	if err != nil {
		t.Fatalf("RegisterFilter: %v", err)
	}
	if l.Extension != "audit" {
		t.Errorf("Extension = %q, want %q", l.Extension, "audit")
	}
	if l.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", l.Timeout)
	}
}

func TestRegistry_Count(t *testing.T) {
	r := registry.New()

	if _, err := r.RegisterAction("items.create", noopAction); err != nil {
		t.Fatal(err)
	}
	if _, err := r.RegisterAction("items.update", noopAction); err != nil {
		t.Fatal(err)
	}
	if _, err := r.RegisterFilter("items.create", noopFilter); err != nil {
		t.Fatal(err)
	}

	if got := r.Count(hooks.KindAction); got != 2 {
		t.Errorf("Count(action) = %d, want 2", got)
	}
	if got := r.Count(hooks.KindFilter); got != 1 {
		t.Errorf("Count(filter) = %d, want 1", got)
	}
}

func TestValidate(t *testing.T) {
	if err := registry.Validate("items.create"); err != nil {
		t.Errorf("Validate(items.create): %v", err)
	}
	if err := registry.Validate("bad pattern"); !errors.Is(err, hooks.ErrInvalidPattern) {
		t.Errorf("expected ErrInvalidPattern, got %v", err)
	}
}
