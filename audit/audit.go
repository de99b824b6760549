// Package audit provides a compiled-in extension that bridges lifecycle
// events to an audit trail backend. Hosts register the entrypoint,
// point a manifest at it, and inject their backend through a Recorder.
package audit

import (
	"context"
	"log/slog"

	"github.com/AdiechaHK/hooks"
	"github.com/AdiechaHK/hooks/extension"
	"github.com/AdiechaHK/hooks/scope"
)

// Recorder is the interface audit backends must implement. It is
// defined locally so this package does not depend on any particular
// audit product — callers inject the concrete implementation at wiring
// time.
type Recorder interface {
	// Record persists a fully-formed audit event.
	Record(ctx context.Context, event *Event) error
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *Event) error

func (f RecorderFunc) Record(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// Event is one audit trail entry derived from a lifecycle emission.
type Event struct {
	// Action is the lifecycle event name (items.create, auth.login).
	Action string `json:"action"`

	// Collection is the affected collection, when the event carries one.
	Collection string `json:"collection,omitempty"`

	// UserID identifies the acting user, when the emission ran inside an
	// operation scope.
	UserID string `json:"user_id,omitempty"`

	Severity string         `json:"severity"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Severity constants.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Extension records audit events for watched lifecycle events. Recorder
// failures are logged, never propagated: auditing must not affect the
// host operation.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all watched events enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided
// Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Entrypoint registers an action listener for every watched event. It
// satisfies extension.Entrypoint, so hosts can expose the extension
// with:
//
//	extension.MustRegister("audit", audit.New(recorder).Entrypoint)
func (e *Extension) Entrypoint(_ context.Context, api extension.RegistrationAPI, _ hooks.Capabilities) error {
	for _, name := range WatchedEvents() {
		if e.enabled != nil && !e.enabled[name] {
			continue
		}
		event := name
		if err := api.Action(event, func(ctx context.Context, meta hooks.Meta, ec *scope.ExecutionContext) error {
			e.record(ctx, event, meta, ec)
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

func (e *Extension) record(ctx context.Context, action string, meta hooks.Meta, ec *scope.ExecutionContext) {
	evt := &Event{
		Action:   action,
		Severity: severityFor(action),
		Metadata: map[string]any(meta),
	}
	if c, ok := meta["collection"].(string); ok {
		evt.Collection = c
	}
	if ec != nil && ec.Accountability != nil {
		evt.UserID = ec.Accountability.UserID
	}

	if err := e.recorder.Record(ctx, evt); err != nil {
		e.logger.Warn("audit: failed to record event",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
	}
}

func severityFor(action string) string {
	if action == ActionItemsDelete {
		return SeverityWarning
	}
	return SeverityInfo
}
