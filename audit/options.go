package audit

import "log/slog"

// Option configures an Extension.
type Option func(*Extension)

// WithEvents restricts the extension to audit only the listed events.
// By default every watched event is audited. Unknown names are silently
// ignored.
//
// Example:
//
//	audit.New(recorder,
//	    audit.WithEvents(
//	        audit.ActionItemsDelete,
//	        audit.ActionAuthLogin,
//	    ),
//	)
func WithEvents(names ...string) Option {
	return func(e *Extension) {
		e.enabled = make(map[string]bool, len(names))
		for _, n := range names {
			e.enabled[n] = true
		}
	}
}

// WithLogger sets a custom logger for the extension.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extension) { e.logger = l }
}
