package hooks

import "time"

// Kind identifies the dispatch semantics of a registered listener.
type Kind string

// Listener kinds.
const (
	// KindAction fires after an operation completes. Observational only:
	// return values are ignored and failures never reach the emitting caller.
	KindAction Kind = "action"

	// KindFilter fires before an operation completes. Filters receive the
	// operation payload, may transform it, and may cancel the operation.
	KindFilter Kind = "filter"

	// KindInit fires at a fixed lifecycle point. No payload, no cancellation.
	KindInit Kind = "init"

	// KindSchedule fires on a cron-defined interval, independent of
	// application operations.
	KindSchedule Kind = "schedule"
)

// Valid reports whether k is a known listener kind.
func (k Kind) Valid() bool {
	switch k {
	case KindAction, KindFilter, KindInit, KindSchedule:
		return true
	}
	return false
}

// String returns the kind's wire name.
func (k Kind) String() string { return string(k) }

// Meta carries event-specific auxiliary data accompanying an emission.
// The set of keys depends on the event name (see the catalog package);
// the engine never type-checks meta shapes.
type Meta map[string]any

// Entity provides common timestamp fields embedded by persisted entities.
type Entity struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
