package hooks

import (
	"time"

	"golang.org/x/time/rate"
)

// ActionMode selects how action listeners are dispatched.
type ActionMode string

const (
	// ActionSequential runs action listeners in the emitting caller's
	// goroutine, one after another. Failures are observable in logs
	// before the emit call returns.
	ActionSequential ActionMode = "sequential"

	// ActionDetached runs each action listener in its own goroutine,
	// detached from the triggering operation's critical path. Trades
	// observability of failures for throughput.
	ActionDetached ActionMode = "detached"
)

// Config holds configuration for the hook engine.
type Config struct {
	// ActionMode selects sequential or detached action dispatch.
	ActionMode ActionMode

	// PropagateActionErrors, when set, makes sequential action dispatch
	// return the first listener error to the emitting caller instead of
	// only logging it. Has no effect in detached mode.
	PropagateActionErrors bool

	// ActionRateLimit bounds how many detached action listeners may be
	// launched per second. Zero means unlimited.
	ActionRateLimit rate.Limit

	// ActionRateBurst is the burst size for the detached rate limiter.
	ActionRateBurst int

	// StrictLoad aborts extension loading on the first failure instead
	// of isolating it and continuing with the remaining extensions.
	StrictLoad bool

	// TickInterval is how often the scheduler checks for due entries.
	TickInterval time.Duration

	// ShutdownTimeout bounds how long Stop waits for in-flight scheduled
	// invocations and store teardown.
	ShutdownTimeout time.Duration

	// DisableMigrate skips store migration on engine start.
	DisableMigrate bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ActionMode:      ActionSequential,
		ActionRateBurst: 1,
		TickInterval:    1 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}
