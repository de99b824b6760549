package schedule

import (
	"context"
	"time"

	"github.com/AdiechaHK/hooks"
	"github.com/AdiechaHK/hooks/id"
)

// Func is the callback signature for scheduled triggers. The context is
// background-derived: scheduled callbacks run independently of any host
// operation and receive no execution context.
type Func func(ctx context.Context) error

// Entry represents a registered cron schedule. Its lifecycle is tied to
// process uptime; pending triggers are cancelled on shutdown.
type Entry struct {
	hooks.Entity

	ID        id.ScheduleID `json:"id"`
	Cron      string        `json:"cron"`
	Extension string        `json:"extension,omitempty"`
	LastRunAt *time.Time    `json:"last_run_at,omitempty"`
	NextRunAt *time.Time    `json:"next_run_at,omitempty"`
	Enabled   bool          `json:"enabled"`
}

// EntryOption configures an Entry at registration time.
type EntryOption func(*Entry)

// WithExtension stamps the registering extension's name on the entry.
func WithExtension(name string) EntryOption {
	return func(e *Entry) { e.Extension = name }
}
