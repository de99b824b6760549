// Package scope captures and restores per-operation execution state:
// the active database transaction, the schema snapshot, and the
// accountability (identity) of the acting user.
//
// The host attaches a Request to the context at the start of each
// operation via WithRequest. The Builder assembles the ExecutionContext
// passed to filter and action listeners from that request scope, so
// listener writes participate in the same atomic unit as the triggering
// operation.
package scope

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Accountability is the identity and permission context of the acting
// user. Read-only to listeners.
type Accountability struct {
	UserID    string `json:"user_id,omitempty"`
	Role      string `json:"role,omitempty"`
	Admin     bool   `json:"admin"`
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// SchemaSnapshot is a read-only view of the host's data model at the
// time the operation started: collection names mapped to field names.
type SchemaSnapshot struct {
	Collections map[string][]string
}

// HasCollection reports whether the snapshot contains the collection.
func (s *SchemaSnapshot) HasCollection(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.Collections[name]
	return ok
}

// Fields returns the field names of a collection, or nil if unknown.
func (s *SchemaSnapshot) Fields(collection string) []string {
	if s == nil {
		return nil
	}
	return s.Collections[collection]
}

// Request is the per-operation scope the host attaches to the context.
// Tx is the operation's active transaction; all listeners invoked for
// one emission share it. Concurrent operations each carry their own
// Request and therefore their own transaction.
type Request struct {
	Tx             pgx.Tx
	Schema         *SchemaSnapshot
	Accountability *Accountability
}

type requestKey struct{}

// WithRequest attaches the operation scope to the context.
func WithRequest(ctx context.Context, r *Request) context.Context {
	if r == nil {
		return ctx
	}
	return context.WithValue(ctx, requestKey{}, r)
}

// RequestFrom extracts the operation scope from the context.
func RequestFrom(ctx context.Context) (*Request, bool) {
	r, ok := ctx.Value(requestKey{}).(*Request)
	return r, ok
}
