package scope

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/AdiechaHK/hooks"
)

// ExecutionContext is the per-invocation context object passed to filter
// and action listeners. Schema and Accountability are read-only; Tx may
// be used by listeners to perform additional writes within the same
// transaction as the triggering operation. The host owns commit and
// rollback.
type ExecutionContext struct {
	Tx             pgx.Tx
	Schema         *SchemaSnapshot
	Accountability *Accountability
}

// Builder assembles ExecutionContexts from the request scope on the
// context. One Builder serves the whole engine; it holds no per-request
// state.
type Builder struct{}

// NewBuilder returns a Builder.
func NewBuilder() *Builder { return &Builder{} }

// Build resolves the request scope attached to ctx into an
// ExecutionContext. It fails with hooks.ErrContextUnavailable when
// invoked outside an operation scope, or before the schema snapshot is
// loaded (early init).
func (b *Builder) Build(ctx context.Context) (*ExecutionContext, error) {
	req, ok := RequestFrom(ctx)
	if !ok {
		return nil, fmt.Errorf("scope: build: %w", hooks.ErrContextUnavailable)
	}
	if req.Schema == nil {
		return nil, fmt.Errorf("scope: build: schema not loaded: %w", hooks.ErrContextUnavailable)
	}

	return &ExecutionContext{
		Tx:             req.Tx,
		Schema:         req.Schema,
		Accountability: req.Accountability,
	}, nil
}
