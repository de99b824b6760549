// Package hooks provides a composable lifecycle hook engine for Go web
// application platforms. It offers library-first event registration and
// dispatch: extensions register callbacks against application lifecycle
// events, and the host emits those events as its operations execute.
//
// Hooks is designed as a library, not a service. Import it, optionally
// configure a store, point the engine at an extensions directory, and
// emit events from the host's operation pipeline.
//
// # Event Kinds
//
// Four kinds of hook are supported:
//
//   - Action: fires after an operation completes; observational only.
//   - Filter: fires before an operation completes; may transform the
//     operation's payload or cancel the operation entirely.
//   - Init: fires at a fixed lifecycle point; no payload.
//   - Schedule: fires on a cron-defined interval, independent of
//     application operations.
//
// # Quick Start
//
//	eng := engine.New(
//	    engine.WithStore(pgStore),
//	    engine.WithExtensionsDir("./extensions"),
//	)
//	if err := eng.Start(ctx); err != nil {
//	    // ...
//	}
//
// # Architecture
//
// Hooks follows a composable store pattern where each subsystem
// (schedule entries, emission audit) defines its own store interface.
// A single backend implements all of them.
//
// All entity IDs use TypeID — type-prefixed, K-sortable, UUIDv7-based,
// compile-time safe identifiers.
package hooks
