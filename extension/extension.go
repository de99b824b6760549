// Package extension loads hook extensions from a directory of
// manifests. Entrypoints are compiled-in Go functions registered by
// name, the way database/sql drivers register themselves; a manifest
// binds a directory to an entrypoint and the Loader calls each enabled
// entrypoint exactly once per process.
package extension

import (
	"context"
	"fmt"
	"sync"

	"github.com/AdiechaHK/hooks"
	"github.com/AdiechaHK/hooks/registry"
	"github.com/AdiechaHK/hooks/schedule"
)

// Entrypoint is the function an extension exposes to the engine. It
// registers the extension's listeners and schedules through api and may
// hold on to caps for use inside callbacks. Returning an error (or
// panicking) marks the extension as failed to load.
type Entrypoint func(ctx context.Context, api RegistrationAPI, caps hooks.Capabilities) error

// RegistrationAPI is the registration surface handed to an entrypoint.
// The engine implements it per extension so every listener and schedule
// created through it carries the extension's name.
type RegistrationAPI interface {
	// Action registers an action listener for the event pattern.
	Action(event string, fn registry.ActionFunc) error

	// Filter registers a filter listener for the event pattern.
	Filter(event string, fn registry.FilterFunc) error

	// Init registers an init listener for the event pattern.
	Init(event string, fn registry.InitFunc) error

	// Schedule registers a cron-driven callback.
	Schedule(cronExpr string, fn schedule.Func) error
}

// APIFactory returns the registration surface for one named extension.
type APIFactory func(extName string) RegistrationAPI

var (
	entrypointsMu sync.RWMutex
	entrypoints   = make(map[string]Entrypoint)
)

// Register makes an entrypoint available to manifests under the given
// name. Extensions call it from an init function or early in main.
func Register(name string, ep Entrypoint) error {
	if name == "" || ep == nil {
		return fmt.Errorf("%w: empty name or nil entrypoint", hooks.ErrExtensionLoad)
	}

	entrypointsMu.Lock()
	defer entrypointsMu.Unlock()

	if _, dup := entrypoints[name]; dup {
		return fmt.Errorf("%w: %s", hooks.ErrDuplicateEntrypoint, name)
	}
	entrypoints[name] = ep
	return nil
}

// MustRegister is Register that panics on error, for use in package
// init functions.
func MustRegister(name string, ep Entrypoint) {
	if err := Register(name, ep); err != nil {
		panic(err)
	}
}

// Entrypoints returns the names of all registered entrypoints.
func Entrypoints() []string {
	entrypointsMu.RLock()
	defer entrypointsMu.RUnlock()

	out := make([]string, 0, len(entrypoints))
	for name := range entrypoints {
		out = append(out, name)
	}
	return out
}

func lookupEntrypoint(name string) (Entrypoint, bool) {
	entrypointsMu.RLock()
	defer entrypointsMu.RUnlock()

	ep, ok := entrypoints[name]
	return ep, ok
}
