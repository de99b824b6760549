// Package catalog documents the lifecycle events the host emits and the
// meta fields each carries. The catalog is descriptive: emission never
// type-checks meta against it, and listeners may register for events
// the catalog does not know about. It exists so extensions and tooling
// can discover what is available.
package catalog

import "sort"

// events maps a known event name to the meta keys its emissions carry.
// Collection-scoped variants (recipes.items.create) share the shape of
// their generic event.
var events = map[string][]string{
	// Item lifecycle. Emitted once per operation with the affected
	// collection and keys.
	"items.create": {"collection", "payload"},
	"items.read":   {"collection", "query"},
	"items.update": {"collection", "keys", "payload"},
	"items.delete": {"collection", "keys"},

	// Server lifecycle.
	"server.start": {},
	"server.stop":  {},

	// Authentication.
	"auth.login": {"status", "user", "provider"},

	// File handling.
	"files.upload": {"payload", "key"},

	// Route registration points, emitted around host router setup.
	"routes.init.before": {"app"},
	"routes.init.after":  {"app"},

	// Extension lifecycle, emitted around directory loading.
	"extensions.load.before": {"dir"},
	"extensions.load.after":  {"dir", "loaded", "failed"},
}

// Known reports whether name is a catalogued event.
func Known(name string) bool {
	_, ok := events[name]
	return ok
}

// MetaKeys returns the meta field names an emission of the given event
// carries, or nil for uncatalogued events. The returned slice is a
// copy.
func MetaKeys(name string) []string {
	keys, ok := events[name]
	if !ok {
		return nil
	}
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Names returns all catalogued event names, sorted.
func Names() []string {
	out := make([]string, 0, len(events))
	for name := range events {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
