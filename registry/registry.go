// Package registry stores registered listeners keyed by event pattern
// and kind, and resolves the ordered listener sequence for an emission.
//
// Patterns are precompiled at registration. Lookup supports exact names
// and collection-wildcard matching: a listener registered for
// "items.create" also fires for "recipes.items.create". When both
// generic and collection-specific listeners match one emission, generic
// listeners fire first; within each group, registration order holds.
package registry

import (
	"fmt"
	"sync"

	"github.com/AdiechaHK/hooks"
	"github.com/AdiechaHK/hooks/id"
)

// Registry stores listeners for the process lifetime. Safe for
// concurrent use; registration normally happens at extension load time
// but late registration is permitted.
type Registry struct {
	mu sync.RWMutex

	// byPattern buckets listeners per kind and raw pattern, in
	// registration order.
	byPattern map[hooks.Kind]map[string][]*Listener

	// seq is the global registration counter.
	seq int
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		byPattern: make(map[hooks.Kind]map[string][]*Listener),
	}
}

// RegisterAction registers an action listener for the given pattern.
// Duplicate identical registrations are permitted and both fire.
func (r *Registry) RegisterAction(eventPattern string, fn ActionFunc, opts ...Option) (*Listener, error) {
	l := &Listener{Kind: hooks.KindAction, Action: fn}
	return r.register(l, eventPattern, opts)
}

// RegisterFilter registers a filter listener for the given pattern.
func (r *Registry) RegisterFilter(eventPattern string, fn FilterFunc, opts ...Option) (*Listener, error) {
	l := &Listener{Kind: hooks.KindFilter, Filter: fn}
	return r.register(l, eventPattern, opts)
}

// RegisterInit registers an init listener for the given lifecycle point.
func (r *Registry) RegisterInit(eventPattern string, fn InitFunc, opts ...Option) (*Listener, error) {
	l := &Listener{Kind: hooks.KindInit, Init: fn}
	return r.register(l, eventPattern, opts)
}

func (r *Registry) register(l *Listener, eventPattern string, opts []Option) (*Listener, error) {
	p, err := compilePattern(eventPattern)
	if err != nil {
		return nil, err
	}

	l.ID = id.NewListenerID()
	l.Pattern = eventPattern
	l.compiled = p
	for _, opt := range opts {
		opt(l)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	l.Seq = r.seq
	r.seq++

	bucket := r.byPattern[l.Kind]
	if bucket == nil {
		bucket = make(map[string][]*Listener)
		r.byPattern[l.Kind] = bucket
	}
	bucket[eventPattern] = append(bucket[eventPattern], l)

	return l, nil
}

// Lookup returns the listeners matching kind and event name, in dispatch
// order: generic (collection-wildcard) listeners first, then exact
// matches, each group in registration order. The returned slice is owned
// by the caller.
func (r *Registry) Lookup(kind hooks.Kind, eventName string) []*Listener {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.byPattern[kind]
	if bucket == nil {
		return nil
	}

	var out []*Listener
	if gk := genericKey(eventName); gk != "" {
		out = append(out, bucket[gk]...)
	}
	out = append(out, bucket[eventName]...)
	return out
}

// Count returns the number of registered listeners of the given kind.
func (r *Registry) Count(kind hooks.Kind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, ls := range r.byPattern[kind] {
		n += len(ls)
	}
	return n
}

// Validate checks an event pattern without registering anything.
func Validate(eventPattern string) error {
	if _, err := compilePattern(eventPattern); err != nil {
		return fmt.Errorf("registry: validate: %w", err)
	}
	return nil
}
