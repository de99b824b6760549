package registry

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AdiechaHK/hooks"
)

// segmentRe validates one dot-separated pattern segment.
var segmentRe = regexp.MustCompile(`^[a-z0-9_-]+$`)

// pattern is a precompiled event pattern. Compilation happens once at
// registration so lookups never re-parse strings.
type pattern struct {
	raw      string
	segments []string
}

// compilePattern validates and splits an event pattern.
// Patterns are dot-separated segments of [a-z0-9_-], e.g. "items.create"
// or "recipes.items.create".
func compilePattern(raw string) (pattern, error) {
	if raw == "" {
		return pattern{}, fmt.Errorf("registry: empty pattern: %w", hooks.ErrInvalidPattern)
	}

	segments := strings.Split(raw, ".")
	for _, seg := range segments {
		if !segmentRe.MatchString(seg) {
			return pattern{}, fmt.Errorf("registry: pattern %q: bad segment %q: %w",
				raw, seg, hooks.ErrInvalidPattern)
		}
	}

	return pattern{raw: raw, segments: segments}, nil
}

// genericKey returns the lookup key for generic (collection-wildcard)
// matching: the event name with its leading collection segment stripped.
// Collection scoping only applies to events of three or more segments,
// so two-segment names like "auth.login" never match a one-segment
// registration by accident. Returns "" when no generic form exists.
func genericKey(eventName string) string {
	first := strings.IndexByte(eventName, '.')
	if first < 0 {
		return ""
	}
	rest := eventName[first+1:]
	if !strings.Contains(rest, ".") {
		return ""
	}
	return rest
}
