package caseid

import (
	"fmt"
	"path"
	"strings"
)

const separator = "/"

// ID identifies a test case by the browser, viewport and component it covers.
type ID struct {
	Browser   string
	Viewport  string
	Component string
}

// New creates an ID from its three parts.
func New(browser, viewport, component string) ID {
	return ID{Browser: browser, Viewport: viewport, Component: component}
}

// String serializes the ID into its canonical `browser/viewport/component` form.
func (id ID) String() string {
	return id.Browser + separator + id.Viewport + separator + id.Component
}

// Pattern is a parsed filter where every segment is a path.Match glob.
type Pattern struct {
	raw      string
	segments [3]string
}

// ParsePattern parses a `browser/viewport/component` glob such as `chromium/*/hero`.
// Missing trailing segments match anything, so `firefox` selects every firefox case.
func ParsePattern(raw string) (Pattern, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Pattern{}, fmt.Errorf("pattern cannot be empty")
	}
	p := Pattern{raw: raw, segments: [3]string{"*", "*", "*"}}
	for i, seg := range strings.SplitN(raw, separator, 3) {
		if seg == "" {
			return Pattern{}, fmt.Errorf("pattern %q has an empty segment at position %d", raw, i)
		}
		if _, err := path.Match(seg, ""); err != nil {
			return Pattern{}, fmt.Errorf("pattern %q: invalid glob %q: %w", raw, seg, err)
		}
		p.segments[i] = seg
	}
	return p, nil
}

// Match reports whether the ID is selected by the pattern.
func (p Pattern) Match(id ID) bool {
	for i, value := range [3]string{id.Browser, id.Viewport, id.Component} {
		ok, _ := path.Match(p.segments[i], value)
		if !ok {
			return false
		}
	}
	return true
}

// String returns the pattern as it was written.
func (p Pattern) String() string {
	return p.raw
}
