package tui

import (
	"fmt"
	"sync"

	"github.com/gobwas/glob"
)

// Matcher compiles and caches glob patterns used to filter the audit
// log view by JSON-RPC method name.
type Matcher struct {
	cache sync.Map // map[string]glob.Glob
}

// NewMatcher creates a new Matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Compile compiles a glob pattern, caching the result.
func (m *Matcher) Compile(pattern string) (glob.Glob, error) {
	if cached, ok := m.cache.Load(pattern); ok {
		return cached.(glob.Glob), nil
	}

	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}

	m.cache.Store(pattern, g)
	return g, nil
}

// Match reports whether value matches pattern.
func (m *Matcher) Match(pattern, value string) (bool, error) {
	g, err := m.Compile(pattern)
	if err != nil {
		return false, err
	}
	return g.Match(value), nil
}
