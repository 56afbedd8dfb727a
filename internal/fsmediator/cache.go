package fsmediator

import "sync"

// PermissionDecision is a sticky write-permission outcome recorded
// against a canonical path.
type PermissionDecision int

const (
	// DecisionAllowAlways permits writes to this path without asking again.
	DecisionAllowAlways PermissionDecision = iota + 1
	// DecisionRejectAlways denies writes to this path without asking again.
	DecisionRejectAlways
)

// String renders the decision the way the admin TUI and /permissions
// endpoint display it.
func (d PermissionDecision) String() string {
	switch d {
	case DecisionAllowAlways:
		return "allow_always"
	case DecisionRejectAlways:
		return "reject_always"
	default:
		return "unknown"
	}
}

// CacheEntry is one path's sticky decision, for read-only snapshotting.
type CacheEntry struct {
	Path     string `json:"path"`
	Decision string `json:"decision"`
}

// PermissionCache is an append-only map of canonical path to sticky
// permission decision, shared across every connection of one bridge
// instance for its lifetime. Unlike RevittCo-mcplexer's generic
// Cache[K,V], entries here are never evicted or expired: "Once"
// outcomes are deliberately never recorded, so every entry present is
// meant to live forever.
type PermissionCache struct {
	mu      sync.Mutex
	entries map[string]PermissionDecision
}

// NewPermissionCache returns an empty permission cache.
func NewPermissionCache() *PermissionCache {
	return &PermissionCache{entries: make(map[string]PermissionDecision)}
}

// Get returns the recorded decision for canonicalPath, if any.
func (c *PermissionCache) Get(canonicalPath string) (PermissionDecision, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.entries[canonicalPath]
	return d, ok
}

// Set records a sticky decision for canonicalPath. A path that already
// has a decision keeps it; the new decision is ignored.
func (c *PermissionCache) Set(canonicalPath string, decision PermissionDecision) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[canonicalPath]; exists {
		return
	}
	c.entries[canonicalPath] = decision
}

// Snapshot returns a read-only copy of every recorded decision, for the
// admin HTTP listener and TUI. Order is unspecified.
func (c *PermissionCache) Snapshot() []CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := make([]CacheEntry, 0, len(c.entries))
	for path, decision := range c.entries {
		entries = append(entries, CacheEntry{Path: path, Decision: decision.String()})
	}
	return entries
}
