package fsmediator

import "testing"

func TestPermissionCacheGetMiss(t *testing.T) {
	c := NewPermissionCache()
	if _, ok := c.Get("/tmp/foo"); ok {
		t.Error("expected miss on empty cache")
	}
}

func TestPermissionCacheSetGet(t *testing.T) {
	c := NewPermissionCache()
	c.Set("/tmp/foo", DecisionAllowAlways)
	d, ok := c.Get("/tmp/foo")
	if !ok {
		t.Fatal("expected hit")
	}
	if d != DecisionAllowAlways {
		t.Errorf("got %v, want DecisionAllowAlways", d)
	}
}

func TestPermissionCacheRejectAlways(t *testing.T) {
	c := NewPermissionCache()
	c.Set("/tmp/bar", DecisionRejectAlways)
	d, ok := c.Get("/tmp/bar")
	if !ok || d != DecisionRejectAlways {
		t.Errorf("got (%v, %v), want (DecisionRejectAlways, true)", d, ok)
	}
}

func TestPermissionCacheSnapshot(t *testing.T) {
	c := NewPermissionCache()
	c.Set("/tmp/foo", DecisionAllowAlways)
	c.Set("/tmp/bar", DecisionRejectAlways)

	entries := c.Snapshot()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	byPath := map[string]string{}
	for _, e := range entries {
		byPath[e.Path] = e.Decision
	}
	if byPath["/tmp/foo"] != "allow_always" {
		t.Errorf("/tmp/foo decision = %q, want allow_always", byPath["/tmp/foo"])
	}
	if byPath["/tmp/bar"] != "reject_always" {
		t.Errorf("/tmp/bar decision = %q, want reject_always", byPath["/tmp/bar"])
	}
}

func TestPermissionCacheSnapshotEmpty(t *testing.T) {
	c := NewPermissionCache()
	if entries := c.Snapshot(); len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}
