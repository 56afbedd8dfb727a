package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "bridge_id: my-bridge\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != "127.0.0.1:8137" {
		t.Errorf("expected default bind_addr, got %q", cfg.BindAddr)
	}
	if cfg.Subprotocol != "acp.jsonrpc.v1" {
		t.Errorf("expected default subprotocol, got %q", cfg.Subprotocol)
	}
	if cfg.BridgeID != "my-bridge" {
		t.Errorf("expected configured bridge_id to survive, got %q", cfg.BridgeID)
	}
}

func TestLoadAssignsRandomBridgeID(t *testing.T) {
	path := writeConfig(t, "bind_addr: 127.0.0.1:9000\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BridgeID == "" {
		t.Error("expected a generated bridge_id when none configured")
	}
}

func TestLoadRejectsEmptySubprotocol(t *testing.T) {
	path := writeConfig(t, "subprotocol: \"\"\n")

	if _, err := Load(path); err == nil {
		t.Error("expected Load() to fail on empty subprotocol")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected Load() to fail on a missing file")
	}
}
