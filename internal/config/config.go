package config

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Bridge holds the bridge's immutable configuration, loaded from a YAML
// file and overridable by flags. Fields mirror the bridge instance's
// configuration described in the data model: bind address, origin
// allow-list, subprotocol, and bridge id, plus the ambient stack's own
// settings (audit DB path, admin listener, admin passphrase hash).
type Bridge struct {
	BindAddr      string   `yaml:"bind_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Subprotocol   string   `yaml:"subprotocol"`
	BridgeID      string   `yaml:"bridge_id"`

	AgentCommand string `yaml:"agent_command"`

	AdminBindAddr string `yaml:"admin_bind_addr"`
	AuditDBPath   string `yaml:"audit_db_path"`
	AdminPassphraseHash string `yaml:"admin_passphrase_hash"`

	AgentCallTimeout time.Duration `yaml:"agent_call_timeout"`
}

// Default returns the built-in defaults, matching the loopback-only,
// single-origin posture this bridge is designed for.
func Default() *Bridge {
	return &Bridge{
		BindAddr:         "127.0.0.1:8137",
		AllowedOrigins:   []string{"http://localhost:5173"},
		Subprotocol:      "acp.jsonrpc.v1",
		AdminBindAddr:    "127.0.0.1:8138",
		AuditDBPath:      "bridge_audit.db",
		AgentCallTimeout: 30 * time.Second,
	}
}

// Load reads a YAML bridge config file, filling unset fields from Default
// and assigning a random bridge id when none is configured.
func Load(path string) (*Bridge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BridgeID == "" {
		cfg.BridgeID = uuid.NewString()
	}
	return cfg, nil
}

// Validate fails config load outright on a config that would silently
// misbehave at runtime, rather than falling back to a default.
func (b *Bridge) Validate() error {
	if b.BindAddr == "" {
		return fmt.Errorf("bind_addr must not be empty")
	}
	if b.Subprotocol == "" {
		return fmt.Errorf("subprotocol must not be empty")
	}
	if len(b.AllowedOrigins) == 0 {
		return fmt.Errorf("allowed_origins must not be empty")
	}
	return nil
}
