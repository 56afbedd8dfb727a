package login

import (
	"os"
	"os/exec"
	"path/filepath"
	"sync"
)

// resolveMu serializes environment-variable reads during resolution; it
// is not a protection of the spawned child, only of the resolver's own
// view of the environment.
var resolveMu sync.Mutex

// command is a resolved CLI invocation: executable path plus argv[1:].
type command struct {
	path string
	args []string
}

// resolveCLI implements the fixed probe order: env overrides first, then
// the zed-industries/claude-code-acp node_modules layout, then PATH.
func resolveCLI(cwd string) (*command, error) {
	resolveMu.Lock()
	defer resolveMu.Unlock()

	if os.Getenv("TEST_MODE_FAIL") != "" {
		return nil, resolutionFailed()
	}

	if path := os.Getenv("TEST_CLAUDE_CLI_PATH"); path != "" {
		return &command{path: path}, nil
	}

	if path := os.Getenv("CLAUDE_ACP_BIN"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return &command{path: path}, nil
		}
	}

	acpEntry := filepath.Join(cwd, "node_modules", "@zed-industries", "claude-code-acp", "dist", "index.js")
	cliPath := filepath.Join(cwd, "node_modules", "@anthropic-ai", "claude-code", "cli.js")
	if _, err := os.Stat(acpEntry); err == nil {
		if _, err := os.Stat(cliPath); err == nil {
			return &command{path: "node", args: []string{cliPath}}, nil
		}
	}

	if path, err := exec.LookPath("claude"); err == nil {
		return &command{path: path}, nil
	}

	return nil, resolutionFailed()
}
