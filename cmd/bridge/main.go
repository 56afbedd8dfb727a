package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/loopwire/acpbridge/internal/adminserver"
	"github.com/loopwire/acpbridge/internal/agent"
	"github.com/loopwire/acpbridge/internal/audit"
	"github.com/loopwire/acpbridge/internal/config"
	"github.com/loopwire/acpbridge/internal/version"
	"github.com/loopwire/acpbridge/internal/wsbridge"
)

func main() {
	var (
		showVersion  = flag.Bool("version", false, "Show version and exit")
		configPath   = flag.String("config", "bridge.yaml", "Path to the bridge's YAML config file")
		bindAddr     = flag.String("addr", "", "Override the WebSocket bind address")
		adminAddr    = flag.String("admin-addr", "", "Override the admin HTTP bind address")
		agentCommand = flag.String("agent-command", "", "Override the ACP agent command (e.g. 'claude-code-acp')")
		cwd          = flag.String("cwd", "", "Working directory for sandboxed file operations (defaults to the current directory)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("acpbridge %s\n", version.Version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config %s: %v\n", *configPath, err)
		os.Exit(1)
	}
	if *bindAddr != "" {
		cfg.BindAddr = *bindAddr
	}
	if *adminAddr != "" {
		cfg.AdminBindAddr = *adminAddr
	}
	if *agentCommand != "" {
		cfg.AgentCommand = *agentCommand
	}

	workDir := *cwd
	if workDir == "" {
		workDir, err = os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to determine working directory: %v\n", err)
			os.Exit(1)
		}
	}
	workDir, err = filepath.Abs(workDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid cwd: %v\n", err)
		os.Exit(1)
	}

	var auditStore *audit.Store
	if cfg.AuditDBPath != "" {
		auditStore, err = audit.Open(cfg.AuditDBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open audit db %s: %v\n", cfg.AuditDBPath, err)
			os.Exit(1)
		}
		defer auditStore.Close()
		fmt.Printf("Audit logging enabled (db: %s)\n", cfg.AuditDBPath)
	}

	if cfg.AgentCommand == "" {
		fmt.Fprintf(os.Stderr, "Error: agent_command must be set in the config file or via --agent-command\n")
		os.Exit(1)
	}
	parts, err := config.ParseCommand(cfg.AgentCommand)
	if err != nil || len(parts) == 0 {
		fmt.Fprintf(os.Stderr, "Error: invalid agent_command %q: %v\n", cfg.AgentCommand, err)
		os.Exit(1)
	}

	agentTransport := agent.New(agent.Config{
		Command: parts[0],
		Args:    parts[1:],
		WorkDir: workDir,
		Timeout: cfg.AgentCallTimeout,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := agentTransport.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to start ACP agent: %v\n", err)
		os.Exit(1)
	}
	defer agentTransport.Close()

	bridge := wsbridge.New(cfg, agentTransport, auditStore, workDir)
	handle, err := wsbridge.Serve(cfg.BindAddr, bridge)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to start bridge: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Bridge listening on %s (bridge id: %s)\n", handle.Addr, cfg.BridgeID)

	if auditStore != nil {
		adminHTTPServer := adminserver.New(auditStore, bridge.PermissionCache(), func() error { return nil })
		adminHandle := adminserver.Serve(cfg.AdminBindAddr, adminHTTPServer)
		defer adminHandle.Close()
		fmt.Printf("Admin listener on %s\n", cfg.AdminBindAddr)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := handle.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: bridge shutdown error: %v\n", err)
	}
	handle.Wait()
}
