package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/loopwire/acpbridge/internal/config"
	"github.com/loopwire/acpbridge/internal/tui"
)

func main() {
	var (
		configPath = flag.String("config", "bridge.yaml", "Path to the bridge's YAML config file")
		adminAddr  = flag.String("admin-addr", "", "Override the admin HTTP address to connect to")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config %s: %v\n", *configPath, err)
		os.Exit(1)
	}
	if *adminAddr != "" {
		cfg.AdminBindAddr = *adminAddr
	}

	if cfg.AdminPassphraseHash == "" {
		fmt.Fprintf(os.Stderr, "admin_passphrase_hash is not set in %s; refusing to start an ungated admin TUI\n", *configPath)
		os.Exit(1)
	}

	baseURL := "http://" + cfg.AdminBindAddr
	app := tui.NewApp(baseURL, cfg.AdminPassphraseHash)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
