// alphabot - Terminal client for the AlphaBot market assistant.
//
// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alphabot-dev/alphabot-tui/internal/api"
	"github.com/alphabot-dev/alphabot-tui/internal/chat"
	"github.com/alphabot-dev/alphabot-tui/internal/cli"
	"github.com/alphabot-dev/alphabot-tui/internal/config"
	"github.com/alphabot-dev/alphabot-tui/internal/session"
	"github.com/alphabot-dev/alphabot-tui/internal/storage"
	chatui "github.com/alphabot-dev/alphabot-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI()
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdSessions:
		cli.HandleSessions(args)
	case cli.CmdServe:
		cli.HandleServe(args)
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	}
}

// runTUI wires the full stack and runs the Bubble Tea program.
func runTUI() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:           cfg.Backend.BaseURL,
		Timeout:           cfg.Timeout(),
		RequestsPerMinute: cfg.Backend.RequestsPerMinute,
	})

	var store session.Store
	if cfg.History.Enabled {
		s, err := openStore(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: history disabled: %v\n", err)
		} else {
			store = s
		}
	}

	sessions := session.NewManager(store)
	runner := chat.NewRunner(client, sessions)

	// Hot-reload UI settings while the TUI runs. Backend changes need a
	// restart since the client is already constructed.
	watcher, err := config.Watch(config.DefaultPath(), func(updated *config.Config) {
		cfg.UI = updated.UI
	})
	if err == nil {
		defer watcher.Close()
	}

	p := tea.NewProgram(chatui.New(cfg, runner, sessions), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// openStore opens the configured history store.
func openStore(cfg *config.Config) (*storage.LocalStore, error) {
	if cfg.History.Dir != "" {
		return storage.NewLocalStoreWithDir(cfg.History.Dir)
	}
	return storage.NewLocalStore()
}
