// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the command-line surface of alphabot: command
// dispatch and the plain (non-TUI) handlers.
package cli

import (
	"fmt"
	"os"

	"github.com/alphabot-dev/alphabot-tui/internal/api"
	"github.com/alphabot-dev/alphabot-tui/internal/chat"
	"github.com/alphabot-dev/alphabot-tui/internal/config"
	"github.com/alphabot-dev/alphabot-tui/internal/session"
	"github.com/alphabot-dev/alphabot-tui/internal/storage"
)

// Version information (set at build time by main).
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// COMMANDS
// =============================================================================

// Command identifies which handler a CLI invocation routes to.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdSessions
	CmdServe
	CmdVersion
	CmdHelp
)

// Parse maps os.Args onto a command and its remaining arguments.
// No arguments launches the TUI.
func Parse() (Command, []string) {
	args := os.Args[1:]
	if len(args) == 0 {
		return CmdTUI, nil
	}

	switch args[0] {
	case "ask":
		return CmdAsk, args[1:]
	case "chat":
		return CmdChat, args[1:]
	case "sessions", "history":
		return CmdSessions, args[1:]
	case "serve":
		return CmdServe, args[1:]
	case "version", "--version", "-v":
		return CmdVersion, nil
	case "help", "--help", "-h":
		return CmdHelp, nil
	default:
		return CmdHelp, args
	}
}

// HandleVersion prints version information.
func HandleVersion() {
	fmt.Printf("alphabot %s (%s, built %s)\n", Version, GitCommit, BuildDate)
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Print(`alphabot - terminal client for the AlphaBot market assistant

Usage:
  alphabot                    launch the chat TUI
  alphabot ask <question>     one-shot question, streams the answer
  alphabot chat               line-mode REPL (no full-screen UI)
  alphabot sessions           manage chat history
  alphabot serve [--port N]   run the local mock backend
  alphabot version            print version

Sessions subcommands:
  alphabot sessions list
  alphabot sessions show <id>
  alphabot sessions delete <id>
  alphabot sessions search <query>

Environment:
  ALPHABOT_BASE_URL           backend URL (default http://127.0.0.1:8780)
  ALPHABOT_HISTORY_DIR        history directory (default ~/.alphabot)
  ALPHABOT_HISTORY_ENABLED    set to "false" to disable persistence
`)
}

// =============================================================================
// SHARED WIRING
// =============================================================================

// buildRuntime assembles the client, session manager, and runner from
// configuration. Persistence failures degrade to in-memory history.
func buildRuntime(cfg *config.Config) (*chat.Runner, *session.Manager) {
	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:           cfg.Backend.BaseURL,
		Timeout:           cfg.Timeout(),
		RequestsPerMinute: cfg.Backend.RequestsPerMinute,
	})

	var store session.Store
	if cfg.History.Enabled {
		s, err := newStore(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: history disabled: %v\n", err)
		} else {
			store = s
		}
	}

	sessions := session.NewManager(store)
	return chat.NewRunner(client, sessions), sessions
}

// newStore opens the configured history store.
func newStore(cfg *config.Config) (*storage.LocalStore, error) {
	if cfg.History.Dir != "" {
		return storage.NewLocalStoreWithDir(cfg.History.Dir)
	}
	return storage.NewLocalStore()
}

// loadConfig loads configuration or exits with a message.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
