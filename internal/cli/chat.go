// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/alphabot-dev/alphabot-tui/internal/chat"
	"github.com/alphabot-dev/alphabot-tui/internal/ui/styles"
)

// =============================================================================
// CHAT COMMAND (LINE-MODE REPL)
// =============================================================================

// replHistoryFile is where liner persists input history, relative to the
// history directory.
const replHistoryFile = "repl_history"

// HandleChat runs a line-mode conversation loop. It keeps full session
// semantics (history, titles, persistence) without the full-screen UI,
// which makes it usable over slow links and inside scripts.
func HandleChat(args []string) {
	cfg := loadConfig()
	runner, sessions := buildRuntime(cfg)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := replHistoryPath(cfg.History.Dir)
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Println("alphabot chat — /new starts a chat, /quit exits")
	if title := sessions.ActiveTitle(); title != "" {
		fmt.Println(styles.Muted.Render("resuming: " + title))
	}

	for {
		input, err := line.Prompt("you> ")
		if err != nil {
			// Ctrl-C or EOF ends the loop.
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch input {
		case "/quit", "/exit":
			saveReplHistory(line, histPath)
			return
		case "/new":
			sessions.StartNewChat()
			fmt.Println(styles.Muted.Render("started a new chat"))
			continue
		}

		if err := streamToTerminal(runner, input); err != nil {
			fmt.Fprintln(os.Stderr, styles.ErrorLine.Render("error: "+err.Error()))
		}
	}

	saveReplHistory(line, histPath)
}

// streamToTerminal sends one message and prints the streamed reply.
func streamToTerminal(runner *chat.Runner, text string) error {
	sawText := false
	return runner.SendMessage(context.Background(), text, func(u chat.Update) {
		switch u.Kind {
		case chat.UpdateToolCall:
			fmt.Println(styles.ToolLine.Render("→ " + u.Tool))
		case chat.UpdateToolResult:
			fmt.Println(styles.ToolLine.Render("✓ " + u.Tool))
		case chat.UpdateText:
			if !sawText {
				fmt.Print(styles.AssistantLabel.Render("bot> "))
				sawText = true
			}
			fmt.Print(u.Text)
		case chat.UpdateDone:
			fmt.Println()
		}
	})
}

// replHistoryPath resolves the liner history file, or "" when history is off.
func replHistoryPath(dir string) string {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".alphabot")
	}
	return filepath.Join(dir, replHistoryFile)
}

// saveReplHistory writes liner history, best effort.
func saveReplHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	if f, err := os.Create(path); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
}
