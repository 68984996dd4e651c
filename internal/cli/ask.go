// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alphabot-dev/alphabot-tui/internal/chat"
	"github.com/alphabot-dev/alphabot-tui/internal/ui/styles"
)

// =============================================================================
// ASK COMMAND
// =============================================================================

// HandleAsk sends a one-shot question and streams the answer to stdout.
// Tool activity and status go to stderr so stdout stays pipeable.
// The exchange is persisted as a new session.
func HandleAsk(args []string) {
	parser := NewArgParser(args)
	question := strings.Join(parser.Positional(), " ")
	if question == "" {
		fmt.Fprintln(os.Stderr, "usage: alphabot ask <question>")
		os.Exit(2)
	}

	cfg := loadConfig()
	runner, sessions := buildRuntime(cfg)
	sessions.StartNewChat()

	err := runner.SendMessage(context.Background(), question, func(u chat.Update) {
		switch u.Kind {
		case chat.UpdateToolCall:
			fmt.Fprintln(os.Stderr, styles.ToolLine.Render("→ "+u.Tool))
		case chat.UpdateToolResult:
			fmt.Fprintln(os.Stderr, styles.ToolLine.Render("✓ "+u.Tool))
		case chat.UpdateText:
			fmt.Print(u.Text)
		case chat.UpdateDone:
			fmt.Println()
		}
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.ErrorLine.Render("error: "+err.Error()))
		os.Exit(1)
	}
}
