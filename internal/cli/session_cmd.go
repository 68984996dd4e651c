// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/alphabot-dev/alphabot-tui/internal/session"
	"github.com/alphabot-dev/alphabot-tui/internal/ui/styles"
	"github.com/alphabot-dev/alphabot-tui/internal/util"
)

// =============================================================================
// SESSIONS COMMAND
// =============================================================================

// HandleSessions routes the sessions subcommands: list, show, delete, search.
func HandleSessions(args []string) {
	parser := NewArgParser(args)

	cfg := loadConfig()
	_, sessions := buildRuntime(cfg)

	switch parser.Subcommand() {
	case "", "list":
		listSessions(sessions.List(), sessions.ActiveID())
	case "show":
		rest := parser.Rest()
		if len(rest) == 0 {
			fmt.Fprintln(os.Stderr, "usage: alphabot sessions show <id>")
			os.Exit(2)
		}
		showSession(sessions, rest[0])
	case "delete":
		rest := parser.Rest()
		if len(rest) == 0 {
			fmt.Fprintln(os.Stderr, "usage: alphabot sessions delete <id>")
			os.Exit(2)
		}
		deleteSession(sessions, rest[0])
	case "search":
		rest := parser.Rest()
		if len(rest) == 0 {
			fmt.Fprintln(os.Stderr, "usage: alphabot sessions search <query>")
			os.Exit(2)
		}
		listSessions(sessions.Search(rest[0]), sessions.ActiveID())
	default:
		fmt.Fprintf(os.Stderr, "unknown sessions subcommand %q\n", parser.Subcommand())
		os.Exit(2)
	}
}

// listSessions prints a table of sessions, newest first.
func listSessions(list []session.Session, activeID string) {
	if len(list) == 0 {
		fmt.Println(styles.Muted.Render("no sessions"))
		return
	}

	// Fit the title column to the terminal; previews get the remainder.
	width := terminalWidth()
	titleWidth := 44
	previewWidth := width - titleWidth - 45
	if previewWidth < 20 {
		previewWidth = 20
	}

	for _, s := range list {
		marker := "  "
		if s.ID == activeID {
			marker = styles.UserLabel.Render("* ")
		}
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%s%s  %s  %s  %s\n",
			marker,
			styles.Muted.Render(s.ID),
			util.PadRight(util.TruncateRunes(title, titleWidth), titleWidth),
			s.UpdatedAt.Format("2006-01-02 15:04"),
			styles.Muted.Render(util.TruncateRunes(s.Preview(previewWidth), previewWidth)),
		)
	}
	fmt.Println(styles.Muted.Render(util.IntToString(len(list)) + " session(s)"))
}

// showSession prints one session's full transcript.
func showSession(sessions *session.Manager, id string) {
	s, ok := sessions.Get(id)
	if !ok {
		fmt.Fprintf(os.Stderr, "no session %q\n", id)
		os.Exit(1)
	}

	title := s.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Println(styles.Header.Render(title))
	fmt.Println(styles.Muted.Render(s.ID + " · " + s.CreatedAt.Format("2006-01-02 15:04")))
	fmt.Println()
	for _, turn := range s.Turns {
		if turn.Role == session.RoleUser {
			fmt.Println(styles.UserLabel.Render("You"))
		} else {
			fmt.Println(styles.AssistantLabel.Render("AlphaBot"))
		}
		fmt.Println(turn.Content)
		fmt.Println()
	}
}

// deleteSession removes a session by id.
func deleteSession(sessions *session.Manager, id string) {
	if !sessions.Has(id) {
		fmt.Fprintf(os.Stderr, "no session %q\n", id)
		os.Exit(1)
	}
	sessions.DeleteChat(id)
	fmt.Println("deleted " + id)
}

// terminalWidth returns the stdout terminal width, defaulting to 120.
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 120
}
