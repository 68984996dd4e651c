// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"

	"github.com/alphabot-dev/alphabot-tui/internal/session"
	"github.com/alphabot-dev/alphabot-tui/internal/ui/styles"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Starting alphabot..."
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusView())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	return b.String()
}

// headerView renders the title bar with the session title.
func (m Model) headerView() string {
	title := m.sessions.ActiveTitle()
	if title == "" {
		title = "new chat"
	}
	// Truncate by display width so CJK titles do not overflow the bar.
	avail := m.width - runewidth.StringWidth("AlphaBot — ") - 1
	if avail > 0 {
		title = runewidth.Truncate(title, avail, "...")
	}
	return styles.Header.Render("AlphaBot — " + title)
}

// statusView renders the spinner/status line, or the error, or hints.
func (m Model) statusView() string {
	if m.errText != "" {
		return styles.ErrorLine.Render("error: " + m.errText)
	}
	if m.loading {
		line := m.status
		if line == "" {
			line = "Streaming..."
		}
		if m.cfg.UI.Spinner {
			return m.spin.View() + styles.StatusBar.Render(line)
		}
		return styles.StatusBar.Render(line)
	}
	return styles.Muted.Render("enter: send · ctrl+n: new chat · ctrl+y: copy answer · ctrl+c: quit")
}

// refreshViewport re-renders the transcript and scrolls to the bottom.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.transcriptView())
	m.viewport.GotoBottom()
}

// transcriptView renders all finished messages plus the in-flight turn.
func (m *Model) transcriptView() string {
	var b strings.Builder

	for _, msg := range m.messages {
		b.WriteString(m.messageView(msg))
		b.WriteString("\n")
	}

	// In-flight turn: tool activity first, then the partial answer.
	for _, tool := range m.tools {
		marker := "→"
		if tool.done {
			marker = "✓"
		}
		b.WriteString(styles.ToolLine.Render(marker+" "+tool.name) + "\n")
	}
	if m.streaming != "" {
		b.WriteString(styles.AssistantLabel.Render("AlphaBot") + "\n")
		b.WriteString(m.streaming + "\n")
	}

	return b.String()
}

// messageView renders one transcript entry.
func (m *Model) messageView(msg displayMessage) string {
	if msg.role == session.RoleUser {
		return styles.UserLabel.Render("You") + "\n" + msg.content + "\n"
	}

	content := msg.content
	if m.cfg.UI.Markdown {
		if rendered, err := m.renderMarkdown(content); err == nil {
			content = rendered
		}
	}
	return styles.AssistantLabel.Render("AlphaBot") + "\n" + content + "\n"
}

// renderMarkdown renders assistant markdown at the viewport width.
// The renderer is rebuilt per call because width changes with the window;
// glamour caches styles internally so this stays cheap enough.
func (m *Model) renderMarkdown(content string) (string, error) {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(content)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}
