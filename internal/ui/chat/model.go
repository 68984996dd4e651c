// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	core "github.com/alphabot-dev/alphabot-tui/internal/chat"
	"github.com/alphabot-dev/alphabot-tui/internal/config"
	"github.com/alphabot-dev/alphabot-tui/internal/session"
	"github.com/alphabot-dev/alphabot-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// chatUpdateMsg delivers one runner update to the Bubble Tea loop.
// ok is false once the send goroutine has finished and closed the channel.
type chatUpdateMsg struct {
	update core.Update
	ok     bool
}

// =============================================================================
// DISPLAY TYPES
// =============================================================================

// displayMessage is one rendered transcript entry.
type displayMessage struct {
	role    session.Role
	content string
}

// toolStatus is one tool-call line for the in-flight turn.
type toolStatus struct {
	name string
	done bool
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat TUI.
type Model struct {
	cfg      *config.Config
	runner   *core.Runner
	sessions *session.Manager

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model

	buffer  *StreamingBuffer
	updates chan core.Update

	messages  []displayMessage
	streaming string       // partial assistant content for the in-flight turn
	tools     []toolStatus // tool calls for the in-flight turn
	status    string
	errText   string

	loading bool
	width   int
	height  int
	ready   bool
}

// New creates the chat TUI model over an existing runner and session state.
func New(cfg *config.Config, runner *core.Runner, sessions *session.Manager) Model {
	input := textinput.New()
	input.Placeholder = "Ask about a stock, the market, your watchlist..."
	input.Focus()
	input.CharLimit = 4000

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(styles.ColorPrimary)

	m := Model{
		cfg:      cfg,
		runner:   runner,
		sessions: sessions,
		input:    input,
		spin:     spin,
		buffer:   NewStreamingBuffer(),
	}

	// Resume the active session's transcript.
	for _, turn := range sessions.ActiveTurns() {
		m.messages = append(m.messages, displayMessage{role: turn.Role, content: turn.Content})
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 1
		footerHeight := 3
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			return m.submit()

		case "ctrl+n":
			if !m.loading {
				m.sessions.StartNewChat()
				m.messages = nil
				m.tools = nil
				m.streaming = ""
				m.status = ""
				m.errText = ""
				m.refreshViewport()
			}

		case "ctrl+y":
			if text, ok := m.lastAssistant(); ok {
				// Best effort; clipboard access fails on headless terminals.
				_ = clipboard.WriteAll(text)
			}

		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}

	case chatUpdateMsg:
		cmd := m.applyUpdate(msg)
		cmds = append(cmds, cmd)

	case StreamTickMsg:
		if content, ok := m.buffer.Flush(); ok {
			m.streaming += content
			m.refreshViewport()
		}
		if m.loading {
			cmds = append(cmds, streamTickCmd())
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.loading {
			cmds = append(cmds, cmd)
		}
	}

	// Scroll keys and mouse wheel go to the viewport.
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit dispatches the typed message, if any, and starts the stream.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if text == "" || m.loading || m.runner.IsLoading() {
		return m, nil
	}

	m.input.Reset()
	m.errText = ""
	m.tools = nil
	m.streaming = ""
	m.loading = true
	m.messages = append(m.messages, displayMessage{role: session.RoleUser, content: text})
	m.buffer.Reset()
	m.refreshViewport()

	updates := make(chan core.Update, 64)
	m.updates = updates

	runner := m.runner
	go func() {
		// SendMessage surfaces every outcome through updates, including
		// terminal errors, so the goroutine only has to close the channel.
		_ = runner.SendMessage(context.Background(), text, func(u core.Update) {
			updates <- u
		})
		close(updates)
	}()

	return m, tea.Batch(
		waitForUpdate(updates),
		streamTickCmd(),
		m.spin.Tick,
	)
}

// applyUpdate folds one runner update into view state.
func (m *Model) applyUpdate(msg chatUpdateMsg) tea.Cmd {
	if !msg.ok {
		// Send goroutine finished; everything terminal already arrived.
		m.loading = false
		m.status = ""
		return nil
	}

	u := msg.update
	switch u.Kind {
	case core.UpdateStatus:
		m.status = u.Text

	case core.UpdateText:
		m.buffer.Write(u.Text)
		m.status = ""

	case core.UpdateToolCall:
		m.tools = append(m.tools, toolStatus{name: u.Tool})
		m.status = u.Text

	case core.UpdateToolResult:
		for i := range m.tools {
			if m.tools[i].name == u.Tool && !m.tools[i].done {
				m.tools[i].done = true
				break
			}
		}

	case core.UpdateDone:
		if content, ok := m.buffer.ForceFlush(); ok {
			m.streaming += content
		}
		m.messages = append(m.messages, displayMessage{role: session.RoleAssistant, content: u.Text})
		m.streaming = ""
		m.tools = nil
		m.status = ""
		m.loading = false
		m.refreshViewport()

	case core.UpdateError:
		m.buffer.Reset()
		m.streaming = ""
		m.tools = nil
		m.status = ""
		m.errText = u.Text
		m.loading = false
		m.refreshViewport()
	}

	return waitForUpdate(m.updates)
}

// waitForUpdate blocks for the next runner update.
func waitForUpdate(ch chan core.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		return chatUpdateMsg{update: u, ok: ok}
	}
}

// lastAssistant returns the most recent assistant message.
func (m *Model) lastAssistant() (string, bool) {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].role == session.RoleAssistant {
			return m.messages[i].content, true
		}
	}
	return "", false
}
