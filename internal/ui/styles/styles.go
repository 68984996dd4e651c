// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles defines the shared lipgloss style palette for alphabot.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// PALETTE
// =============================================================================

var (
	// ColorPrimary is the accent used for headers and the user role.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#1d4ed8", Dark: "#60a5fa"}

	// ColorAssistant marks assistant output.
	ColorAssistant = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34d399"}

	// ColorTool marks tool-call activity.
	ColorTool = lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#fbbf24"}

	// ColorError marks terminal errors.
	ColorError = lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#f87171"}

	// ColorMuted is for secondary text: timestamps, status, previews.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
)

// =============================================================================
// STYLES
// =============================================================================

var (
	// Header renders the TUI title bar.
	Header = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	// UserLabel renders the "You" message label.
	UserLabel = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	// AssistantLabel renders the "AlphaBot" message label.
	AssistantLabel = lipgloss.NewStyle().Bold(true).Foreground(ColorAssistant)

	// ToolLine renders tool-call status lines.
	ToolLine = lipgloss.NewStyle().Foreground(ColorTool)

	// ErrorLine renders error messages.
	ErrorLine = lipgloss.NewStyle().Foreground(ColorError)

	// Muted renders secondary text.
	Muted = lipgloss.NewStyle().Foreground(ColorMuted)

	// StatusBar renders the bottom status line.
	StatusBar = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
)

// HasDarkBackground reports whether the terminal background is dark.
// Used by plain CLI output; lipgloss adaptive colors handle the TUI.
func HasDarkBackground() bool {
	return termenv.HasDarkBackground()
}
