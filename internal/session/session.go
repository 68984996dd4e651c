// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the chat session registry: the persisted list of
// conversations, the active-session pointer, and the mutations user actions
// translate into.
package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// TURN
// =============================================================================

// Role attributes a turn to one side of the conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation. Turns are immutable once appended
// and their order is the causal order of the transcript.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// =============================================================================
// SESSION
// =============================================================================

// TitleMaxRunes is the derived-title length cap before the ellipsis.
const TitleMaxRunes = 40

// Session is a persisted, named conversation.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates an empty session with a fresh opaque id.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:        "sess_" + uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RefreshTitle recomputes the derived title from the first user turn.
// Called whenever the turn list changes; since turns are append-only the
// source turn never changes once present.
func (s *Session) RefreshTitle() {
	s.Title = DeriveTitle(s.Turns)
}

// Preview returns a short single-line preview of the first user turn.
func (s *Session) Preview(maxRunes int) string {
	for _, turn := range s.Turns {
		if turn.Role == RoleUser && turn.Content != "" {
			line := strings.ReplaceAll(turn.Content, "\n", " ")
			line = strings.ReplaceAll(line, "\r", "")
			runes := []rune(line)
			if len(runes) > maxRunes {
				return string(runes[:maxRunes-3]) + "..."
			}
			return line
		}
	}
	return ""
}

// DeriveTitle derives a session title from the first user turn: the first
// 40 runes, with "..." appended when truncated. No user turn yields the
// empty title.
func DeriveTitle(turns []Turn) string {
	for _, turn := range turns {
		if turn.Role == RoleUser {
			runes := []rune(turn.Content)
			if len(runes) > TitleMaxRunes {
				return string(runes[:TitleMaxRunes]) + "..."
			}
			return turn.Content
		}
	}
	return ""
}
