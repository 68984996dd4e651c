// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the AlphaBot chat backend.
package api

import "encoding/json"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Message represents a chat message in the conversation history.
type Message struct {
	Role    string `json:"role"`    // "user", "assistant", "system"
	Content string `json:"content"` // The message content
}

// ChatRequest is the request body for the /api/chat endpoint.
type ChatRequest struct {
	Messages []Message `json:"messages"` // Conversation history
	Stream   bool      `json:"stream"`   // Always true for this client
}

// =============================================================================
// STREAM EVENT TYPES
// =============================================================================

// EventType identifies the kind of a stream event.
//
// The wire carries the type as a string discriminator. Modeling it as a
// closed set at the decode boundary means an unknown type value is dropped
// by the decoder instead of corrupting downstream state.
type EventType string

const (
	EventThinking   EventType = "thinking"
	EventToolCall   EventType = "tool_call"
	EventToolResult EventType = "tool_result"
	EventText       EventType = "text"
	EventDone       EventType = "done"
	EventError      EventType = "error"
)

// knownEventTypes is the closed set of event types this client understands.
var knownEventTypes = map[EventType]bool{
	EventThinking:   true,
	EventToolCall:   true,
	EventToolResult: true,
	EventText:       true,
	EventDone:       true,
	EventError:      true,
}

// StreamEvent is one decoded record from the chat event stream.
//
// Exactly one shape per Type is meaningful:
//
//	thinking     Content (optional)
//	tool_call    Name, Arguments
//	tool_result  Name, Result
//	text         Content
//	done         Content (optional, full response)
//	error        Content (error message)
type StreamEvent struct {
	Type      EventType       `json:"type"`
	Content   string          `json:"content,omitempty"`
	Name      string          `json:"name,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
}

// IsTerminal reports whether this event ends the stream from the
// consumer's point of view.
func (e *StreamEvent) IsTerminal() bool {
	return e.Type == EventDone || e.Type == EventError
}

// =============================================================================
// HELPER CONSTRUCTORS
// =============================================================================

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return Message{Role: "system", Content: content}
}
