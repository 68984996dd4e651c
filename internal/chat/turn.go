// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the per-turn event-folding state machine and the
// send loop that drives one streaming request against the backend.
package chat

import (
	"encoding/json"
	"strings"

	"github.com/alphabot-dev/alphabot-tui/internal/api"
)

// =============================================================================
// PHASES
// =============================================================================

// Phase is the state of one in-flight request.
//
// Transitions: Idle → Sending → (Thinking ⇄ ToolRunning ⇄ Streaming)
// → Finalizing → Idle. Error at any point returns directly to Idle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSending
	PhaseThinking
	PhaseToolRunning
	PhaseStreaming
	PhaseFinalizing
)

// String returns the phase name for status display.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSending:
		return "sending"
	case PhaseThinking:
		return "thinking"
	case PhaseToolRunning:
		return "tool-running"
	case PhaseStreaming:
		return "streaming"
	case PhaseFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// DefaultThinkingStatus is shown while waiting for the first event.
const DefaultThinkingStatus = "Thinking..."

// =============================================================================
// PENDING TOOL CALLS
// =============================================================================

// PendingToolCall tracks one tool invocation within the current turn.
// Created when a tool_call event arrives, completed in place when the
// matching tool_result arrives. Discarded when the turn ends.
type PendingToolCall struct {
	Name      string
	Arguments json.RawMessage
	Result    json.RawMessage
	Completed bool
}

// =============================================================================
// TURN STATE
// =============================================================================

// TurnState folds stream events into the transient state of one assistant
// turn: the running text buffer, the ordered pending-tool list, and the
// status message.
//
// TurnState is not safe for concurrent use. The send loop applies events
// one at a time between reads, which is the ordering guarantee the rest of
// the system relies on.
type TurnState struct {
	phase Phase

	// PERFORMANCE: strings.Builder avoids quadratic allocations
	content strings.Builder

	tools     []PendingToolCall
	toolIndex map[string]int

	status string
}

// NewTurnState creates a turn state at rest.
func NewTurnState() *TurnState {
	return &TurnState{
		phase:     PhaseIdle,
		toolIndex: make(map[string]int),
	}
}

// Begin clears transient state and enters Sending.
// Called when a message is dispatched, before any event arrives.
func (t *TurnState) Begin() {
	t.reset()
	t.phase = PhaseSending
	t.status = DefaultThinkingStatus
}

// Fold applies one decoded event to the turn state.
//
// Returns done=true when the event was a structured done event; the caller
// should then call Finalize. An error-typed event aborts the turn: all
// partial content and tool state is discarded, the phase returns to Idle,
// and the provider error is returned.
//
// Later events of the same type append or merge; they never rewrite what an
// earlier event contributed.
func (t *TurnState) Fold(ev api.StreamEvent) (done bool, err error) {
	switch ev.Type {
	case api.EventThinking:
		if ev.Content != "" {
			t.status = ev.Content
		} else {
			t.status = DefaultThinkingStatus
		}
		t.phase = PhaseThinking

	case api.EventToolCall:
		// At most one pending entry per tool name per turn. A second
		// tool_call with a name already seen is ignored for list purposes;
		// this mirrors the upstream producer's observed behavior.
		if _, seen := t.toolIndex[ev.Name]; !seen {
			t.toolIndex[ev.Name] = len(t.tools)
			t.tools = append(t.tools, PendingToolCall{
				Name:      ev.Name,
				Arguments: ev.Arguments,
			})
		}
		t.status = "Running " + ev.Name + "..."
		t.phase = PhaseToolRunning

	case api.EventToolResult:
		if i, seen := t.toolIndex[ev.Name]; seen {
			t.tools[i].Result = ev.Result
			t.tools[i].Completed = true
		}
		// A result for a never-announced tool is dropped; the structured
		// tool_call event is the only source of truth for the list.

	case api.EventText:
		t.content.WriteString(ev.Content)
		// Content arriving means the model moved from tool use to answering.
		t.status = ""
		t.phase = PhaseStreaming

	case api.EventError:
		msg := ev.Content
		t.reset()
		return false, &api.ProviderError{Content: msg}

	case api.EventDone:
		t.phase = PhaseFinalizing
		return true, nil
	}

	return false, nil
}

// Finalize returns the accumulated assistant content and resets the turn
// to Idle. Empty content is a valid finalization: the producer makes no
// guarantee the model emits visible text.
func (t *TurnState) Finalize() string {
	content := t.content.String()
	t.reset()
	return content
}

// Abort discards all transient state and returns to Idle without producing
// an assistant turn. Used for transport errors and cancellation.
func (t *TurnState) Abort() {
	t.reset()
}

// reset clears every transient field.
func (t *TurnState) reset() {
	t.phase = PhaseIdle
	t.content.Reset()
	t.tools = nil
	t.toolIndex = make(map[string]int)
	t.status = ""
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Phase returns the current phase.
func (t *TurnState) Phase() Phase {
	return t.phase
}

// StreamingContent returns the text accumulated so far.
func (t *TurnState) StreamingContent() string {
	return t.content.String()
}

// Status returns the current status message, empty once text is flowing.
func (t *TurnState) Status() string {
	return t.status
}

// Tools returns a copy of the pending-tool list in first-appearance order.
func (t *TurnState) Tools() []PendingToolCall {
	out := make([]PendingToolCall, len(t.tools))
	copy(out, t.tools)
	return out
}
