// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the per-turn event-folding state machine and the
// send loop that drives one streaming request against the backend.
package chat

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/alphabot-dev/alphabot-tui/internal/api"
	"github.com/alphabot-dev/alphabot-tui/internal/session"
)

// =============================================================================
// UPDATES
// =============================================================================

// UpdateKind identifies what changed in the in-flight turn.
type UpdateKind int

const (
	// UpdateStatus carries a new status message (thinking/tool placeholders).
	UpdateStatus UpdateKind = iota
	// UpdateText carries a new text fragment appended to the answer.
	UpdateText
	// UpdateToolCall announces a newly pending tool.
	UpdateToolCall
	// UpdateToolResult announces a completed tool.
	UpdateToolResult
	// UpdateDone carries the finalized assistant content.
	UpdateDone
	// UpdateError carries a terminal error message.
	UpdateError
)

// Update is a UI-facing notification emitted while a send is in flight.
// Updates are emitted synchronously, in event order.
type Update struct {
	Kind UpdateKind
	Text string // fragment, status message, final content, or error message
	Tool string // tool name for UpdateToolCall / UpdateToolResult
}

// UpdateFunc receives turn updates. A nil UpdateFunc is allowed.
type UpdateFunc func(Update)

// =============================================================================
// RUNNER
// =============================================================================

// Streamer is the backend surface the runner needs. *api.Client satisfies
// it; tests substitute scripted streams.
type Streamer interface {
	ChatStream(ctx context.Context, messages []api.Message, callback api.EventCallback) error
}

// ErrBusy is returned when a send is attempted while one is already in
// flight. The contract drops the second call rather than queueing it.
var ErrBusy = errors.New("a message is already in flight")

// Runner drives one send/receive cycle at a time against the backend and
// folds the resulting stream into the active session.
//
// Only one SendMessage may be in flight; concurrent calls return ErrBusy.
type Runner struct {
	client   Streamer
	sessions *session.Manager
	turn     *TurnState

	busy    chan struct{} // 1-slot token; holding it means a send is in flight
	loading atomic.Bool   // mirrors token ownership for lock-free reads
}

// NewRunner creates a runner over a backend client and a session manager.
func NewRunner(client Streamer, sessions *session.Manager) *Runner {
	r := &Runner{
		client:   client,
		sessions: sessions,
		turn:     NewTurnState(),
		busy:     make(chan struct{}, 1),
	}
	r.busy <- struct{}{}
	return r
}

// IsLoading reports whether a send is currently in flight. It only reads;
// it never contends for the busy token, so a concurrent SendMessage can
// never be turned away by a status check.
func (r *Runner) IsLoading() bool {
	return r.loading.Load()
}

// Turn exposes the in-flight turn state for rendering. Read it only from
// the goroutine that called SendMessage, or after SendMessage returned.
func (r *Runner) Turn() *TurnState {
	return r.turn
}

// SendMessage appends a user turn to the active session, streams the
// response, and finalizes an assistant turn. It blocks until the turn
// completes or fails.
//
// Error taxonomy:
//   - ErrBusy: another send is in flight; this call was dropped, the
//     session is untouched
//   - *api.ClientError: the request itself failed; the user turn stays,
//     no assistant turn is appended
//   - *api.ProviderError: the stream carried an error event; accumulated
//     partial content is discarded, no assistant turn is appended
//   - context.Canceled / context.DeadlineExceeded: the stream was cut off
//     mid-turn; partial content is discarded, no assistant turn is appended
//
// A stream that ends without a done event finalizes implicitly with
// whatever content accumulated, including none.
func (r *Runner) SendMessage(ctx context.Context, text string, onUpdate UpdateFunc) error {
	select {
	case tok := <-r.busy:
		r.loading.Store(true)
		defer func() {
			r.loading.Store(false)
			r.busy <- tok
		}()
	default:
		return ErrBusy
	}
	if onUpdate == nil {
		onUpdate = func(Update) {}
	}

	r.sessions.AppendTurn(session.RoleUser, text)
	r.turn.Begin()
	onUpdate(Update{Kind: UpdateStatus, Text: r.turn.Status()})

	messages := historyMessages(r.sessions.ActiveTurns())

	var foldErr error
	sawDone := false
	streamErr := r.client.ChatStream(ctx, messages, func(ev api.StreamEvent) {
		if foldErr != nil || sawDone {
			// Terminal state reached; later events cannot reopen the turn.
			return
		}
		prevTools := len(r.turn.tools)
		done, err := r.turn.Fold(ev)
		if err != nil {
			foldErr = err
			return
		}
		if done {
			sawDone = true
			return
		}
		emitUpdate(ev, r.turn, prevTools, onUpdate)
	})

	if foldErr != nil {
		// Provider error event: transient state is already discarded.
		onUpdate(Update{Kind: UpdateError, Text: foldErr.Error()})
		return foldErr
	}

	var clientErr *api.ClientError
	if errors.As(streamErr, &clientErr) {
		r.turn.Abort()
		onUpdate(Update{Kind: UpdateError, Text: clientErr.Message})
		return streamErr
	}
	if errors.Is(streamErr, context.Canceled) || errors.Is(streamErr, context.DeadlineExceeded) {
		// Cancellation discards partial state like an error event would;
		// it must never finalize an assistant turn.
		r.turn.Abort()
		onUpdate(Update{Kind: UpdateError, Text: streamErr.Error()})
		return streamErr
	}
	if streamErr != nil && !sawDone && r.turn.StreamingContent() == "" && len(r.turn.Tools()) == 0 {
		// Stream failed before producing anything; treat like transport.
		r.turn.Abort()
		onUpdate(Update{Kind: UpdateError, Text: streamErr.Error()})
		return streamErr
	}

	// Structured done, graceful end, or a broken stream with partial
	// output all finalize: implicit completion is not an error.
	content := r.turn.Finalize()
	r.sessions.AppendTurn(session.RoleAssistant, content)
	onUpdate(Update{Kind: UpdateDone, Text: content})
	return nil
}

// emitUpdate maps one folded event to a UI update.
func emitUpdate(ev api.StreamEvent, turn *TurnState, prevTools int, onUpdate UpdateFunc) {
	switch ev.Type {
	case api.EventThinking:
		onUpdate(Update{Kind: UpdateStatus, Text: turn.Status()})
	case api.EventToolCall:
		if len(turn.tools) > prevTools {
			onUpdate(Update{Kind: UpdateToolCall, Tool: ev.Name, Text: turn.Status()})
		} else {
			// Duplicate name: list unchanged, status still refreshed.
			onUpdate(Update{Kind: UpdateStatus, Text: turn.Status()})
		}
	case api.EventToolResult:
		onUpdate(Update{Kind: UpdateToolResult, Tool: ev.Name})
	case api.EventText:
		onUpdate(Update{Kind: UpdateText, Text: ev.Content})
	}
}

// historyMessages converts stored turns to wire messages.
func historyMessages(turns []session.Turn) []api.Message {
	messages := make([]api.Message, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, api.Message{
			Role:    string(t.Role),
			Content: t.Content,
		})
	}
	return messages
}
