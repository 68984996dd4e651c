// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat implements the conversation engine: the per-turn event-folding
state machine and the runner that drives one exchange end to end.

TurnState folds the backend's event stream into coherent turn state. A turn
moves through Sending, then some interleaving of Thinking, ToolRunning, and
Streaming, then Finalizing. Tool calls are deduplicated by name within the
turn, accumulated text becomes the assistant's message, and an error event
aborts the turn without leaving a partial assistant message behind.

Runner owns the single-in-flight send guarantee. SendMessage appends the
user turn, streams the reply while emitting UI-agnostic Updates through a
callback, and on completion finalizes the assistant turn into the session.
A second SendMessage while one is running returns ErrBusy immediately.
*/
package chat
