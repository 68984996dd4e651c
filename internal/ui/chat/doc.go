// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the chat view component for the alphabot TUI.

The Model composes Bubble Tea primitives (textinput, viewport, spinner)
over the conversation engine in internal/chat. Streaming replies arrive on
a channel fed by the runner goroutine and are folded into view state one
update per Bubble Tea message; text deltas pass through a StreamingBuffer
that batches them to roughly 30fps so heavy token streams do not swamp the
render loop.

Key bindings: enter sends, ctrl+n starts a new chat, ctrl+y copies the last
answer to the clipboard, ctrl+c or esc quits.
*/
package chat
