// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package api provides the HTTP client for the AlphaBot chat backend.

The backend speaks a single streaming endpoint: POST /api/chat accepts the
conversation history and answers with a Server-Sent-Events-style body of
newline-terminated "data: <JSON>" lines, closed by a "data: [DONE]" sentinel.
Each JSON payload is a tagged StreamEvent (thinking, tool_call, tool_result,
text, done, error).

The decoding pipeline is split in two layers:

  - LineDecoder is a pure, chunk-fed framer. Feed it raw bytes in whatever
    sizes the transport delivers; it buffers partial lines internally and
    emits exactly the same event sequence regardless of how the byte stream
    was sliced. Malformed lines, unknown event types, and non-data lines are
    skipped rather than failing the stream.

  - StreamReader drives a LineDecoder from an io.Reader and invokes a
    callback per event, honoring context cancellation between reads.

Client wraps both behind ChatStream and adds connection management: health
checks, typed errors (ClientError with an ErrorType, plus sentinel errors
for the common cases), and client-side rate limiting.
*/
package api
