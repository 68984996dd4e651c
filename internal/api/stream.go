// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the AlphaBot chat backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
)

// =============================================================================
// LINE DECODER
// =============================================================================

// dataPrefix marks a candidate event line in the SSE stream.
const dataPrefix = "data: "

// doneSentinel is the provider's out-of-band stream terminator.
const doneSentinel = "[DONE]"

// LineDecoder converts raw byte chunks into decoded stream events.
//
// It may be fed chunks of any size: a line, a JSON object, or a multi-byte
// UTF-8 character may span any number of chunks. The decoder buffers bytes
// and only splits on newlines, so chunk boundaries never affect the output.
//
// Per-line rules:
//   - only lines starting with "data: " are candidates; blank lines,
//     comments, and event-name lines are ignored
//   - "data: [DONE]" terminates the stream
//   - a line that fails JSON parsing is skipped, never fatal; providers
//     emit malformed fragments under load and the stream must survive them
//   - events with an unknown "type" are dropped
type LineDecoder struct {
	buf  bytes.Buffer
	done bool
}

// NewLineDecoder creates a new line decoder.
func NewLineDecoder() *LineDecoder {
	return &LineDecoder{}
}

// Feed appends a chunk and returns all events completed by it.
// Returns nil when no complete event line arrived yet.
func (d *LineDecoder) Feed(chunk []byte) []StreamEvent {
	if d.done {
		return nil
	}
	d.buf.Write(chunk)

	var events []StreamEvent
	for {
		raw := d.buf.Bytes()
		idx := bytes.IndexByte(raw, '\n')
		if idx < 0 {
			break
		}
		line := string(raw[:idx])
		d.buf.Next(idx + 1)

		ev, ok, terminal := d.decodeLine(line)
		if terminal {
			d.done = true
			break
		}
		if ok {
			events = append(events, ev)
		}
	}
	return events
}

// Close signals end of stream and returns any event completed by a final
// unterminated line. Callers should treat stream end without a structured
// done event as an implicit completion, not an error.
func (d *LineDecoder) Close() []StreamEvent {
	if d.done {
		return nil
	}
	d.done = true

	line := d.buf.String()
	d.buf.Reset()
	if line == "" {
		return nil
	}
	ev, ok, terminal := d.decodeLine(line)
	if terminal || !ok {
		return nil
	}
	return []StreamEvent{ev}
}

// Done reports whether the decoder has observed the end of the stream.
func (d *LineDecoder) Done() bool {
	return d.done
}

// decodeLine parses one complete line. Returns the event, whether the line
// produced an event, and whether it was the [DONE] sentinel.
func (d *LineDecoder) decodeLine(line string) (StreamEvent, bool, bool) {
	// Strip trailing CR from CRLF framing
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}

	if len(line) < len(dataPrefix) || line[:len(dataPrefix)] != dataPrefix {
		return StreamEvent{}, false, false
	}
	payload := line[len(dataPrefix):]

	if payload == doneSentinel {
		return StreamEvent{}, false, true
	}

	var ev StreamEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		// Skip malformed lines
		return StreamEvent{}, false, false
	}
	if !knownEventTypes[ev.Type] {
		return StreamEvent{}, false, false
	}
	return ev, true, false
}

// =============================================================================
// STREAM READER
// =============================================================================

// EventCallback is called for each decoded event, in arrival order.
type EventCallback func(ev StreamEvent)

// readBufferSize is the chunk size for stream reads.
const readBufferSize = 4096

// StreamReader pumps an io.Reader through a LineDecoder.
//
// Reads are the only suspension point; decoding and the callback run
// synchronously between reads, so an event is always applied atomically
// before the next chunk is requested.
type StreamReader struct {
	r       io.Reader
	decoder *LineDecoder
}

// NewStreamReader creates a new stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		r:       r,
		decoder: NewLineDecoder(),
	}
}

// Process reads the stream until EOF, the [DONE] sentinel, or context
// cancellation, invoking the callback for each decoded event.
//
// Returns nil on EOF or sentinel termination. A read error other than EOF
// is returned as-is; events decoded before the failure have already been
// delivered.
func (s *StreamReader) Process(ctx context.Context, callback EventCallback) error {
	buf := make([]byte, readBufferSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := s.r.Read(buf)
		if n > 0 {
			for _, ev := range s.decoder.Feed(buf[:n]) {
				callback(ev)
			}
		}
		if s.decoder.Done() {
			return nil
		}
		if err != nil {
			for _, ev := range s.decoder.Close() {
				callback(ev)
			}
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
