// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides a local mock of the AlphaBot chat backend.
//
// Endpoints:
//   - POST /api/chat - streaming chat (Server-Sent Events)
//   - GET  /health   - health check
//
// The mock speaks the exact wire protocol of the production backend:
// newline-delimited "data: <JSON>" records with a closing "data: [DONE]"
// sentinel. It exists so the client loop, including the tool-call exchange,
// can be exercised offline and in integration tests.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/alphabot-dev/alphabot-tui/internal/api"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultPort is the default port for the mock server.
	DefaultPort = 8780

	// MaxRequestBodySize caps request bodies to prevent abuse (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// MaxMessageCount is the maximum number of messages in a request.
	MaxMessageCount = 100
)

// validRoles is the set of acceptable message roles.
var validRoles = map[string]bool{
	"user":      true,
	"assistant": true,
	"system":    true,
}

// ============================================================================
// SERVER
// ============================================================================

// Server is the mock AlphaBot backend.
type Server struct {
	// Script, when non-nil, is streamed verbatim for every chat request
	// instead of the synthesized reply. Tests use this to pin down exact
	// event sequences.
	Script []api.StreamEvent
}

// New creates a mock server with synthesized replies.
func New() *Server {
	return &Server{}
}

// NewScripted creates a mock server that replays a fixed event script.
func NewScripted(script []api.StreamEvent) *Server {
	return &Server{Script: script}
}

// Handler returns the HTTP handler, suitable for httptest embedding.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// ListenAndServe runs the mock server on the given port.
func (s *Server) ListenAndServe(port int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	return http.ListenAndServe(addr, s.Handler())
}

// ============================================================================
// HANDLERS
// ============================================================================

// handleHealth responds to health checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleChat streams a reply for the posted conversation.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages must not be empty")
		return
	}
	if len(req.Messages) > MaxMessageCount {
		writeError(w, http.StatusBadRequest, "too many messages")
		return
	}
	for i, msg := range req.Messages {
		if !validRoles[msg.Role] {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("invalid role %q at message %d", msg.Role, i))
			return
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	script := s.Script
	if script == nil {
		script = synthesize(req.Messages)
	}

	for _, ev := range script {
		payload, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()

		if r.Context().Err() != nil {
			return
		}
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// writeError sends a JSON error body, matching the production backend.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// ============================================================================
// REPLY SYNTHESIS
// ============================================================================

// synthesize builds a plausible event sequence for the last user message.
// A ticker-looking token triggers a scripted get_stock_quote exchange so
// the full tool-call path is exercised without market data.
func synthesize(messages []api.Message) []api.StreamEvent {
	last := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			last = messages[i].Content
			break
		}
	}

	events := []api.StreamEvent{
		{Type: api.EventThinking, Content: "Thinking..."},
	}

	var answer string
	if symbol, ok := findSymbol(last); ok {
		args, _ := json.Marshal(map[string]string{"symbol": symbol})
		result, _ := json.Marshal(map[string]any{"symbol": symbol, "price": 123.45, "change_pct": 1.2})
		events = append(events,
			api.StreamEvent{Type: api.EventToolCall, Name: "get_stock_quote", Arguments: args},
			api.StreamEvent{Type: api.EventToolResult, Name: "get_stock_quote", Result: result},
		)
		answer = symbol + " is trading at $123.45, up 1.2% today."
	} else {
		answer = "This is a mock reply; point the client at a real backend for live data."
	}

	full := ""
	for _, word := range strings.SplitAfter(answer, " ") {
		full += word
		events = append(events, api.StreamEvent{Type: api.EventText, Content: word})
	}
	events = append(events, api.StreamEvent{Type: api.EventDone, Content: full})
	return events
}

// findSymbol returns the first token that looks like a ticker symbol:
// 2-5 uppercase letters standing alone.
func findSymbol(text string) (string, bool) {
	for _, token := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if len(token) < 2 || len(token) > 5 {
			continue
		}
		upper := true
		for _, r := range token {
			if !unicode.IsUpper(r) {
				upper = false
				break
			}
		}
		if upper {
			return token, true
		}
	}
	return "", false
}
