// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alphabot-dev/alphabot-tui/internal/api"
)

// =============================================================================
// HELPERS
// =============================================================================

// streamEvents posts a chat request and decodes the streamed reply.
func streamEvents(t *testing.T, srv *Server, messages []api.Message) []api.StreamEvent {
	t.Helper()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: ts.URL})
	var events []api.StreamEvent
	err := client.ChatStream(context.Background(), messages, func(ev api.StreamEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}
	return events
}

// =============================================================================
// WIRE FORMAT TESTS
// =============================================================================

func TestChatStreamsScriptedEvents(t *testing.T) {
	script := []api.StreamEvent{
		{Type: api.EventThinking, Content: "Thinking..."},
		{Type: api.EventText, Content: "scripted reply"},
		{Type: api.EventDone, Content: "scripted reply"},
	}
	events := streamEvents(t, NewScripted(script), []api.Message{api.NewUserMessage("hi")})

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i := range script {
		if events[i].Type != script[i].Type || events[i].Content != script[i].Content {
			t.Errorf("event[%d] = %+v, want %+v", i, events[i], script[i])
		}
	}
}

func TestChatRawWireFormat(t *testing.T) {
	srv := NewScripted([]api.StreamEvent{{Type: api.EventText, Content: "x"}})

	req := httptest.NewRequest("POST", "/api/chat",
		strings.NewReader(`{"messages":[{"role":"user","content":"hi"}],"stream":true}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	body := rec.Body.String()
	if !strings.Contains(body, `data: {"type":"text","content":"x"}`) {
		t.Errorf("body missing data line: %q", body)
	}
	if !strings.HasSuffix(strings.TrimRight(body, "\n"), "data: [DONE]") {
		t.Errorf("body must end with the sentinel: %q", body)
	}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestChatRejectsBadRequests(t *testing.T) {
	srv := New()

	cases := []struct {
		name string
		body string
	}{
		{"empty messages", `{"messages":[],"stream":true}`},
		{"invalid json", `{broken`},
		{"bad role", `{"messages":[{"role":"wizard","content":"hi"}],"stream":true}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			if rec.Code != 400 {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var errBody struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &errBody); err != nil || errBody.Error == "" {
				t.Errorf("error body = %q", rec.Body.String())
			}
		})
	}
}

func TestChatRejectsGet(t *testing.T) {
	srv := New()
	req := httptest.NewRequest("GET", "/api/chat", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != 405 {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	srv := New()
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

// =============================================================================
// SYNTHESIS TESTS
// =============================================================================

func TestSynthesizedTickerTriggersToolExchange(t *testing.T) {
	events := streamEvents(t, New(), []api.Message{api.NewUserMessage("how is NVDA today?")})

	var sawCall, sawResult, sawDone bool
	var text strings.Builder
	for _, ev := range events {
		switch ev.Type {
		case api.EventToolCall:
			sawCall = true
			if ev.Name != "get_stock_quote" {
				t.Errorf("tool name = %q", ev.Name)
			}
			var args map[string]string
			if err := json.Unmarshal(ev.Arguments, &args); err != nil || args["symbol"] != "NVDA" {
				t.Errorf("arguments = %s", ev.Arguments)
			}
		case api.EventToolResult:
			sawResult = true
		case api.EventText:
			text.WriteString(ev.Content)
		case api.EventDone:
			sawDone = true
			if ev.Content != text.String() {
				t.Errorf("done content %q != accumulated text %q", ev.Content, text.String())
			}
		}
	}
	if !sawCall || !sawResult || !sawDone {
		t.Errorf("call=%v result=%v done=%v, want all", sawCall, sawResult, sawDone)
	}
	if !strings.Contains(text.String(), "NVDA") {
		t.Errorf("answer = %q, want the symbol mentioned", text.String())
	}
}

func TestSynthesizedPlainQuestion(t *testing.T) {
	events := streamEvents(t, New(), []api.Message{api.NewUserMessage("what should i watch for?")})

	for _, ev := range events {
		if ev.Type == api.EventToolCall {
			t.Error("no ticker in the prompt, no tool call expected")
		}
	}
	if events[len(events)-1].Type != api.EventDone {
		t.Errorf("last event = %v, want done", events[len(events)-1].Type)
	}
}

func TestFindSymbol(t *testing.T) {
	cases := []struct {
		text   string
		symbol string
		ok     bool
	}{
		{"how is NVDA doing", "NVDA", true},
		{"compare msft and amd", "", false},
		{"is IT a buy", "IT", true},
		{"TOOLONGG ticker", "", false},
		{"what about A", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		symbol, ok := findSymbol(tc.text)
		if symbol != tc.symbol || ok != tc.ok {
			t.Errorf("findSymbol(%q) = %q, %v; want %q, %v", tc.text, symbol, ok, tc.symbol, tc.ok)
		}
	}
}
