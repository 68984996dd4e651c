// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the AlphaBot chat backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the AlphaBot client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeCancelled
	ErrTypeConnection
	ErrTypeInvalidResponse
	ErrTypeProvider
	ErrTypeRateLimited
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning  = &ClientError{Type: ErrTypeNotRunning, Message: "AlphaBot backend is not reachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrRateLimited = &ClientError{Type: ErrTypeRateLimited, Message: "client-side rate limit exceeded"}
)

// ProviderError wraps an error-typed event surfaced mid-stream.
// It is terminal for the turn: any partial content must be discarded.
type ProviderError struct {
	Content string
}

func (e *ProviderError) Error() string {
	return "provider error: " + e.Content
}

// IsNotRunning checks if an error indicates the backend is unreachable.
func IsNotRunning(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotRunning
	}
	return false
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return false
}

// IsCancelled checks if an error came from a cancelled context. A cancel is
// the user's doing and must not be reported as a timeout or outage.
func IsCancelled(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeCancelled
	}
	return errors.Is(err, context.Canceled)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the AlphaBot client.
type ClientConfig struct {
	// BaseURL is the backend base URL (default: http://127.0.0.1:8780)
	// Uses explicit IPv4 to avoid IPv6 resolution issues on Windows.
	BaseURL string

	// Timeout for non-streaming requests (default: 30s)
	Timeout time.Duration

	// RequestsPerMinute caps outgoing chat requests (default: 30).
	// Protects the backend's upstream provider quota from scripted callers.
	RequestsPerMinute int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://127.0.0.1:8780",
		Timeout:           30 * time.Second,
		RequestsPerMinute: 30,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the AlphaBot backend.
//
// The Client is safe for concurrent use, though the chat layer above it
// serializes sends per session.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8780"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RequestsPerMinute == 0 {
		config.RequestsPerMinute = 30
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(config.RequestsPerMinute)/60.0), config.RequestsPerMinute),
	}
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that the backend is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		if errors.Is(err, context.Canceled) {
			return &ClientError{Type: ErrTypeCancelled, Message: "request cancelled", Cause: err}
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from backend: " + resp.Status,
		}
	}

	return nil
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// ChatStream sends the conversation history and streams decoded events to
// the callback, in arrival order, until the stream ends.
//
// A request-level failure (connection refused, non-200 status) is returned
// as a ClientError and no events are delivered. Mid-stream parse failures
// are absorbed by the decoder and never surface here.
func (c *Client) ChatStream(ctx context.Context, messages []Message, callback EventCallback) error {
	if !c.limiter.Allow() {
		return ErrRateLimited
	}

	reqBody := ChatRequest{
		Messages: messages,
		Stream:   true,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	// Use a client without timeout for streaming; timeout is the caller's
	// context, a turn can legitimately run longer than any fixed budget.
	streamClient := &http.Client{}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		if errors.Is(err, context.Canceled) {
			return &ClientError{Type: ErrTypeCancelled, Message: "request cancelled", Cause: err}
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var backendErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&backendErr); err == nil && backendErr.Error != "" {
			return &ClientError{
				Type:    ErrTypeInvalidResponse,
				Message: backendErr.Error,
			}
		}
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "chat request failed: " + resp.Status,
		}
	}

	reader := NewStreamReader(resp.Body)
	return reader.Process(ctx, callback)
}

// ChatStreamChan sends a streaming chat request and returns a channel of
// events. The channel is closed when streaming completes. A request-level
// error is delivered as a final error-typed event.
func (c *Client) ChatStreamChan(ctx context.Context, messages []Message) <-chan StreamEvent {
	ch := make(chan StreamEvent)

	go func() {
		defer close(ch)

		err := c.ChatStream(ctx, messages, func(ev StreamEvent) {
			select {
			case ch <- ev:
			case <-ctx.Done():
			}
		})

		if err != nil {
			select {
			case ch <- StreamEvent{Type: EventError, Content: err.Error()}:
			case <-ctx.Done():
			}
		}
	}()

	return ch
}
