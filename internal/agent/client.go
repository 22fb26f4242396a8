// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Configuration constants for the studio backend API.
const (
	// DefaultTimeout is the default timeout for non-streaming requests.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum allowed response body size for
	// non-streaming endpoints.
	MaxResponseSize = 4 * 1024 * 1024 // 4MB

	// confirmRatePerSec caps background confirmation/rollback traffic so a
	// burst of group operations cannot flood the backend.
	confirmRatePerSec = 5
	confirmBurst      = 10
)

var (
	// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
	// Shared HTTP client for confirmation and rollback requests.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		Timeout: DefaultTimeout,
	}

	// sharedStreamingClient is used for chat streams (no timeout,
	// context-controlled).
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		// No timeout for streaming - controlled via context
	}
)

// Error variables for common backend errors.
var (
	// ErrNotConfigured indicates the backend URL or project id is not set.
	ErrNotConfigured = errors.New("studio backend not configured")
)

// StatusError represents a non-2xx response from the backend.
type StatusError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("studio error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("studio error (HTTP %d)", e.Status)
}

// =============================================================================
// REQUEST / RESPONSE SHAPES
// =============================================================================

// ChatRequest is the outbound body for a chat stream.
type ChatRequest struct {
	ProjectID       string   `json:"project_id"`
	Message         string   `json:"message"`
	References      []string `json:"references"`
	CurrentPhase    string   `json:"current_phase,omitempty"`
	Mode            string   `json:"mode"`
	ConversationID  string   `json:"conversation_id"`
	FollowupContext string   `json:"followup_context,omitempty"`
}

// ConfirmAction is the action field of a confirmation request.
type ConfirmAction string

const (
	ActionAccept    ConfirmAction = "accept"
	ActionReject    ConfirmAction = "reject"
	ActionPartial   ConfirmAction = "partial"
	ActionSupersede ConfirmAction = "supersede"
	ActionUndo      ConfirmAction = "undo"
)

// ConfirmRequest is the body for the suggestion confirmation endpoint.
type ConfirmRequest struct {
	ProjectID       string        `json:"project_id"`
	SuggestionID    string        `json:"suggestion_id"`
	Action          ConfirmAction `json:"action"`
	AcceptedCardIDs []string      `json:"accepted_card_ids,omitempty"`
}

// AppliedCard is one applied edit returned by a successful confirmation.
type AppliedCard struct {
	CardID    string `json:"card_id"`
	EntityID  string `json:"entity_id"`
	VersionID string `json:"version_id"`
}

// ConfirmResponse is the confirmation endpoint's response body.
type ConfirmResponse struct {
	Success      bool          `json:"success"`
	AppliedCards []AppliedCard `json:"applied_cards,omitempty"`
}

// RollbackRequest is the body for the version rollback endpoint.
type RollbackRequest struct {
	EntityID  string `json:"entity_id"`
	VersionID string `json:"version_id"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the studio backend.
type Client struct {
	baseURL   string
	projectID string

	httpClient   *http.Client
	streamClient *http.Client

	// limiter paces confirmation and rollback calls.
	limiter *rate.Limiter
}

// NewClient creates a client for the given backend base URL and project.
func NewClient(baseURL, projectID string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		projectID:    projectID,
		httpClient:   sharedHTTPClient,
		streamClient: sharedStreamingClient,
		limiter:      rate.NewLimiter(rate.Limit(confirmRatePerSec), confirmBurst),
	}
}

// IsConfigured reports whether the client has a usable configuration.
func (c *Client) IsConfigured() bool {
	return c.baseURL != "" && c.projectID != ""
}

// ProjectID returns the project this client operates on.
func (c *Client) ProjectID() string {
	return c.projectID
}

// =============================================================================
// CHAT STREAM
// =============================================================================

// ChatStream opens the streaming chat endpoint and forwards each decoded
// event to the callback. Blocks until the stream ends, the context is
// cancelled, or a transport fault occurs.
func (c *Client) ChatStream(ctx context.Context, req *ChatRequest, callback EventCallback) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}
	if req.ProjectID == "" {
		req.ProjectID = c.projectID
	}

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/agent/chat", bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		return newStatusError(resp.StatusCode, body)
	}

	return DecodeStream(ctx, resp.Body, callback)
}

// =============================================================================
// CONFIRMATION ENDPOINT
// =============================================================================

// Confirm posts a suggestion lifecycle action. The caller has already
// applied the local transition; a failure here is reported but must not be
// rolled back into ledger state.
func (c *Client) Confirm(ctx context.Context, req *ConfirmRequest) (*ConfirmResponse, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if req.ProjectID == "" {
		req.ProjectID = c.projectID
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var out ConfirmResponse
	if err := c.postJSON(ctx, "/v1/suggestions/confirm", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Rollback reverts an entity to a prior version. Success is signaled by
// transport status only.
func (c *Client) Rollback(ctx context.Context, entityID, versionID string) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req := RollbackRequest{EntityID: entityID, VersionID: versionID}
	return c.postJSON(ctx, "/v1/versions/rollback", &req, nil)
}

// =============================================================================
// HELPERS
// =============================================================================

// postJSON posts a JSON body and optionally decodes a JSON response.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// newStatusError builds a StatusError, extracting a message field from the
// body when one is present.
func newStatusError(status int, body []byte) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := ""
	if json.Unmarshal(body, &payload) == nil {
		msg = payload.Error
		if msg == "" {
			msg = payload.Message
		}
	}
	return &StatusError{Status: status, Message: msg}
}
