// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation timeline.
package model

import (
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Agent"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE ID
// =============================================================================

// provisionalPrefix marks client-minted ids that have not yet been confirmed
// by the backend. Durable ids never carry this prefix.
const provisionalPrefix = "local-"

// MessageID identifies a message. A provisional id is minted on the client
// at send time and replaced in place once the backend confirms the durable
// id via a user_saved or done event.
type MessageID string

// NewProvisionalID mints a time-based provisional message id.
func NewProvisionalID() MessageID {
	return MessageID(provisionalPrefix + strconv.FormatInt(time.Now().UnixNano(), 10))
}

// Provisional reports whether the id is still client-minted.
func (id MessageID) Provisional() bool {
	return strings.HasPrefix(string(id), provisionalPrefix)
}

// String returns the id as a plain string.
func (id MessageID) String() string {
	return string(id)
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
type Message struct {
	// Identity
	ID        MessageID `json:"id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`

	// Content
	Content  string `json:"content"`
	IsEdited bool   `json:"is_edited,omitempty"`

	// Streaming state (not persisted).
	// PERFORMANCE: strings.Builder avoids quadratic allocations during streaming
	IsStreaming   bool            `json:"-"`
	streamContent strings.Builder `json:"-"`

	// Presentation metadata for the open assistant message
	Activity string `json:"-"` // current activity label ("analyzing intent", ...)
	Route    string `json:"-"` // last route target reported by the stream
	Failed   bool   `json:"failed,omitempty"`

	// Ordered card summaries rendered inside the message
	CardSummaries []string `json:"card_summaries,omitempty"`

	// Token statistics (display-only, assistant messages)
	TokenCount    int           `json:"token_count,omitempty"`
	TTFT          time.Duration `json:"ttft_ns,omitempty"`
	TotalDuration time.Duration `json:"total_duration_ns,omitempty"`
}

// NewUserMessage creates a user message with a provisional id.
func NewUserMessage(content string) *Message {
	return &Message{
		ID:        NewProvisionalID(),
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewAssistantMessage creates an empty, streaming assistant message with a
// provisional id. Exactly one assistant message is open per send cycle.
func NewAssistantMessage() *Message {
	return &Message{
		ID:          NewProvisionalID(),
		Role:        RoleAssistant,
		CreatedAt:   time.Now(),
		IsStreaming: true,
	}
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// AppendToken appends streamed text to an open message.
func (m *Message) AppendToken(token string) {
	if m.IsStreaming {
		m.streamContent.WriteString(token)
		m.Content = m.streamContent.String()
		m.TokenCount++
	}
}

// SetContent replaces the message content, discarding any streamed text.
// Used for the fixed completion and cancellation markers.
func (m *Message) SetContent(content string) {
	m.streamContent.Reset()
	m.streamContent.WriteString(content)
	m.Content = content
}

// AppendCardSummary records a suggestion card summary in arrival order.
func (m *Message) AppendCardSummary(summary string) {
	m.CardSummaries = append(m.CardSummaries, summary)
}

// Finalize closes a streaming message and records statistics.
func (m *Message) Finalize(stats *Statistics) {
	if !m.IsStreaming {
		return
	}
	m.Content = m.streamContent.String()
	m.IsStreaming = false
	m.Activity = ""

	if stats != nil {
		m.TTFT = stats.TTFT
		m.TotalDuration = stats.TotalDuration
	}
}

// MarkFailed closes a streaming message with an error marker.
func (m *Message) MarkFailed(marker string) {
	m.Failed = true
	m.IsStreaming = false
	m.Activity = ""
	if marker != "" {
		m.SetContent(marker)
	}
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0 && m.streamContent.Len() == 0
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// STATISTICS TYPE
// =============================================================================

// Statistics holds timing information for one streamed generation.
type Statistics struct {
	StartTime      time.Time
	FirstTokenTime time.Time
	EndTime        time.Time

	TTFT          time.Duration
	TotalDuration time.Duration
}

// NewStatistics creates a new Statistics with the start time set.
func NewStatistics() *Statistics {
	return &Statistics{StartTime: time.Now()}
}

// RecordFirstToken records when the first token was received.
func (s *Statistics) RecordFirstToken() {
	if s.FirstTokenTime.IsZero() {
		s.FirstTokenTime = time.Now()
		s.TTFT = s.FirstTokenTime.Sub(s.StartTime)
	}
}

// Finalize computes the final statistics.
func (s *Statistics) Finalize() {
	s.EndTime = time.Now()
	s.TotalDuration = s.EndTime.Sub(s.StartTime)
}
