// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation timeline.
package model

import "time"

// =============================================================================
// TIMELINE TYPE
// =============================================================================

// Timeline is the ordered, append-only sequence of messages for one
// conversation. Messages are only ever removed by an explicit truncation
// (edit-and-resend); everything else is an append or an in-place update.
type Timeline struct {
	messages []*Message

	// open is the assistant message currently receiving stream updates,
	// nil when no send cycle is in flight.
	open *Message

	UpdatedAt time.Time
}

// NewTimeline creates an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// =============================================================================
// APPEND OPERATIONS
// =============================================================================

// Append adds a message to the end of the timeline.
func (t *Timeline) Append(msg *Message) {
	t.messages = append(t.messages, msg)
	t.UpdatedAt = time.Now()
}

// AppendUser creates and appends a provisional user message.
func (t *Timeline) AppendUser(content string) *Message {
	msg := NewUserMessage(content)
	t.Append(msg)
	return msg
}

// OpenAssistant creates, appends, and tracks a new streaming assistant
// message. Any previously open message is finalized first so at most one
// assistant message receives stream updates.
func (t *Timeline) OpenAssistant() *Message {
	if t.open != nil {
		t.open.Finalize(nil)
	}
	msg := NewAssistantMessage()
	t.Append(msg)
	t.open = msg
	return msg
}

// Open returns the assistant message currently receiving stream updates,
// or nil when no send cycle is in flight.
func (t *Timeline) Open() *Message {
	return t.open
}

// CloseOpen releases the open assistant message without further changes.
func (t *Timeline) CloseOpen() {
	t.open = nil
}

// =============================================================================
// LOOKUP
// =============================================================================

// ByID returns the message with the given id, or nil.
func (t *Timeline) ByID(id MessageID) *Message {
	for _, msg := range t.messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// LastUser returns the most recent user message, or nil.
func (t *Timeline) LastUser() *Message {
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Role == RoleUser {
			return t.messages[i]
		}
	}
	return nil
}

// Messages returns the ordered message history.
func (t *Timeline) Messages() []*Message {
	return t.messages
}

// Len returns the number of messages.
func (t *Timeline) Len() int {
	return len(t.messages)
}

// IsEmpty returns true if there are no messages.
func (t *Timeline) IsEmpty() bool {
	return len(t.messages) == 0
}

// =============================================================================
// ID RECONCILIATION
// =============================================================================

// Resolve replaces a provisional id with the durable id the backend
// assigned, preserving the message's position. Applying the same
// resolution twice is a no-op, as is resolving an id that is no longer
// present (already truncated by an edit).
func (t *Timeline) Resolve(provisional, durable MessageID) bool {
	if provisional == durable || durable == "" {
		return false
	}
	msg := t.ByID(provisional)
	if msg == nil {
		return false
	}
	msg.ID = durable
	t.UpdatedAt = time.Now()
	return true
}

// ResolveLastUser reconciles the most recent provisional user message.
// A durable id arriving with no provisional user message pending is a
// no-op, not an error.
func (t *Timeline) ResolveLastUser(durable MessageID) bool {
	for i := len(t.messages) - 1; i >= 0; i-- {
		msg := t.messages[i]
		if msg.Role == RoleUser && msg.ID.Provisional() {
			return t.Resolve(msg.ID, durable)
		}
	}
	return false
}

// =============================================================================
// TRUNCATION (edit-and-resend)
// =============================================================================

// TruncateAfter removes every message after the one with the given id and
// returns the removed ids so bound suggestion cards can be cleaned up.
// The message itself is kept. Returns nil if the id is not present.
func (t *Timeline) TruncateAfter(id MessageID) []MessageID {
	idx := -1
	for i, msg := range t.messages {
		if msg.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	var removed []MessageID
	for _, msg := range t.messages[idx+1:] {
		if t.open == msg {
			t.open = nil
		}
		removed = append(removed, msg.ID)
	}
	t.messages = t.messages[:idx+1]
	t.UpdatedAt = time.Now()
	return removed
}
