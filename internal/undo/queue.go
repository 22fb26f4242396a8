// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package undo

import "time"

// DefaultWindow is how long the head token stays actionable.
const DefaultWindow = 15 * time.Second

// =============================================================================
// TOKEN
// =============================================================================

// RollbackTarget names one version to restore if the token is exercised.
// Group accepts carry several targets; the first one is the primary.
type RollbackTarget struct {
	EntityID  string
	VersionID string
}

// Token is one undoable accepted suggestion (or group of suggestions).
type Token struct {
	// SuggestionID is the card id, or the group id for a group accept.
	SuggestionID string
	TargetField  string
	Summary      string

	// Targets lists the versions to roll back, primary first.
	Targets []RollbackTarget

	// CardIDs lists every card covered by this token. A single-card
	// token holds exactly its SuggestionID.
	CardIDs []string
}

// Grouped reports whether the token covers more than one card.
func (t *Token) Grouped() bool {
	return len(t.CardIDs) > 1
}

// =============================================================================
// QUEUE
// =============================================================================

// Queue is the FIFO undo queue. Only the head token is active; a token
// gets a fresh countdown the moment it becomes the head, not when it was
// enqueued. Not safe for concurrent use; the session serializes access.
type Queue struct {
	tokens []*Token
	window time.Duration

	// headActivatedAt is when the current head token started its window.
	// Zero when the queue is empty.
	headActivatedAt time.Time

	// now is injectable for tests.
	now func() time.Time
}

// NewQueue creates a queue with the given undo window. A non-positive
// window falls back to DefaultWindow.
func NewQueue(window time.Duration) *Queue {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Queue{window: window, now: time.Now}
}

// SetWindow changes the window for the current head and its successors.
// A non-positive window falls back to DefaultWindow. The head's
// activation instant is unchanged; only the length of its countdown is.
func (q *Queue) SetWindow(window time.Duration) {
	if window <= 0 {
		window = DefaultWindow
	}
	q.window = window
}

// Enqueue appends a token. If the queue was empty the token becomes the
// head immediately and its countdown starts now.
func (q *Queue) Enqueue(t *Token) {
	q.tokens = append(q.tokens, t)
	if len(q.tokens) == 1 {
		q.headActivatedAt = q.now()
	}
}

// Head returns the active token, or nil when the queue is empty.
// Expired tokens are reaped first, so the result is always live.
func (q *Queue) Head() *Token {
	q.reap()
	if len(q.tokens) == 0 {
		return nil
	}
	return q.tokens[0]
}

// Remaining returns how long the head token stays actionable. Zero when
// the queue is empty.
func (q *Queue) Remaining() time.Duration {
	q.reap()
	if len(q.tokens) == 0 {
		return 0
	}
	left := q.window - q.now().Sub(q.headActivatedAt)
	if left < 0 {
		return 0
	}
	return left
}

// Len returns the number of queued tokens after reaping expired heads.
func (q *Queue) Len() int {
	q.reap()
	return len(q.tokens)
}

// Pop removes and returns the head token, activating the next one with a
// fresh window. Returns nil when the queue is empty. Called when the user
// exercises the undo.
func (q *Queue) Pop() *Token {
	q.reap()
	return q.pop()
}

// Remove drops the token with the given suggestion id wherever it sits in
// the queue. Used when the card's message is truncated by an edit. If the
// head is removed the next token activates with a fresh window.
func (q *Queue) Remove(suggestionID string) bool {
	q.reap()
	for i, t := range q.tokens {
		if t.SuggestionID == suggestionID {
			if i == 0 {
				q.pop()
			} else {
				q.tokens = append(q.tokens[:i], q.tokens[i+1:]...)
			}
			return true
		}
	}
	return false
}

// pop removes the head and starts the next token's countdown.
func (q *Queue) pop() *Token {
	if len(q.tokens) == 0 {
		return nil
	}
	head := q.tokens[0]
	q.tokens = q.tokens[1:]
	if len(q.tokens) > 0 {
		q.headActivatedAt = q.now()
	} else {
		q.headActivatedAt = time.Time{}
	}
	return head
}

// reap drops heads whose window has elapsed. Expiry is removal only;
// the underlying edit stays applied. The successor's countdown starts at
// the moment of expiry, not at the reap call, so a late reap cannot
// stretch anyone's window.
func (q *Queue) reap() {
	for len(q.tokens) > 0 {
		expiry := q.headActivatedAt.Add(q.window)
		if q.now().Before(expiry) {
			return
		}
		q.tokens = q.tokens[1:]
		if len(q.tokens) > 0 {
			q.headActivatedAt = expiry
		} else {
			q.headActivatedAt = time.Time{}
		}
	}
}
