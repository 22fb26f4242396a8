// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package undo

import (
	"testing"
	"time"
)

// testClock drives the queue's injectable clock.
type testClock struct {
	t time.Time
}

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestQueue(window time.Duration) (*Queue, *testClock) {
	clock := &testClock{t: time.Unix(1000, 0)}
	q := NewQueue(window)
	q.now = func() time.Time { return clock.t }
	return q, clock
}

func token(id string) *Token {
	return &Token{
		SuggestionID: id,
		Targets:      []RollbackTarget{{EntityID: "e-" + id, VersionID: "v-" + id}},
		CardIDs:      []string{id},
	}
}

// =============================================================================
// FIFO / WINDOW TESTS
// =============================================================================

func TestQueue_OnlyHeadActive(t *testing.T) {
	q, _ := newTestQueue(15 * time.Second)
	q.Enqueue(token("t1"))
	q.Enqueue(token("t2"))
	q.Enqueue(token("t3"))

	if head := q.Head(); head == nil || head.SuggestionID != "t1" {
		t.Fatalf("head = %+v, want t1", head)
	}
	if q.Len() != 3 {
		t.Errorf("Len() = %d, want 3", q.Len())
	}
}

func TestQueue_FreshWindowOnActivation(t *testing.T) {
	q, clock := newTestQueue(15 * time.Second)
	q.Enqueue(token("t1"))
	clock.advance(10 * time.Second)
	q.Enqueue(token("t2"))

	// t2 has been queued 10s already, but its own clock has not started.
	clock.advance(6 * time.Second) // t1 expires at 15s
	if head := q.Head(); head == nil || head.SuggestionID != "t2" {
		t.Fatalf("head = %+v, want t2 after t1 expiry", head)
	}
	// t2 activated at t1's expiry (the 15s mark); 1s of its window is gone.
	if got := q.Remaining(); got != 14*time.Second {
		t.Errorf("Remaining() = %v, want 14s", got)
	}
}

func TestQueue_ExpiryIsRemovalOnly(t *testing.T) {
	q, clock := newTestQueue(15 * time.Second)
	q.Enqueue(token("t1"))

	clock.advance(15 * time.Second)
	if head := q.Head(); head != nil {
		t.Fatalf("head = %+v after expiry, want nil", head)
	}
	if q.Pop() != nil {
		t.Error("Pop() returned an expired token")
	}
}

func TestQueue_ChainedExpiry(t *testing.T) {
	// A long gap between observations expires several heads, each having
	// consumed its own full window.
	q, clock := newTestQueue(15 * time.Second)
	q.Enqueue(token("t1"))
	q.Enqueue(token("t2"))
	q.Enqueue(token("t3"))

	clock.advance(31 * time.Second) // t1: 0-15, t2: 15-30, t3: from 30
	if head := q.Head(); head == nil || head.SuggestionID != "t3" {
		t.Fatalf("head = %+v, want t3", head)
	}
	if got := q.Remaining(); got != 14*time.Second {
		t.Errorf("Remaining() = %v, want 14s", got)
	}
}

func TestQueue_PopActivatesNext(t *testing.T) {
	q, clock := newTestQueue(15 * time.Second)
	q.Enqueue(token("t1"))
	q.Enqueue(token("t2"))

	clock.advance(5 * time.Second)
	popped := q.Pop()
	if popped == nil || popped.SuggestionID != "t1" {
		t.Fatalf("Pop() = %+v, want t1", popped)
	}
	// t2's window starts at the pop, not at enqueue.
	if got := q.Remaining(); got != 15*time.Second {
		t.Errorf("Remaining() = %v, want full 15s", got)
	}
}

func TestQueue_Remove(t *testing.T) {
	q, _ := newTestQueue(15 * time.Second)
	q.Enqueue(token("t1"))
	q.Enqueue(token("t2"))
	q.Enqueue(token("t3"))

	if !q.Remove("t2") {
		t.Fatal("Remove(t2) = false")
	}
	if q.Remove("t2") {
		t.Error("second Remove(t2) = true")
	}
	if head := q.Head(); head.SuggestionID != "t1" {
		t.Errorf("head = %s, want t1 (unaffected)", head.SuggestionID)
	}

	// Removing the head activates the next token.
	q.Remove("t1")
	if head := q.Head(); head.SuggestionID != "t3" {
		t.Errorf("head = %s, want t3", head.SuggestionID)
	}
}

func TestQueue_SetWindow(t *testing.T) {
	q, clock := newTestQueue(15 * time.Second)
	q.Enqueue(token("t1"))
	clock.advance(10 * time.Second)

	// Widening mid-countdown stretches the head's remaining time; the
	// activation instant stays put.
	q.SetWindow(30 * time.Second)
	if got := q.Remaining(); got != 20*time.Second {
		t.Errorf("Remaining() = %v, want 20s", got)
	}

	// Shrinking below the elapsed time expires the head on observation.
	q.SetWindow(5 * time.Second)
	if head := q.Head(); head != nil {
		t.Errorf("head = %+v, want nil after window shrank past it", head)
	}

	q.SetWindow(0)
	if q.window != DefaultWindow {
		t.Errorf("window = %v, want %v for non-positive input", q.window, DefaultWindow)
	}
}

func TestQueue_DefaultWindow(t *testing.T) {
	q := NewQueue(0)
	if q.window != DefaultWindow {
		t.Errorf("window = %v, want %v", q.window, DefaultWindow)
	}
}

func TestToken_Grouped(t *testing.T) {
	single := token("t1")
	if single.Grouped() {
		t.Error("single-card token reported grouped")
	}
	group := &Token{SuggestionID: "grp", CardIDs: []string{"c1", "c2"}}
	if !group.Grouped() {
		t.Error("group token not reported grouped")
	}
}
