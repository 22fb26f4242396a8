// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package suggest

import (
	"errors"
	"testing"

	"github.com/jeranaias/draftpilot-tui/internal/model"
)

func newCard(id, target string) *Card {
	return &Card{ID: id, TargetField: target, Summary: "edit " + target, MessageID: "m1", Mode: "draft"}
}

// =============================================================================
// SUPERSESSION TESTS
// =============================================================================

func TestLedger_Supersession(t *testing.T) {
	l := NewLedger()

	c1 := newCard("c1", "intro")
	l.Append(c1)
	if c1.Status != StatusPending {
		t.Fatalf("c1 status = %s, want pending", c1.Status)
	}

	// User asks a follow-up about c1, and the agent answers with a revised
	// proposal for the same field.
	l.SetFollowUpSource("c1")
	c2 := newCard("c2", "intro")
	l.Append(c2)

	if c1.Status != StatusSuperseded {
		t.Errorf("c1 status = %s, want superseded", c1.Status)
	}
	if c2.Status != StatusPending {
		t.Errorf("c2 status = %s, want pending", c2.Status)
	}
	if l.FollowUpSource() != "" {
		t.Error("follow-up source not cleared after supersession")
	}
}

func TestLedger_NoSupersessionDifferentField(t *testing.T) {
	l := NewLedger()
	c1 := newCard("c1", "intro")
	l.Append(c1)

	l.SetFollowUpSource("c1")
	c2 := newCard("c2", "outline")
	l.Append(c2)

	if c1.Status != StatusPending || c2.Status != StatusPending {
		t.Errorf("statuses = %s/%s, want pending/pending", c1.Status, c2.Status)
	}
	// Pointer is consumed even when no supersession applied.
	if l.FollowUpSource() != "" {
		t.Error("follow-up source not cleared after non-matching card")
	}
}

func TestLedger_SupersessionOnlyFirstCard(t *testing.T) {
	// One follow-up supersedes at most one card: a second same-field card
	// arriving later finds the pointer already cleared.
	l := NewLedger()
	l.Append(newCard("c1", "intro"))
	l.SetFollowUpSource("c1")
	l.Append(newCard("c2", "intro"))
	l.Append(newCard("c3", "intro"))

	if got := l.Get("c2").Status; got != StatusPending {
		t.Errorf("c2 status = %s, want pending", got)
	}
}

func TestLedger_SupersessionSkipsDecidedSource(t *testing.T) {
	l := NewLedger()
	c1 := newCard("c1", "intro")
	l.Append(c1)
	if err := l.MarkAccepted("c1"); err != nil {
		t.Fatal(err)
	}

	l.SetFollowUpSource("c1")
	l.Append(newCard("c2", "intro"))

	if c1.Status != StatusAccepted {
		t.Errorf("accepted card was superseded: status = %s", c1.Status)
	}
}

func TestLedger_SupersededHookFires(t *testing.T) {
	l := NewLedger()
	var notified []string
	l.SetSupersededHook(func(c *Card) { notified = append(notified, c.ID) })

	l.Append(newCard("c1", "intro"))
	l.SetFollowUpSource("c1")
	l.Append(newCard("c2", "intro"))

	if len(notified) != 1 || notified[0] != "c1" {
		t.Errorf("hook notified %v, want [c1]", notified)
	}
}

// =============================================================================
// TRANSITION TESTS
// =============================================================================

func TestLedger_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		action  func(*Ledger) error
		wantErr bool
		want    Status
	}{
		{"accept pending", StatusPending, func(l *Ledger) error { return l.MarkAccepted("c") }, false, StatusAccepted},
		{"accept superseded", StatusSuperseded, func(l *Ledger) error { return l.MarkAccepted("c") }, false, StatusAccepted},
		{"accept rejected", StatusRejected, func(l *Ledger) error { return l.MarkAccepted("c") }, true, StatusRejected},
		{"reject pending", StatusPending, func(l *Ledger) error { return l.MarkRejected("c") }, false, StatusRejected},
		{"reject accepted", StatusAccepted, func(l *Ledger) error { return l.MarkRejected("c") }, true, StatusAccepted},
		{"reject superseded", StatusSuperseded, func(l *Ledger) error { return l.MarkRejected("c") }, true, StatusSuperseded},
		{"undo accepted", StatusAccepted, func(l *Ledger) error { return l.MarkUndone("c") }, false, StatusUndone},
		{"undo pending", StatusPending, func(l *Ledger) error { return l.MarkUndone("c") }, true, StatusPending},
		{"undo undone", StatusUndone, func(l *Ledger) error { return l.MarkUndone("c") }, true, StatusUndone},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLedger()
			card := newCard("c", "intro")
			card.Status = tc.from
			l.Append(card)

			err := tc.action(l)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr && !errors.Is(err, ErrBadTransition) {
				t.Errorf("err = %v, want ErrBadTransition", err)
			}
			if card.Status != tc.want {
				t.Errorf("status = %s, want %s", card.Status, tc.want)
			}
		})
	}
}

func TestLedger_UnknownCard(t *testing.T) {
	l := NewLedger()
	if err := l.MarkAccepted("nope"); !errors.Is(err, ErrUnknownCard) {
		t.Errorf("err = %v, want ErrUnknownCard", err)
	}
}

// =============================================================================
// BINDING AND QUERY TESTS
// =============================================================================

func TestLedger_Repoint(t *testing.T) {
	l := NewLedger()
	c1 := newCard("c1", "intro")
	c2 := newCard("c2", "outline")
	c3 := newCard("c3", "body")
	c3.MessageID = "m2"
	l.Append(c1)
	l.Append(c2)
	l.Append(c3)

	if n := l.Repoint("m1", "srv-42"); n != 2 {
		t.Fatalf("repointed %d cards, want 2", n)
	}
	if c1.MessageID != "srv-42" || c2.MessageID != "srv-42" || c3.MessageID != "m2" {
		t.Errorf("bindings = %s/%s/%s", c1.MessageID, c2.MessageID, c3.MessageID)
	}
	// Replay is a no-op.
	if n := l.Repoint("m1", "srv-42"); n != 0 {
		t.Errorf("replayed repoint moved %d cards", n)
	}
}

func TestLedger_RemoveForMessages(t *testing.T) {
	l := NewLedger()
	c1 := newCard("c1", "intro")
	c2 := newCard("c2", "outline")
	c2.MessageID = "m2"
	l.Append(c1)
	l.Append(c2)
	l.SetFollowUpSource("c2")

	removed := l.RemoveForMessages([]model.MessageID{"m2"})
	if len(removed) != 1 || removed[0].ID != "c2" {
		t.Fatalf("removed = %+v", removed)
	}
	if l.Get("c2") != nil {
		t.Error("removed card still resolvable")
	}
	if got := l.Cards(); len(got) != 1 || got[0].ID != "c1" {
		t.Errorf("remaining cards = %+v", got)
	}
	if l.FollowUpSource() != "" {
		t.Error("follow-up source should be cleared when its card is removed")
	}
}

func TestLedger_GroupQueries(t *testing.T) {
	l := NewLedger()
	for _, id := range []string{"g1", "g2", "g3"} {
		c := newCard(id, "field-"+id)
		c.GroupID = "grp"
		l.Append(c)
	}
	solo := newCard("solo", "intro")
	l.Append(solo)

	if !l.IsGroup("grp") || l.IsGroup("solo") {
		t.Error("group detection wrong")
	}
	if got := len(l.Group("grp")); got != 3 {
		t.Errorf("group size = %d, want 3", got)
	}

	l.MarkAccepted("g1")
	l.MarkAccepted("g2")
	if got := len(l.GroupWithStatus("grp", StatusPending)); got != 1 {
		t.Errorf("pending in group = %d, want 1", got)
	}
	if got := len(l.GroupWithStatus("grp", StatusAccepted)); got != 2 {
		t.Errorf("accepted in group = %d, want 2", got)
	}
}

func TestLedger_CardsForMode(t *testing.T) {
	l := NewLedger()
	l.Append(newCard("c1", "intro"))
	outline := newCard("c2", "outline")
	outline.Mode = "outline"
	l.Append(outline)

	if got := l.CardsForMode("draft"); len(got) != 1 || got[0].ID != "c1" {
		t.Errorf("draft cards = %+v", got)
	}
	if got := l.CardsForMode("outline"); len(got) != 1 || got[0].ID != "c2" {
		t.Errorf("outline cards = %+v", got)
	}
}
