// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package suggest

import (
	"errors"
	"fmt"
	"time"

	"github.com/jeranaias/draftpilot-tui/internal/model"
)

// Error variables for invalid ledger operations.
var (
	// ErrUnknownCard indicates the card id is not in the ledger.
	ErrUnknownCard = errors.New("unknown suggestion card")

	// ErrBadTransition indicates the card is not in a state the requested
	// action is valid from.
	ErrBadTransition = errors.New("invalid card transition")
)

// =============================================================================
// LEDGER TYPE
// =============================================================================

// Ledger tracks every suggestion card for one conversation, in arrival
// order. Cards are never removed except when the message that produced
// them is truncated by an edit-and-resend.
type Ledger struct {
	cards []*Card
	byID  map[string]*Card

	// followUpSource is the card id a pending follow-up was issued for.
	// At most one value is outstanding; it is consumed (cleared) by the
	// next card arrival regardless of whether supersession applied.
	followUpSource string

	// onSuperseded is the detached persistence hook fired when a card is
	// implicitly retired by a same-target replacement. The local state
	// change is authoritative; the hook's failure is the hook's problem.
	onSuperseded func(card *Card)
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{byID: make(map[string]*Card)}
}

// SetSupersededHook installs the detached persistence call fired on
// supersession.
func (l *Ledger) SetSupersededHook(fn func(card *Card)) {
	l.onSuperseded = fn
}

// =============================================================================
// CARD ARRIVAL
// =============================================================================

// Append records a newly streamed card and applies the supersession rule:
// if a follow-up is outstanding and the new card targets the same field as
// the follow-up's source card, the source transitions pending→superseded.
// The follow-up source pointer is cleared in every case, so one follow-up
// supersedes at most one card.
func (l *Ledger) Append(card *Card) {
	if card.Status == "" {
		card.Status = StatusPending
	}
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now()
	}

	if source := l.byID[l.followUpSource]; source != nil &&
		source.ID != card.ID &&
		source.TargetField == card.TargetField &&
		source.Status == StatusPending {
		source.Status = StatusSuperseded
		if l.onSuperseded != nil {
			l.onSuperseded(source)
		}
	}
	l.followUpSource = ""

	l.cards = append(l.cards, card)
	l.byID[card.ID] = card
}

// Restore loads a card from a history snapshot without supersession
// side effects.
func (l *Ledger) Restore(card *Card) {
	l.cards = append(l.cards, card)
	l.byID[card.ID] = card
}

// =============================================================================
// FOLLOW-UP SOURCE POINTER
// =============================================================================

// SetFollowUpSource marks the card a follow-up was just issued for.
// A newer follow-up replaces any older outstanding value.
func (l *Ledger) SetFollowUpSource(cardID string) {
	l.followUpSource = cardID
}

// ClearFollowUpSource drops any outstanding follow-up source. Called on
// the done event so a dangling pointer cannot leak into the next cycle.
func (l *Ledger) ClearFollowUpSource() {
	l.followUpSource = ""
}

// FollowUpSource returns the outstanding follow-up source card id, or "".
func (l *Ledger) FollowUpSource() string {
	return l.followUpSource
}

// =============================================================================
// LOOKUP
// =============================================================================

// Get returns the card with the given id, or nil.
func (l *Ledger) Get(id string) *Card {
	return l.byID[id]
}

// Cards returns every card in arrival order.
func (l *Ledger) Cards() []*Card {
	return l.cards
}

// CardsForMode returns the cards produced under the given mode, in order.
func (l *Ledger) CardsForMode(mode string) []*Card {
	var out []*Card
	for _, c := range l.cards {
		if c.Mode == mode {
			out = append(out, c)
		}
	}
	return out
}

// Group returns every card sharing the given group id, in order.
func (l *Ledger) Group(groupID string) []*Card {
	var out []*Card
	for _, c := range l.cards {
		if c.GroupID == groupID && c.GroupID != "" {
			out = append(out, c)
		}
	}
	return out
}

// GroupWithStatus returns the group members currently in the given status.
func (l *Ledger) GroupWithStatus(groupID string, status Status) []*Card {
	var out []*Card
	for _, c := range l.Group(groupID) {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out
}

// IsGroup reports whether the id names a card group rather than a card.
func (l *Ledger) IsGroup(id string) bool {
	return len(l.Group(id)) > 0
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// MarkAccepted transitions a card to accepted. Valid from pending, and
// from superseded: explicitly re-applying a superseded card is a
// deliberate override.
func (l *Ledger) MarkAccepted(id string) error {
	card := l.byID[id]
	if card == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCard, id)
	}
	if card.Status != StatusPending && card.Status != StatusSuperseded {
		return fmt.Errorf("%w: accept from %s", ErrBadTransition, card.Status)
	}
	card.Status = StatusAccepted
	return nil
}

// MarkRejected transitions a card to rejected. Valid only from pending.
func (l *Ledger) MarkRejected(id string) error {
	card := l.byID[id]
	if card == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCard, id)
	}
	if card.Status != StatusPending {
		return fmt.Errorf("%w: reject from %s", ErrBadTransition, card.Status)
	}
	card.Status = StatusRejected
	return nil
}

// MarkUndone transitions a card to undone. Valid only from accepted.
func (l *Ledger) MarkUndone(id string) error {
	card := l.byID[id]
	if card == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCard, id)
	}
	if card.Status != StatusAccepted {
		return fmt.Errorf("%w: undo from %s", ErrBadTransition, card.Status)
	}
	card.Status = StatusUndone
	return nil
}

// =============================================================================
// MESSAGE BINDING MAINTENANCE
// =============================================================================

// Repoint atomically re-binds every card pointing at a provisional message
// id to the durable id. Replaying the same repoint is a no-op.
func (l *Ledger) Repoint(provisional, durable model.MessageID) int {
	if provisional == durable || durable == "" {
		return 0
	}
	n := 0
	for _, c := range l.cards {
		if c.MessageID == provisional {
			c.MessageID = durable
			n++
		}
	}
	return n
}

// RemoveForMessages drops every card bound to one of the given message
// ids. Used when an edit-and-resend truncates the timeline, so no card is
// left orphaned. Returns the removed cards.
func (l *Ledger) RemoveForMessages(ids []model.MessageID) []*Card {
	if len(ids) == 0 {
		return nil
	}
	removedSet := make(map[model.MessageID]bool, len(ids))
	for _, id := range ids {
		removedSet[id] = true
	}

	var kept []*Card
	var removed []*Card
	for _, c := range l.cards {
		if removedSet[c.MessageID] {
			removed = append(removed, c)
			delete(l.byID, c.ID)
			if l.followUpSource == c.ID {
				l.followUpSource = ""
			}
			continue
		}
		kept = append(kept, c)
	}
	l.cards = kept
	return removed
}
