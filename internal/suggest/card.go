// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package suggest

import (
	"time"

	"github.com/jeranaias/draftpilot-tui/internal/model"
)

// =============================================================================
// STATUS TYPE
// =============================================================================

// Status is the lifecycle state of a suggestion card.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusRejected   Status = "rejected"
	StatusSuperseded Status = "superseded"
	StatusUndone     Status = "undone"
)

// Terminal reports whether the status is a resting state a pending card
// can no longer be reached from.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusUndone
}

// DisplayName returns a human-readable label for the status.
func (s Status) DisplayName() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusAccepted:
		return "Applied"
	case StatusRejected:
		return "Dismissed"
	case StatusSuperseded:
		return "Replaced"
	case StatusUndone:
		return "Undone"
	default:
		return string(s)
	}
}

// =============================================================================
// CARD TYPE
// =============================================================================

// Card is one proposed edit awaiting an explicit user decision.
type Card struct {
	ID          string `json:"id"`
	TargetField string `json:"target_field"`
	Summary     string `json:"summary"`
	Reason      string `json:"reason,omitempty"`
	DiffPreview string `json:"diff_preview,omitempty"`
	EditsCount  int    `json:"edits_count,omitempty"`

	// Group membership (multi-field proposals)
	GroupID      string `json:"group_id,omitempty"`
	GroupSummary string `json:"group_summary,omitempty"`

	Status Status `json:"status"`

	// MessageID binds the card to the assistant message that produced it.
	// Re-pointed when that message's provisional id is reconciled.
	MessageID model.MessageID `json:"message_id"`

	// Mode the card was produced under; views are filtered by mode.
	Mode string `json:"mode"`

	CreatedAt time.Time `json:"created_at"`
}

// Grouped reports whether the card belongs to a multi-card group.
func (c *Card) Grouped() bool {
	return c.GroupID != ""
}
