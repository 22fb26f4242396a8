// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

// =============================================================================
// EVENT TYPES
// =============================================================================

// Event type discriminators emitted by the backend stream.
const (
	EventRoute          = "route"
	EventToolStart      = "tool_start"
	EventToolProgress   = "tool_progress"
	EventToolEnd        = "tool_end"
	EventSuggestionCard = "suggestion_card"
	EventToken          = "token"
	EventUserSaved      = "user_saved"
	EventDone           = "done"
	EventError          = "error"
)

// Event is one decoded record from the backend stream. The Type field
// discriminates which of the remaining fields are meaningful; the backend
// sends a flat JSON object per event.
type Event struct {
	Type string `json:"type"`

	// route
	Target string `json:"target,omitempty"`

	// tool_start / tool_progress / tool_end
	Tool         string `json:"tool,omitempty"`
	Chars        int    `json:"chars,omitempty"`
	Output       string `json:"output,omitempty"`
	FieldUpdated string `json:"field_updated,omitempty"`

	// suggestion_card
	ID           string `json:"id,omitempty"`
	TargetField  string `json:"target_field,omitempty"`
	Summary      string `json:"summary,omitempty"`
	Reason       string `json:"reason,omitempty"`
	DiffPreview  string `json:"diff_preview,omitempty"`
	EditsCount   int    `json:"edits_count,omitempty"`
	GroupID      string `json:"group_id,omitempty"`
	GroupSummary string `json:"group_summary,omitempty"`

	// token
	Content string `json:"content,omitempty"`

	// user_saved / done
	MessageID      string `json:"message_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	Route          string `json:"route,omitempty"`
	IsProducing    bool   `json:"is_producing,omitempty"`

	// error
	Error string `json:"error,omitempty"`
}

// Terminal reports whether this event closes the stream cycle.
func (e *Event) Terminal() bool {
	return e.Type == EventDone || e.Type == EventError
}
