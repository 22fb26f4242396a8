// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package suggest

import "strings"

// =============================================================================
// FOLLOW-UP CONTEXT
// =============================================================================

// FollowUpContext accumulates human-readable descriptions of suggestion
// lifecycle actions taken since the last send. The next outgoing request
// drains the whole batch at once, so the agent sees what the user did with
// its earlier proposals.
type FollowUpContext struct {
	entries []string
}

// NewFollowUpContext creates an empty accumulator.
func NewFollowUpContext() *FollowUpContext {
	return &FollowUpContext{}
}

// Add appends one lifecycle description. Blank entries are dropped.
func (f *FollowUpContext) Add(description string) {
	if strings.TrimSpace(description) == "" {
		return
	}
	f.entries = append(f.entries, description)
}

// Drain returns all accumulated entries joined by newlines and clears the
// accumulator, so each entry is delivered at most once. Returns "" when
// nothing accumulated.
func (f *FollowUpContext) Drain() string {
	if len(f.entries) == 0 {
		return ""
	}
	out := strings.Join(f.entries, "\n")
	f.entries = nil
	return out
}

// Len returns the number of entries waiting to be drained.
func (f *FollowUpContext) Len() int {
	return len(f.entries)
}

// Empty reports whether nothing is waiting.
func (f *FollowUpContext) Empty() bool {
	return len(f.entries) == 0
}
