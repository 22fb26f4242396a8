// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package labels maps protocol identifiers to display strings. The
// dispatcher takes a Table by injection so the event-handling logic
// stays protocol-only.
package labels

import "fmt"

// Fixed user-facing markers written into the timeline by the session.
const (
	// ProducedCompletion replaces empty assistant content when a
	// producing route finishes without conversational output.
	ProducedCompletion = "Done. The draft has been updated."

	// GenerationStopped marks a user-cancelled assistant message.
	GenerationStopped = "Generation stopped."

	// GenerationFailed marks a message whose stream died mid-flight.
	GenerationFailed = "Generation failed. Please try again."
)

// =============================================================================
// TABLE
// =============================================================================

// Table resolves routes and tool names to the activity labels shown on a
// streaming assistant message.
type Table struct {
	routes    map[string]string
	tools     map[string]string
	producing map[string]bool
}

// Default returns the standard label table.
func Default() *Table {
	return &Table{
		routes: map[string]string{
			"intent":   "analyzing intent",
			"qa":       "answering question",
			"draft":    "writing draft",
			"rewrite":  "rewriting section",
			"polish":   "polishing text",
			"expand":   "expanding section",
			"evaluate": "running evaluation",
			"suggest":  "preparing suggestions",
		},
		tools: map[string]string{
			"search_references": "reference search",
			"read_document":     "document reader",
			"update_field":      "field editor",
			"run_simulation":    "simulation",
		},
		producing: map[string]bool{
			"draft":   true,
			"rewrite": true,
			"polish":  true,
			"expand":  true,
		},
	}
}

// RouteActivity returns the activity label for a route target.
func (t *Table) RouteActivity(target string) string {
	if label, ok := t.routes[target]; ok {
		return label
	}
	return "working"
}

// ToolName returns the display name for a tool identifier.
func (t *Table) ToolName(tool string) string {
	if name, ok := t.tools[tool]; ok {
		return name
	}
	return tool
}

// ToolStart returns the activity label shown when a tool begins.
func (t *Table) ToolStart(tool string) string {
	return "using " + t.ToolName(tool)
}

// ToolProgress returns the activity label carrying a running counter.
func (t *Table) ToolProgress(tool string, chars int) string {
	return fmt.Sprintf("%s · %d chars", t.ToolName(tool), chars)
}

// ToolDone returns the completion summary shown when a tool finishes.
func (t *Table) ToolDone(tool string) string {
	return t.ToolName(tool) + " finished"
}

// Producing reports whether the route writes content elsewhere rather
// than conversationally; its tokens are not mirrored into the message.
func (t *Table) Producing(route string) bool {
	return t.producing[route]
}
