// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// COLORS
// =============================================================================

// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
var (
	// Cyan - user messages, prompts
	Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

	// Purple - assistant messages
	Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

	// Emerald - accepted suggestions, success states
	Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

	// Rose - errors, rejected suggestions
	Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

	// Amber - pending suggestions, the undo countdown
	Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

	// TextDim - secondary text, activity labels
	TextDim = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6C7086"}
)

// =============================================================================
// STYLES
// =============================================================================

var (
	userLabelStyle = lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true)

	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(Purple).
				Bold(true)

	activityStyle = lipgloss.NewStyle().
			Foreground(TextDim).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(Rose)

	editedStyle = lipgloss.NewStyle().
			Foreground(TextDim)

	cardPendingStyle = lipgloss.NewStyle().
				Foreground(Amber)

	cardAcceptedStyle = lipgloss.NewStyle().
				Foreground(Emerald)

	cardMutedStyle = lipgloss.NewStyle().
			Foreground(TextDim).
			Strikethrough(true)

	undoBarStyle = lipgloss.NewStyle().
			Foreground(Amber).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(TextDim)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Purple).
			Padding(0, 1)
)

// DetectBackground aligns adaptive colors with the real terminal
// background before the first render.
func DetectBackground() {
	lipgloss.SetHasDarkBackground(termenv.HasDarkBackground())
}
