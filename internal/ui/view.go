// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/draftpilot-tui/internal/model"
	"github.com/jeranaias/draftpilot-tui/internal/suggest"
	"github.com/jeranaias/draftpilot-tui/internal/util"
)

// View renders the whole screen.
func (a *App) View() string {
	if !a.ready {
		return "loading..."
	}

	var b strings.Builder
	if a.picking {
		b.WriteString(a.renderConversationList())
	} else {
		b.WriteString(a.viewport.View())
	}
	b.WriteString("\n")
	b.WriteString(a.renderUndoBar())
	b.WriteString("\n")
	b.WriteString(inputBoxStyle.Width(a.width - 2).Render(a.input.View()))
	b.WriteString("\n")
	b.WriteString(a.renderStatusBar())
	return b.String()
}

// refreshViewport re-renders the timeline into the viewport.
func (a *App) refreshViewport() {
	if !a.ready {
		return
	}
	cardsByMessage := make(map[model.MessageID][]*suggest.Card)
	for _, card := range a.session.Cards() {
		cardsByMessage[card.MessageID] = append(cardsByMessage[card.MessageID], card)
	}

	var b strings.Builder
	for _, msg := range a.session.Messages() {
		b.WriteString(a.renderMessage(msg, cardsByMessage[msg.ID]))
		b.WriteString("\n")
	}
	a.viewport.SetContent(b.String())
}

func (a *App) renderMessage(msg *model.Message, cards []*suggest.Card) string {
	var b strings.Builder

	label := msg.Role.DisplayName()
	switch msg.Role {
	case model.RoleUser:
		b.WriteString(userLabelStyle.Render(label))
	default:
		b.WriteString(assistantLabelStyle.Render(label))
	}
	if msg.IsEdited {
		b.WriteString(editedStyle.Render(" (edited)"))
	}
	b.WriteString("\n")

	switch {
	case msg.Failed:
		b.WriteString(errorStyle.Render(msg.Content))
	case msg.Content != "":
		b.WriteString(msg.Content)
	}

	if msg.IsStreaming && msg.Activity != "" {
		if msg.Content != "" {
			b.WriteString("\n")
		}
		activity := runewidth.Truncate(msg.Activity, a.width-4, "…")
		b.WriteString(a.spinner.View())
		b.WriteString(activityStyle.Render(activity))
	}

	for _, card := range cards {
		b.WriteString("\n")
		b.WriteString(renderCard(card))
	}
	b.WriteString("\n")
	return b.String()
}

func renderCard(card *suggest.Card) string {
	line := fmt.Sprintf("▸ [%s] %s · %s", card.TargetField, card.Summary, card.Status.DisplayName())
	switch card.Status {
	case suggest.StatusPending:
		return cardPendingStyle.Render(line)
	case suggest.StatusAccepted:
		return cardAcceptedStyle.Render(line)
	case suggest.StatusRejected, suggest.StatusSuperseded, suggest.StatusUndone:
		return cardMutedStyle.Render(line)
	default:
		return line
	}
}

func (a *App) renderUndoBar() string {
	head, remaining := a.session.UndoHead()
	if head == nil {
		return statusBarStyle.Render(strings.Repeat("─", max(a.width, 1)))
	}
	secs := int(remaining.Seconds())
	label := fmt.Sprintf(" ↶ undo %q (%ds) · ctrl+z ", head.Summary, secs)
	return undoBarStyle.Render(runewidth.Truncate(label, a.width, "…"))
}

// renderConversationList draws the picker over the timeline area.
func (a *App) renderConversationList() string {
	var b strings.Builder
	b.WriteString(assistantLabelStyle.Render("Conversations"))
	b.WriteString("\n\n")

	if len(a.convList) == 0 {
		b.WriteString(activityStyle.Render("no saved conversations · n starts a new one"))
		b.WriteString("\n")
	}
	for i, meta := range a.convList {
		title := meta.Title
		if title == "" {
			title = meta.Preview
		}
		if title == "" {
			title = meta.ID
		}
		line := fmt.Sprintf("%s · %d messages · %s",
			title, meta.MessageCount, meta.UpdatedAt.Format("Jan 2 15:04"))
		line = util.TruncateWidth(line, max(a.width-4, 1))
		if i == a.convIndex {
			b.WriteString(cardPendingStyle.Render("▸ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) renderStatusBar() string {
	left := fmt.Sprintf(" %s · %s", a.session.Mode(), a.stateLabel())
	if a.statusMsg != "" {
		left += " · " + a.statusMsg
	}
	help := "enter send · esc stop · ctrl+y accept · ctrl+n reject · ctrl+f follow-up · ctrl+e edit · ctrl+l history"
	if a.picking {
		help = "enter open · n new · x delete · esc back"
	}
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(help) - 1
	if gap < 1 {
		return statusBarStyle.Render(runewidth.Truncate(left, a.width, "…"))
	}
	return statusBarStyle.Render(left + strings.Repeat(" ", gap) + help)
}

func (a *App) stateLabel() string {
	if a.session.Sending() {
		return "streaming"
	}
	if a.picking {
		return "conversations"
	}
	switch a.mode {
	case modeEdit:
		return "editing"
	case modeFollowUp:
		return "follow-up"
	default:
		return "ready"
	}
}
