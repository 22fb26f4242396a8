// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the terminal interface for the conversation core.
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/draftpilot-tui/internal/model"
	"github.com/jeranaias/draftpilot-tui/internal/session"
	"github.com/jeranaias/draftpilot-tui/internal/storage"
	"github.com/jeranaias/draftpilot-tui/internal/suggest"
)

// =============================================================================
// STATE
// =============================================================================

// inputMode says what the text input currently collects.
type inputMode int

const (
	modeCompose  inputMode = iota // a fresh message
	modeEdit                      // an edit of a past user message
	modeFollowUp                  // a follow-up question about a card
)

// =============================================================================
// MESSAGES
// =============================================================================

// streamTickMsg drives re-renders at 30fps while a stream is active.
type streamTickMsg struct{}

// undoTickMsg drives the once-a-second undo countdown refresh.
type undoTickMsg struct{}

// sendDoneMsg reports a completed (or failed) send cycle.
type sendDoneMsg struct{ err error }

// actionDoneMsg reports a completed suggestion action.
type actionDoneMsg struct{ err error }

func streamTickCmd() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(time.Time) tea.Msg {
		return streamTickMsg{}
	})
}

func undoTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return undoTickMsg{}
	})
}

// =============================================================================
// APP MODEL
// =============================================================================

// App is the Bubble Tea model for the conversation view.
type App struct {
	session *session.Session
	keys    KeyMap

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	width  int
	height int
	ready  bool

	mode       inputMode
	editTarget model.MessageID
	followUpID string

	// Conversation picker state.
	picking   bool
	convList  []storage.ConversationMeta
	convIndex int

	statusMsg string
}

// NewApp creates the application model around a session.
func NewApp(sess *session.Session) *App {
	input := textinput.New()
	input.Placeholder = "Message the agent (@name attaches a reference)"
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(Purple)

	return &App{
		session: sess,
		keys:    DefaultKeyMap(),
		input:   input,
		spinner: sp,
	}
}

// Init starts the background ticks.
func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.spinner.Tick, undoTickCmd())
}

// =============================================================================
// UPDATE
// =============================================================================

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		chromeHeight := 5 // status bar, undo bar, input box
		if !a.ready {
			a.viewport = viewport.New(msg.Width, msg.Height-chromeHeight)
			a.ready = true
		} else {
			a.viewport.Width = msg.Width
			a.viewport.Height = msg.Height - chromeHeight
		}
		a.refreshViewport()

	case tea.KeyMsg:
		if cmd := a.handleKey(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case streamTickMsg:
		a.refreshViewport()
		a.viewport.GotoBottom()
		if a.session.Sending() {
			cmds = append(cmds, streamTickCmd())
		}

	case undoTickMsg:
		// Head expiry is observed lazily; the tick just forces a render.
		cmds = append(cmds, undoTickCmd())

	case sendDoneMsg:
		if msg.err != nil {
			a.statusMsg = msg.err.Error()
		}
		a.refreshViewport()
		a.viewport.GotoBottom()

	case actionDoneMsg:
		if msg.err != nil {
			a.statusMsg = msg.err.Error()
		}
		a.refreshViewport()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	// The picker owns the keyboard while open.
	if !a.picking {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		cmds = append(cmds, cmd)
		a.viewport, cmd = a.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if a.picking {
		return a.handlePickerKey(msg)
	}
	switch {
	case key.Matches(msg, a.keys.Quit):
		return tea.Quit

	case key.Matches(msg, a.keys.Send):
		return a.submit()

	case key.Matches(msg, a.keys.Cancel):
		if a.session.Sending() {
			a.session.Cancel()
			return nil
		}
		// Esc outside streaming drops a pending edit/follow-up.
		a.resetInput()

	case key.Matches(msg, a.keys.Accept):
		return a.confirmCard(true)

	case key.Matches(msg, a.keys.Reject):
		return a.confirmCard(false)

	case key.Matches(msg, a.keys.Undo):
		head, _ := a.session.UndoHead()
		if head == nil {
			a.statusMsg = "nothing to undo"
			return nil
		}
		id := head.SuggestionID
		return func() tea.Msg {
			return actionDoneMsg{err: a.session.Undo(context.Background(), id)}
		}

	case key.Matches(msg, a.keys.FollowUp):
		if card := a.latestPendingCard(); card != nil {
			a.mode = modeFollowUp
			a.followUpID = card.ID
			a.input.Placeholder = "Follow-up about: " + card.Summary
		}

	case key.Matches(msg, a.keys.EditLast):
		a.beginEditLast()

	case key.Matches(msg, a.keys.Conversations):
		a.openPicker()

	case key.Matches(msg, a.keys.ScrollUp):
		a.viewport.HalfViewUp()

	case key.Matches(msg, a.keys.ScrollDown):
		a.viewport.HalfViewDown()
	}
	return nil
}

// submit dispatches the input according to the current mode.
func (a *App) submit() tea.Cmd {
	text := a.input.Value()
	if text == "" || a.session.Sending() {
		return nil
	}
	mode, editTarget, followUpID := a.mode, a.editTarget, a.followUpID
	a.resetInput()
	a.statusMsg = ""

	send := func() tea.Msg {
		switch mode {
		case modeEdit:
			return sendDoneMsg{err: a.session.EditAndResend(context.Background(), editTarget, text)}
		case modeFollowUp:
			return sendDoneMsg{err: a.session.AskFollowUp(context.Background(), followUpID, text)}
		default:
			return sendDoneMsg{err: a.session.Send(context.Background(), text)}
		}
	}
	return tea.Batch(send, streamTickCmd())
}

// confirmCard accepts or rejects the newest pending card. Grouped cards
// go through the group action covering all pending siblings.
func (a *App) confirmCard(accept bool) tea.Cmd {
	card := a.latestPendingCard()
	if card == nil {
		a.statusMsg = "no pending suggestion"
		return nil
	}
	cardID, groupID := card.ID, card.GroupID
	grouped := card.Grouped()
	var siblings []string
	if grouped {
		for _, c := range a.session.Cards() {
			if c.GroupID == groupID && c.Status == suggest.StatusPending {
				siblings = append(siblings, c.ID)
			}
		}
	}

	return func() tea.Msg {
		ctx := context.Background()
		var err error
		switch {
		case grouped && accept:
			err = a.session.GroupAccept(ctx, groupID, siblings)
		case grouped:
			err = a.session.GroupReject(ctx, groupID)
		case accept:
			err = a.session.Accept(ctx, cardID)
		default:
			err = a.session.Reject(ctx, cardID)
		}
		return actionDoneMsg{err: err}
	}
}

// openPicker loads the stored conversation list and takes over the
// keyboard until the picker closes.
func (a *App) openPicker() {
	if a.session.Sending() {
		a.statusMsg = "finish or stop the stream first"
		return
	}
	list, err := a.session.Conversations()
	if err != nil {
		a.statusMsg = err.Error()
		return
	}
	a.picking = true
	a.convList = list
	a.convIndex = 0
	a.input.Blur()
}

func (a *App) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit

	case "esc", "ctrl+l":
		a.closePicker()

	case "up", "k":
		if a.convIndex > 0 {
			a.convIndex--
		}

	case "down", "j":
		if a.convIndex < len(a.convList)-1 {
			a.convIndex++
		}

	case "n":
		if err := a.session.NewConversation(); err != nil {
			a.statusMsg = err.Error()
			return nil
		}
		a.closePicker()

	case "x":
		if len(a.convList) == 0 {
			return nil
		}
		meta := a.convList[a.convIndex]
		if err := a.session.DeleteConversation(meta.ID); err != nil {
			a.statusMsg = err.Error()
			return nil
		}
		a.convList = append(a.convList[:a.convIndex], a.convList[a.convIndex+1:]...)
		if a.convIndex >= len(a.convList) && a.convIndex > 0 {
			a.convIndex--
		}

	case "enter":
		if len(a.convList) == 0 {
			return nil
		}
		if err := a.session.SwitchConversation(a.convList[a.convIndex].ID); err != nil {
			a.statusMsg = err.Error()
			return nil
		}
		a.closePicker()
	}
	return nil
}

func (a *App) closePicker() {
	a.picking = false
	a.convList = nil
	a.input.Focus()
	a.refreshViewport()
	a.viewport.GotoBottom()
}

func (a *App) latestPendingCard() *suggest.Card {
	cards := a.session.Cards()
	for i := len(cards) - 1; i >= 0; i-- {
		if cards[i].Status == suggest.StatusPending {
			return cards[i]
		}
	}
	return nil
}

func (a *App) beginEditLast() {
	if a.session.Sending() {
		return
	}
	var last *model.Message
	for _, msg := range a.session.Messages() {
		if msg.Role == model.RoleUser {
			last = msg
		}
	}
	if last == nil {
		return
	}
	a.mode = modeEdit
	a.editTarget = last.ID
	a.input.SetValue(last.Content)
	a.input.CursorEnd()
	a.input.Placeholder = "Edit and resend"
}

func (a *App) resetInput() {
	a.mode = modeCompose
	a.editTarget = ""
	a.followUpID = ""
	a.input.Reset()
	a.input.Placeholder = "Message the agent (@name attaches a reference)"
}
