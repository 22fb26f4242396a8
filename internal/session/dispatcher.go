// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"

	"github.com/jeranaias/draftpilot-tui/internal/agent"
	"github.com/jeranaias/draftpilot-tui/internal/labels"
	"github.com/jeranaias/draftpilot-tui/internal/model"
	"github.com/jeranaias/draftpilot-tui/internal/suggest"
)

// Refresher is the content-refresh collaborator, poked when the agent
// reports a side effect on external content.
type Refresher interface {
	ContentUpdated(field string)
}

// RefresherFunc adapts a function to the Refresher interface.
type RefresherFunc func(field string)

func (f RefresherFunc) ContentUpdated(field string) { f(field) }

// =============================================================================
// DISPATCHER
// =============================================================================

// dispatcher applies one stream's decoded events to the session state.
// One dispatcher serves exactly one send cycle; events are applied
// strictly in arrival order and replays of the same id reconciliation
// are no-ops.
type dispatcher struct {
	timeline *model.Timeline
	ledger   *suggest.Ledger
	labels   *labels.Table
	stats    *model.Statistics
	mode     string

	refresher Refresher

	// onCard and onResolved are detached persistence hooks; their
	// failures never surface into event handling.
	onCard     func(card *suggest.Card)
	onResolved func(provisional, durable model.MessageID)

	// route is the last route target reported by the stream; it decides
	// whether tokens are mirrored into the open message.
	route string

	// accumulated collects every token regardless of route. Only its
	// emptiness is consulted at done time, for producing routes.
	accumulated strings.Builder

	// toolChars is the high-water mark of the progress counter; stale
	// out-of-order progress records never move the label backwards.
	toolChars int

	done       bool
	doneConvID string
	failed     bool
}

// producing reports whether the current cycle writes content elsewhere.
func (d *dispatcher) producing(ev agent.Event) bool {
	if ev.IsProducing {
		return true
	}
	route := d.route
	if ev.Route != "" {
		route = ev.Route
	}
	return d.labels.Producing(route)
}

// handle applies one event. Terminal events (done, error) close the open
// assistant message; everything after them on the same stream is ignored.
func (d *dispatcher) handle(ev agent.Event) {
	if d.done {
		return
	}

	switch ev.Type {
	case agent.EventRoute:
		d.route = ev.Target
		if open := d.timeline.Open(); open != nil {
			open.Route = ev.Target
			open.Activity = d.labels.RouteActivity(ev.Target)
		}

	case agent.EventToolStart:
		d.toolChars = 0
		if open := d.timeline.Open(); open != nil {
			open.Activity = d.labels.ToolStart(ev.Tool)
		}

	case agent.EventToolProgress:
		if ev.Chars > d.toolChars {
			d.toolChars = ev.Chars
		}
		if open := d.timeline.Open(); open != nil {
			open.Activity = d.labels.ToolProgress(ev.Tool, d.toolChars)
		}

	case agent.EventToolEnd:
		if open := d.timeline.Open(); open != nil {
			open.Activity = d.labels.ToolDone(ev.Tool)
		}
		if ev.FieldUpdated != "" && d.refresher != nil {
			d.refresher.ContentUpdated(ev.FieldUpdated)
		}

	case agent.EventSuggestionCard:
		d.handleCard(ev)

	case agent.EventToken:
		d.stats.RecordFirstToken()
		d.accumulated.WriteString(ev.Content)
		if open := d.timeline.Open(); open != nil && !d.labels.Producing(d.route) {
			open.AppendToken(ev.Content)
		}

	case agent.EventUserSaved:
		d.resolveLastUser(model.MessageID(ev.MessageID))

	case agent.EventDone:
		d.handleDone(ev)

	case agent.EventError:
		if open := d.timeline.Open(); open != nil {
			open.MarkFailed(ev.Error)
		}
		d.timeline.CloseOpen()
		d.failed = true
		d.done = true
	}
}

// handleCard records a streamed suggestion card, bound to the open
// assistant message, and mirrors its summary into the message body.
func (d *dispatcher) handleCard(ev agent.Event) {
	open := d.timeline.Open()
	if open == nil {
		return
	}

	card := &suggest.Card{
		ID:           ev.ID,
		TargetField:  ev.TargetField,
		Summary:      ev.Summary,
		Reason:       ev.Reason,
		DiffPreview:  ev.DiffPreview,
		EditsCount:   ev.EditsCount,
		GroupID:      ev.GroupID,
		GroupSummary: ev.GroupSummary,
		MessageID:    open.ID,
		Mode:         d.mode,
	}
	d.ledger.Append(card)
	open.AppendCardSummary(ev.Summary)
	if d.onCard != nil {
		d.onCard(card)
	}
}

// handleDone closes the cycle: reconciles the open assistant id across
// timeline and ledger, substitutes the fixed completion message when a
// producing route finished without conversational output, and clears any
// dangling follow-up source.
func (d *dispatcher) handleDone(ev agent.Event) {
	durable := model.MessageID(ev.MessageID)

	if open := d.timeline.Open(); open != nil {
		if d.accumulated.Len() == 0 && d.producing(ev) {
			open.SetContent(labels.ProducedCompletion)
		}
		d.stats.Finalize()
		open.Finalize(d.stats)

		provisional := open.ID
		if d.timeline.Resolve(provisional, durable) {
			d.ledger.Repoint(provisional, durable)
			if d.onResolved != nil {
				d.onResolved(provisional, durable)
			}
		}
		d.timeline.CloseOpen()
	}

	d.ledger.ClearFollowUpSource()
	d.done = true
	d.doneConvID = ev.ConversationID

	// The whole generation may have touched external content.
	if d.refresher != nil {
		d.refresher.ContentUpdated("")
	}
}

// resolveLastUser reconciles the provisional id of the most recent user
// message. A durable id with nothing pending is a no-op.
func (d *dispatcher) resolveLastUser(durable model.MessageID) {
	last := d.timeline.LastUser()
	if last == nil || !last.ID.Provisional() {
		return
	}
	provisional := last.ID
	if d.timeline.Resolve(provisional, durable) && d.onResolved != nil {
		d.onResolved(provisional, durable)
	}
}
