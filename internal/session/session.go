// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/draftpilot-tui/internal/agent"
	"github.com/jeranaias/draftpilot-tui/internal/labels"
	"github.com/jeranaias/draftpilot-tui/internal/model"
	"github.com/jeranaias/draftpilot-tui/internal/refs"
	"github.com/jeranaias/draftpilot-tui/internal/storage"
	"github.com/jeranaias/draftpilot-tui/internal/suggest"
	"github.com/jeranaias/draftpilot-tui/internal/undo"
)

var (
	// ErrBusy indicates the operation cannot run while a send is in flight.
	ErrBusy = errors.New("send in flight")

	// ErrUndoUnavailable indicates the id does not match the active undo token.
	ErrUndoUnavailable = errors.New("no active undo for id")

	// ErrNotUserMessage indicates an edit targeted a non-user message.
	ErrNotUserMessage = errors.New("only user messages can be edited")

	// ErrNothingPending indicates a group action found no pending siblings.
	ErrNothingPending = errors.New("no pending cards in group")
)

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// Backend is the agent API surface the session talks to.
type Backend interface {
	ChatStream(ctx context.Context, req *agent.ChatRequest, fn agent.EventCallback) error
	Confirm(ctx context.Context, req *agent.ConfirmRequest) (*agent.ConfirmResponse, error)
	Rollback(ctx context.Context, entityID, versionID string) error
}

// Store persists conversation history. All calls from the session are
// fire-and-forget; a nil Store disables persistence entirely.
type Store interface {
	SaveMessage(conversationID string, msg *model.Message) error
	UpdateMessageID(provisional, durable model.MessageID) error
	DeleteMessages(ids []model.MessageID) error
	SaveCard(conversationID string, card *suggest.Card) error
	UpdateCardStatus(cardID string, status suggest.Status) error
	Snapshot(conversationID, mode string) ([]*model.Message, []*suggest.Card, error)
	EnsureConversation(conversationID, title string) error
	ListConversations() ([]storage.ConversationMeta, error)
	DeleteConversation(conversationID string) error
}

// =============================================================================
// SESSION
// =============================================================================

// Config wires a Session's collaborators.
type Config struct {
	Backend   Backend
	Store     Store         // optional
	Refresher Refresher     // optional
	Resolver  refs.Resolver // optional
	Labels    *labels.Table // nil uses labels.Default()

	ConversationID string
	Mode           string
	Phase          string

	// UndoWindow bounds how long an accepted suggestion stays undoable.
	UndoWindow time.Duration

	// Notify is called after every state change, outside the lock.
	Notify func()
}

// Session owns one logical conversation. All exported methods are safe
// for concurrent use; Send blocks for the whole stream and is expected
// to run off the UI loop.
type Session struct {
	mu sync.Mutex

	backend   Backend
	store     Store
	refresher Refresher
	resolver  refs.Resolver
	labels    *labels.Table
	notify    func()

	conversationID string
	mode           string
	phase          string

	timeline   *model.Timeline
	ledger     *suggest.Ledger
	undoQ      *undo.Queue
	undoWindow time.Duration
	followUp   *suggest.FollowUpContext

	// Single-flight send state.
	sending   bool
	cancelled bool
	cancel    context.CancelFunc
	disp      *dispatcher
}

// New creates a session and loads its history snapshot from the store.
func New(cfg Config) *Session {
	if cfg.Labels == nil {
		cfg.Labels = labels.Default()
	}
	s := &Session{
		backend:        cfg.Backend,
		store:          cfg.Store,
		refresher:      cfg.Refresher,
		resolver:       cfg.Resolver,
		labels:         cfg.Labels,
		notify:         cfg.Notify,
		conversationID: cfg.ConversationID,
		mode:           cfg.Mode,
		phase:          cfg.Phase,
		undoQ:          undo.NewQueue(cfg.UndoWindow),
		undoWindow:     cfg.UndoWindow,
		followUp:       suggest.NewFollowUpContext(),
	}
	s.loadSnapshot()
	return s
}

// loadSnapshot rebuilds the timeline and ledger views for the current
// conversation and mode. Other modes' data stays in the store untouched.
func (s *Session) loadSnapshot() {
	s.timeline = model.NewTimeline()
	s.ledger = suggest.NewLedger()
	s.installLedgerHook()

	if s.store == nil || s.conversationID == "" {
		return
	}
	messages, cards, err := s.store.Snapshot(s.conversationID, s.mode)
	if err != nil {
		log.Printf("session: history snapshot failed: %v", err)
		return
	}
	for _, msg := range messages {
		s.timeline.Append(msg)
	}
	for _, card := range cards {
		s.ledger.Restore(card)
	}
}

// installLedgerHook wires the detached supersession calls: the status
// row update and the confirmation telling the backend the card was
// retired. Both are fire-and-forget; the confirm runs off the lock the
// hook fires under.
func (s *Session) installLedgerHook() {
	s.ledger.SetSupersededHook(func(card *suggest.Card) {
		s.persistCardStatus(card)
		go s.confirmSupersede(card.ID)
	})
}

func (s *Session) confirmSupersede(cardID string) {
	if _, err := s.backend.Confirm(context.Background(), &agent.ConfirmRequest{
		SuggestionID: cardID,
		Action:       agent.ActionSupersede,
	}); err != nil {
		log.Printf("session: supersede confirm failed for %s: %v", cardID, err)
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Messages returns the current timeline view.
func (s *Session) Messages() []*model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.Messages()
}

// Cards returns every suggestion card in the current view.
func (s *Session) Cards() []*suggest.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Cards()
}

// UndoHead returns the active undo token and its remaining window.
func (s *Session) UndoHead() (*undo.Token, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.undoQ.Head(), s.undoQ.Remaining()
}

// Sending reports whether a send cycle is in flight.
func (s *Session) Sending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sending
}

// ConversationID returns the current conversation id. Empty until the
// backend assigns one on the first completed send.
func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// Mode returns the current mode.
func (s *Session) Mode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// =============================================================================
// SEND CYCLE
// =============================================================================

// Send issues one message and blocks until the stream closes. A second
// send while one is in flight is silently ignored; resolving that race
// is exactly what the single-flight flag is for.
func (s *Session) Send(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return nil
	}
	user := s.timeline.AppendUser(text)
	s.persistMessage(user)
	return s.runLocked(ctx, text)
}

// Cancel cooperatively stops the in-flight stream. If the done event has
// already been applied the cancel loses the race and is a no-op.
func (s *Session) Cancel() {
	s.mu.Lock()
	if !s.sending || s.cancel == nil || (s.disp != nil && s.disp.done) {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	cancel := s.cancel
	s.mu.Unlock()
	cancel()
}

// EditAndResend rewrites a past user message, truncates everything after
// it (dropping suggestion cards and undo tokens bound to the removed
// messages), and re-issues the send with the edited content.
func (s *Session) EditAndResend(ctx context.Context, id model.MessageID, content string) error {
	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return nil
	}
	msg := s.timeline.ByID(id)
	if msg == nil || msg.Role != model.RoleUser {
		s.mu.Unlock()
		return ErrNotUserMessage
	}

	removed := s.timeline.TruncateAfter(id)
	for _, card := range s.ledger.RemoveForMessages(removed) {
		s.undoQ.Remove(card.ID)
		if card.GroupID != "" {
			s.undoQ.Remove(card.GroupID)
		}
	}
	msg.Content = content
	msg.IsEdited = true

	if s.store != nil {
		if err := s.store.DeleteMessages(removed); err != nil {
			log.Printf("session: truncation persist failed: %v", err)
		}
	}
	s.persistMessage(msg)

	return s.runLocked(ctx, content)
}

// runLocked executes one send cycle. The caller holds the lock with the
// single-flight check already passed; runLocked releases it around the
// blocking stream read.
func (s *Session) runLocked(ctx context.Context, text string) error {
	s.sending = true
	s.cancelled = false

	s.timeline.OpenAssistant()

	d := &dispatcher{
		timeline:  s.timeline,
		ledger:    s.ledger,
		labels:    s.labels,
		stats:     model.NewStatistics(),
		mode:      s.mode,
		refresher: s.refresher,
		onCard: func(card *suggest.Card) {
			s.persistCard(card)
		},
		onResolved: func(provisional, durable model.MessageID) {
			s.persistIDUpdate(provisional, durable)
		},
	}
	s.disp = d

	streamCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	references := refs.Resolve(text, s.resolver)
	if references == nil {
		references = []string{}
	}
	req := &agent.ChatRequest{
		Message:         text,
		References:      references,
		CurrentPhase:    s.phase,
		Mode:            s.mode,
		ConversationID:  s.conversationID,
		FollowupContext: s.followUp.Drain(),
	}
	s.mu.Unlock()
	s.notifyObservers()

	streamErr := s.backend.ChatStream(streamCtx, req, func(ev agent.Event) {
		s.mu.Lock()
		d.handle(ev)
		s.mu.Unlock()
		s.notifyObservers()
	})
	cancel()

	s.mu.Lock()
	err := s.finishLocked(d, streamErr)
	s.mu.Unlock()
	s.notifyObservers()
	return err
}

// finishLocked settles the cycle after the stream closes and releases
// the single-flight lock.
func (s *Session) finishLocked(d *dispatcher, streamErr error) error {
	s.sending = false
	s.cancel = nil
	s.disp = nil

	switch {
	case d.done:
		// Natural completion (or an error event, already applied). A
		// cancel that lost the race to done changes nothing.
		if d.doneConvID != "" && d.doneConvID != s.conversationID {
			// First completed send: the backend just assigned the
			// conversation id, so re-home everything saved under the
			// old one.
			s.conversationID = d.doneConvID
			s.persistAllLocked()
		} else {
			s.persistTail()
		}
		s.ensureConversationLocked()
		return nil

	case s.cancelled || errors.Is(streamErr, context.Canceled):
		if open := s.timeline.Open(); open != nil {
			open.SetContent(labels.GenerationStopped)
			open.Finalize(nil)
		}
		s.timeline.CloseOpen()
		return nil

	case streamErr != nil:
		// Transport fault: mark the message failed and return to idle.
		// The session stays usable for a resend.
		if open := s.timeline.Open(); open != nil {
			open.MarkFailed(labels.GenerationFailed)
		}
		s.timeline.CloseOpen()
		return fmt.Errorf("stream failed: %w", streamErr)

	default:
		// Stream ended without a terminal event. Treat like a fault.
		if open := s.timeline.Open(); open != nil {
			open.MarkFailed(labels.GenerationFailed)
		}
		s.timeline.CloseOpen()
		return errors.New("stream closed without done event")
	}
}

// persistTail saves the finished assistant message.
func (s *Session) persistTail() {
	if s.store == nil || s.timeline.Len() == 0 {
		return
	}
	msgs := s.timeline.Messages()
	s.persistMessage(msgs[len(msgs)-1])
}

// ensureConversationLocked upserts the conversation row so it shows up
// in the history list, titled from the first user message with mention
// markers removed.
func (s *Session) ensureConversationLocked() {
	if s.store == nil || s.conversationID == "" {
		return
	}
	var title string
	for _, msg := range s.timeline.Messages() {
		if msg.Role == model.RoleUser {
			title = refs.Strip(msg.Preview(80))
			break
		}
	}
	if err := s.store.EnsureConversation(s.conversationID, title); err != nil {
		log.Printf("session: conversation persist failed: %v", err)
	}
}

// persistAllLocked re-saves the whole view under the current
// conversation id.
func (s *Session) persistAllLocked() {
	if s.store == nil {
		return
	}
	for _, msg := range s.timeline.Messages() {
		s.persistMessage(msg)
	}
	for _, card := range s.ledger.Cards() {
		s.persistCard(card)
	}
}

// =============================================================================
// SUGGESTION ACTIONS
// =============================================================================

// Accept applies a single suggestion card. The local transition is
// authoritative; the confirmation call's failure is logged only. An
// undo token is enqueued when the response carries a version reference.
func (s *Session) Accept(ctx context.Context, cardID string) error {
	s.mu.Lock()
	card := s.ledger.Get(cardID)
	if err := s.ledger.MarkAccepted(cardID); err != nil {
		s.mu.Unlock()
		return err
	}
	s.followUp.Add(fmt.Sprintf("User accepted suggestion for %s: %s", card.TargetField, card.Summary))
	s.persistCardStatus(card)
	s.mu.Unlock()
	s.notifyObservers()

	resp, err := s.backend.Confirm(ctx, &agent.ConfirmRequest{
		SuggestionID: cardID,
		Action:       agent.ActionAccept,
	})
	if err != nil {
		log.Printf("session: accept confirm failed for %s: %v", cardID, err)
		return nil
	}

	s.mu.Lock()
	s.enqueueUndoLocked(cardID, card.TargetField, card.Summary, []string{cardID}, resp)
	s.mu.Unlock()
	s.notifyObservers()
	return nil
}

// Reject dismisses a pending suggestion card.
func (s *Session) Reject(ctx context.Context, cardID string) error {
	s.mu.Lock()
	card := s.ledger.Get(cardID)
	if err := s.ledger.MarkRejected(cardID); err != nil {
		s.mu.Unlock()
		return err
	}
	s.followUp.Add(fmt.Sprintf("User rejected suggestion for %s: %s", card.TargetField, card.Summary))
	s.persistCardStatus(card)
	s.mu.Unlock()
	s.notifyObservers()

	if _, err := s.backend.Confirm(ctx, &agent.ConfirmRequest{
		SuggestionID: cardID,
		Action:       agent.ActionReject,
	}); err != nil {
		log.Printf("session: reject confirm failed for %s: %v", cardID, err)
	}
	return nil
}

// GroupAccept applies a subset of a card group's pending siblings.
// Unselected siblings stay pending. Selecting the whole pending set is
// a full accept; anything less goes through the partial-apply action.
func (s *Session) GroupAccept(ctx context.Context, groupID string, selected []string) error {
	s.mu.Lock()
	if !s.ledger.IsGroup(groupID) {
		s.mu.Unlock()
		return fmt.Errorf("%w: group %s", suggest.ErrUnknownCard, groupID)
	}
	pending := s.ledger.GroupWithStatus(groupID, suggest.StatusPending)
	if len(pending) == 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNothingPending, groupID)
	}

	pendingSet := make(map[string]bool, len(pending))
	for _, c := range pending {
		pendingSet[c.ID] = true
	}
	var applied []string
	var fields []string
	var groupSummary string
	for _, id := range selected {
		if !pendingSet[id] {
			continue
		}
		card := s.ledger.Get(id)
		if err := s.ledger.MarkAccepted(id); err != nil {
			continue
		}
		applied = append(applied, id)
		fields = append(fields, card.TargetField)
		groupSummary = card.GroupSummary
		s.persistCardStatus(card)
	}
	if len(applied) == 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: nothing selected from %s", ErrNothingPending, groupID)
	}

	action := agent.ActionAccept
	if len(applied) < len(pending) {
		action = agent.ActionPartial
	}
	s.followUp.Add(fmt.Sprintf("User accepted %d of %d grouped suggestions (%s)",
		len(applied), len(pending), strings.Join(fields, ", ")))
	s.mu.Unlock()
	s.notifyObservers()

	resp, err := s.backend.Confirm(ctx, &agent.ConfirmRequest{
		SuggestionID:    groupID,
		Action:          action,
		AcceptedCardIDs: applied,
	})
	if err != nil {
		log.Printf("session: group accept confirm failed for %s: %v", groupID, err)
		return nil
	}

	s.mu.Lock()
	s.enqueueUndoLocked(groupID, strings.Join(fields, ", "), groupSummary, applied, resp)
	s.mu.Unlock()
	s.notifyObservers()
	return nil
}

// GroupReject dismisses all pending siblings of a card group in one
// request.
func (s *Session) GroupReject(ctx context.Context, groupID string) error {
	s.mu.Lock()
	if !s.ledger.IsGroup(groupID) {
		s.mu.Unlock()
		return fmt.Errorf("%w: group %s", suggest.ErrUnknownCard, groupID)
	}
	pending := s.ledger.GroupWithStatus(groupID, suggest.StatusPending)
	if len(pending) == 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNothingPending, groupID)
	}
	var fields []string
	for _, card := range pending {
		if err := s.ledger.MarkRejected(card.ID); err != nil {
			continue
		}
		fields = append(fields, card.TargetField)
		s.persistCardStatus(card)
	}
	s.followUp.Add(fmt.Sprintf("User rejected %d grouped suggestions (%s)",
		len(fields), strings.Join(fields, ", ")))
	s.mu.Unlock()
	s.notifyObservers()

	if _, err := s.backend.Confirm(ctx, &agent.ConfirmRequest{
		SuggestionID: groupID,
		Action:       agent.ActionReject,
	}); err != nil {
		log.Printf("session: group reject confirm failed for %s: %v", groupID, err)
	}
	return nil
}

// Undo exercises the active undo token. The id must name the head of
// the queue; tokens behind it are not yet invokable. Rollback targets
// are issued jointly; the outcome counts as success when the primary
// target rolled back, and any partial failure is logged, never blocking
// the local transition.
func (s *Session) Undo(ctx context.Context, id string) error {
	s.mu.Lock()
	head := s.undoQ.Head()
	if head == nil || head.SuggestionID != id {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUndoUnavailable, id)
	}
	token := s.undoQ.Pop()

	var fields []string
	for _, cardID := range token.CardIDs {
		card := s.ledger.Get(cardID)
		if card == nil {
			continue
		}
		if err := s.ledger.MarkUndone(cardID); err != nil {
			log.Printf("session: undo transition for %s: %v", cardID, err)
			continue
		}
		fields = append(fields, card.TargetField)
		s.persistCardStatus(card)
	}
	if token.Grouped() {
		s.followUp.Add(fmt.Sprintf("User undid grouped suggestions (%s)", strings.Join(fields, ", ")))
	} else {
		s.followUp.Add(fmt.Sprintf("User undid suggestion for %s", token.TargetField))
	}
	s.mu.Unlock()
	s.notifyObservers()

	s.rollback(ctx, token)

	if _, err := s.backend.Confirm(ctx, &agent.ConfirmRequest{
		SuggestionID: id,
		Action:       agent.ActionUndo,
	}); err != nil {
		log.Printf("session: undo confirm failed for %s: %v", id, err)
	}
	return nil
}

// rollback issues every target's rollback together and waits for all.
func (s *Session) rollback(ctx context.Context, token *undo.Token) {
	if len(token.Targets) == 0 {
		return
	}
	errs := make([]error, len(token.Targets))
	var wg sync.WaitGroup
	for i, target := range token.Targets {
		wg.Add(1)
		go func(i int, target undo.RollbackTarget) {
			defer wg.Done()
			errs[i] = s.backend.Rollback(ctx, target.EntityID, target.VersionID)
		}(i, target)
	}
	wg.Wait()

	if errs[0] != nil {
		log.Printf("session: primary rollback failed for %s: %v", token.SuggestionID, errs[0])
	}
	for i, err := range errs[1:] {
		if err != nil {
			log.Printf("session: secondary rollback failed for %s: %v",
				token.Targets[i+1].EntityID, err)
		}
	}
}

// AskFollowUp marks a card as the follow-up source and sends the
// question. The next same-target card to arrive supersedes the source.
func (s *Session) AskFollowUp(ctx context.Context, cardID, question string) error {
	s.mu.Lock()
	card := s.ledger.Get(cardID)
	if card == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", suggest.ErrUnknownCard, cardID)
	}
	s.ledger.SetFollowUpSource(cardID)
	s.followUp.Add(fmt.Sprintf("User asked a follow-up about the %s suggestion", card.TargetField))
	s.mu.Unlock()

	return s.Send(ctx, question)
}

// enqueueUndoLocked creates an undo token when the confirm response
// carries at least one version reference. An accept with no version
// reference is simply not undoable.
func (s *Session) enqueueUndoLocked(suggestionID, targetField, summary string, cardIDs []string, resp *agent.ConfirmResponse) {
	if resp == nil {
		return
	}
	var targets []undo.RollbackTarget
	for _, applied := range resp.AppliedCards {
		if applied.VersionID == "" {
			continue
		}
		targets = append(targets, undo.RollbackTarget{
			EntityID:  applied.EntityID,
			VersionID: applied.VersionID,
		})
	}
	if len(targets) == 0 {
		return
	}
	s.undoQ.Enqueue(&undo.Token{
		SuggestionID: suggestionID,
		TargetField:  targetField,
		Summary:      summary,
		Targets:      targets,
		CardIDs:      cardIDs,
	})
}

// =============================================================================
// VIEW SWITCHING
// =============================================================================

// SwitchMode rebuilds the timeline and ledger views for another mode.
// Data from the current mode stays in the store. Undo tokens reference
// cards no longer in view, so the queue is dropped.
func (s *Session) SwitchMode(mode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sending {
		return ErrBusy
	}
	if mode == s.mode {
		return nil
	}
	s.mode = mode
	s.undoQ = undo.NewQueue(s.undoWindow)
	s.loadSnapshot()
	return nil
}

// SwitchConversation tears down the current views and loads another
// conversation's history. Follow-up context does not carry across.
func (s *Session) SwitchConversation(conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sending {
		return ErrBusy
	}
	s.conversationID = conversationID
	s.undoQ = undo.NewQueue(s.undoWindow)
	s.followUp = suggest.NewFollowUpContext()
	s.loadSnapshot()
	return nil
}

// NewConversation switches to a fresh conversation under a client-minted
// id. The backend may still assign its own id on the first completed
// send; everything saved meanwhile is re-homed then.
func (s *Session) NewConversation() error {
	return s.SwitchConversation(storage.NewConversationID())
}

// Conversations lists the stored conversations, most recently updated
// first.
func (s *Session) Conversations() ([]storage.ConversationMeta, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.ListConversations()
}

// DeleteConversation removes a stored conversation and everything in it.
// Deleting the conversation in view switches to a fresh one first.
func (s *Session) DeleteConversation(conversationID string) error {
	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return ErrBusy
	}
	current := s.conversationID == conversationID
	s.mu.Unlock()

	if current {
		if err := s.NewConversation(); err != nil {
			return err
		}
	}
	if s.store == nil {
		return nil
	}
	return s.store.DeleteConversation(conversationID)
}

// SetUndoWindow changes the undo window for the current head token and
// everything behind it. Used by config hot reload.
func (s *Session) SetUndoWindow(window time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undoWindow = window
	s.undoQ.SetWindow(window)
}

// =============================================================================
// PERSISTENCE (fire-and-forget)
// =============================================================================

func (s *Session) persistMessage(msg *model.Message) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveMessage(s.conversationID, msg); err != nil {
		log.Printf("session: message persist failed: %v", err)
	}
}

func (s *Session) persistIDUpdate(provisional, durable model.MessageID) {
	if s.store == nil {
		return
	}
	if err := s.store.UpdateMessageID(provisional, durable); err != nil {
		log.Printf("session: id reconciliation persist failed: %v", err)
	}
}

func (s *Session) persistCard(card *suggest.Card) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveCard(s.conversationID, card); err != nil {
		log.Printf("session: card persist failed: %v", err)
	}
}

func (s *Session) persistCardStatus(card *suggest.Card) {
	if s.store == nil {
		return
	}
	if err := s.store.UpdateCardStatus(card.ID, card.Status); err != nil {
		log.Printf("session: card status persist failed: %v", err)
	}
}

func (s *Session) notifyObservers() {
	if s.notify != nil {
		s.notify()
	}
}
