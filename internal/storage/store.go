// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversation history in a local SQLite
// database. It supplies the timeline and ledger snapshots a session
// loads on start, filtered by mode; other modes' data stays on disk.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/draftpilot-tui/internal/model"
	"github.com/jeranaias/draftpilot-tui/internal/suggest"
	"github.com/jeranaias/draftpilot-tui/internal/util"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	is_edited       INTEGER NOT NULL DEFAULT 0,
	failed          INTEGER NOT NULL DEFAULT 0,
	created_at      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation
	ON messages(conversation_id, created_at);

CREATE TABLE IF NOT EXISTS cards (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	message_id      TEXT NOT NULL,
	mode            TEXT NOT NULL,
	target_field    TEXT NOT NULL,
	summary         TEXT NOT NULL,
	reason          TEXT NOT NULL DEFAULT '',
	diff_preview    TEXT NOT NULL DEFAULT '',
	edits_count     INTEGER NOT NULL DEFAULT 0,
	group_id        TEXT NOT NULL DEFAULT '',
	group_summary   TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL,
	created_at      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cards_conversation
	ON cards(conversation_id, mode, created_at);
`

// =============================================================================
// STORE
// =============================================================================

// Store is the SQLite-backed conversation store. Safe for concurrent use
// through database/sql's connection pool (capped at one connection, the
// SQLite single-writer rule).
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewConversationID mints a conversation id for a locally created
// conversation (one not yet assigned an id by the backend).
func NewConversationID() string {
	return "conv-" + uuid.NewString()
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// ConversationMeta describes one conversation for list views.
type ConversationMeta struct {
	ID           string
	Title        string
	UpdatedAt    time.Time
	MessageCount int
	Preview      string
}

// EnsureConversation upserts the conversation row and refreshes its
// title from the given text when the title is still empty.
func (s *Store) EnsureConversation(id, title string) error {
	now := time.Now().UnixNano()
	_, err := s.db.Exec(`
		INSERT INTO conversations (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at = excluded.updated_at,
			title = CASE WHEN conversations.title = '' THEN excluded.title ELSE conversations.title END`,
		id, util.TruncateRunes(title, 80), now, now)
	return err
}

// ListConversations returns every conversation, most recently updated
// first, with a preview drawn from its first user message.
func (s *Store) ListConversations() ([]ConversationMeta, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.title, c.updated_at,
			(SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id),
			COALESCE((SELECT m.content FROM messages m
				WHERE m.conversation_id = c.id AND m.role = 'user'
				ORDER BY m.created_at LIMIT 1), '')
		FROM conversations c
		ORDER BY c.updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ConversationMeta
	for rows.Next() {
		var meta ConversationMeta
		var updatedAt int64
		if err := rows.Scan(&meta.ID, &meta.Title, &updatedAt, &meta.MessageCount, &meta.Preview); err != nil {
			return nil, err
		}
		meta.UpdatedAt = time.Unix(0, updatedAt)
		meta.Preview = util.TruncateRunes(meta.Preview, 60)
		out = append(out, meta)
	}
	return out, rows.Err()
}

// DeleteConversation removes a conversation and everything in it.
func (s *Store) DeleteConversation(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM cards WHERE conversation_id = ?",
		"DELETE FROM messages WHERE conversation_id = ?",
		"DELETE FROM conversations WHERE id = ?",
	} {
		if _, err := tx.Exec(stmt, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// =============================================================================
// MESSAGES
// =============================================================================

// SaveMessage upserts one message. Re-saving after the conversation id
// was assigned moves the row to that conversation.
func (s *Store) SaveMessage(conversationID string, msg *model.Message) error {
	_, err := s.db.Exec(`
		INSERT INTO messages (id, conversation_id, role, content, is_edited, failed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			conversation_id = excluded.conversation_id,
			content = excluded.content,
			is_edited = excluded.is_edited,
			failed = excluded.failed`,
		msg.ID.String(), conversationID, msg.Role.String(), msg.Content,
		boolInt(msg.IsEdited), boolInt(msg.Failed), msg.CreatedAt.UnixNano())
	return err
}

// UpdateMessageID rewrites a provisional message id to the durable one,
// in the message row and in every card bound to it.
func (s *Store) UpdateMessageID(provisional, durable model.MessageID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE messages SET id = ? WHERE id = ?",
		durable.String(), provisional.String()); err != nil {
		return err
	}
	if _, err := tx.Exec("UPDATE cards SET message_id = ? WHERE message_id = ?",
		durable.String(), provisional.String()); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteMessages removes the given messages and their bound cards.
func (s *Store) DeleteMessages(ids []model.MessageID) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.Exec("DELETE FROM cards WHERE message_id = ?", id.String()); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM messages WHERE id = ?", id.String()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// =============================================================================
// CARDS
// =============================================================================

// SaveCard upserts one suggestion card.
func (s *Store) SaveCard(conversationID string, card *suggest.Card) error {
	_, err := s.db.Exec(`
		INSERT INTO cards (id, conversation_id, message_id, mode, target_field, summary,
			reason, diff_preview, edits_count, group_id, group_summary, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			conversation_id = excluded.conversation_id,
			message_id = excluded.message_id,
			status = excluded.status`,
		card.ID, conversationID, card.MessageID.String(), card.Mode, card.TargetField,
		card.Summary, card.Reason, card.DiffPreview, card.EditsCount,
		card.GroupID, card.GroupSummary, string(card.Status), card.CreatedAt.UnixNano())
	return err
}

// UpdateCardStatus records a card lifecycle transition.
func (s *Store) UpdateCardStatus(cardID string, status suggest.Status) error {
	_, err := s.db.Exec("UPDATE cards SET status = ? WHERE id = ?", string(status), cardID)
	return err
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot loads a conversation's messages and its cards for one mode,
// both in creation order. This is the view a session rebuilds from on
// load and on mode switch.
func (s *Store) Snapshot(conversationID, mode string) ([]*model.Message, []*suggest.Card, error) {
	rows, err := s.db.Query(`
		SELECT id, role, content, is_edited, failed, created_at
		FROM messages WHERE conversation_id = ?
		ORDER BY created_at, rowid`, conversationID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var messages []*model.Message
	for rows.Next() {
		var msg model.Message
		var id, role string
		var isEdited, failed int
		var createdAt int64
		if err := rows.Scan(&id, &role, &msg.Content, &isEdited, &failed, &createdAt); err != nil {
			return nil, nil, err
		}
		msg.ID = model.MessageID(id)
		msg.Role = model.Role(role)
		msg.IsEdited = isEdited != 0
		msg.Failed = failed != 0
		msg.CreatedAt = time.Unix(0, createdAt)
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	cardRows, err := s.db.Query(`
		SELECT id, message_id, mode, target_field, summary, reason, diff_preview,
			edits_count, group_id, group_summary, status, created_at
		FROM cards WHERE conversation_id = ? AND mode = ?
		ORDER BY created_at, rowid`, conversationID, mode)
	if err != nil {
		return nil, nil, err
	}
	defer cardRows.Close()

	var cards []*suggest.Card
	for cardRows.Next() {
		var card suggest.Card
		var messageID, status string
		var createdAt int64
		if err := cardRows.Scan(&card.ID, &messageID, &card.Mode, &card.TargetField,
			&card.Summary, &card.Reason, &card.DiffPreview, &card.EditsCount,
			&card.GroupID, &card.GroupSummary, &status, &createdAt); err != nil {
			return nil, nil, err
		}
		card.MessageID = model.MessageID(messageID)
		card.Status = suggest.Status(status)
		card.CreatedAt = time.Unix(0, createdAt)
		cards = append(cards, &card)
	}
	return messages, cards, cardRows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
