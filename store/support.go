// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"sort"

	"github.com/danielhkuo/ballotbox/models"
)

const messageColumns = `id, sender_id, sender_name, receiver_id, body, is_from_admin, is_read, created_at`

func (s *Store) InsertMessage(ctx context.Context, m models.SupportMessage) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO support_messages (id, sender_id, sender_name, receiver_id, body, is_from_admin, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, m.ID, m.SenderID, m.SenderName, m.ReceiverID, m.Body, m.IsFromAdmin, m.Read, m.CreatedAt.UTC())
	return wrap("insert message", err)
}

// ListMessages returns the whole support table, oldest first
func (s *Store) ListMessages(ctx context.Context) ([]models.SupportMessage, error) {
	msgs := []models.SupportMessage{}
	err := s.db.SelectContext(ctx, &msgs, `
		SELECT `+messageColumns+` FROM support_messages ORDER BY created_at, id
	`)
	return msgs, wrap("list messages", err)
}

// MessagesForUser returns messages sent by or addressed to userID
func (s *Store) MessagesForUser(ctx context.Context, userID string) ([]models.SupportMessage, error) {
	msgs := []models.SupportMessage{}
	err := s.db.SelectContext(ctx, &msgs, `
		SELECT `+messageColumns+` FROM support_messages
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at, id
	`, userID)
	return msgs, wrap("messages for user", err)
}

// MarkInboundRead flips read on the voter's unread messages to support and
// returns the rows it changed
func (s *Store) MarkInboundRead(ctx context.Context, voterID string) ([]models.SupportMessage, error) {
	return s.markRead(ctx, "mark inbound read", `
		UPDATE support_messages SET is_read = $1
		WHERE sender_id = $2 AND is_from_admin = $3 AND is_read = $3
		RETURNING `+messageColumns, true, voterID, false)
}

// MarkAdminRepliesRead flips read on admin messages addressed to the voter
// and returns the rows it changed
func (s *Store) MarkAdminRepliesRead(ctx context.Context, voterID string) ([]models.SupportMessage, error) {
	return s.markRead(ctx, "mark replies read", `
		UPDATE support_messages SET is_read = $1
		WHERE receiver_id = $2 AND is_from_admin = $1 AND is_read = $3
		RETURNING `+messageColumns, true, voterID, false)
}

func (s *Store) markRead(ctx context.Context, op, query string, args ...interface{}) ([]models.SupportMessage, error) {
	msgs := []models.SupportMessage{}
	err := s.db.SelectContext(ctx, &msgs, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	sort.Slice(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		}
		return msgs[i].ID < msgs[j].ID
	})
	return msgs, nil
}

// LastAdminReplier returns the admin who most recently wrote to the voter
func (s *Store) LastAdminReplier(ctx context.Context, voterID string) (string, error) {
	var senderID string
	err := s.db.GetContext(ctx, &senderID, `
		SELECT sender_id FROM support_messages
		WHERE receiver_id = $1 AND is_from_admin = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, voterID, true)
	return senderID, wrap("last admin replier", err)
}
