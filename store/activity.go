// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"

	"github.com/danielhkuo/ballotbox/models"
)

func (s *Store) InsertActivity(ctx context.Context, a models.ActivityLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_logs (id, user_id, action, details, ip_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.UserID, a.Action, a.Details, a.IPHash, a.CreatedAt.UTC())
	return wrap("insert activity", err)
}

// ListActivity returns the newest entries first. limit <= 0 returns all.
func (s *Store) ListActivity(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	query := `SELECT id, user_id, action, details, ip_hash, created_at FROM activity_logs ORDER BY created_at DESC, id`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	logs := []models.ActivityLog{}
	err := s.db.SelectContext(ctx, &logs, query, args...)
	return logs, wrap("list activity", err)
}
