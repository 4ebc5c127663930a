// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"strings"

	"github.com/danielhkuo/ballotbox/models"
)

const profileColumns = `id, email, password_hash, full_name, registration_id, role, language, avatar_url, active, created_at`

func (s *Store) CreateProfile(ctx context.Context, p models.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, password_hash, full_name, registration_id, role, language, avatar_url, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, strings.ToLower(p.Email), p.PasswordHash, p.FullName, p.RegistrationID,
		p.Role, p.Language, p.AvatarURL, p.Active, p.CreatedAt)
	return wrap("create profile", err)
}

func (s *Store) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	var p models.Profile
	err := s.db.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	return p, wrap("get profile", err)
}

func (s *Store) GetProfileByEmail(ctx context.Context, email string) (models.Profile, error) {
	var p models.Profile
	err := s.db.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM profiles WHERE email = $1`, strings.ToLower(email))
	return p, wrap("get profile by email", err)
}

// UpdateProfile writes every mutable column of p
func (s *Store) UpdateProfile(ctx context.Context, p models.Profile) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE profiles
		SET full_name = $1, registration_id = $2, language = $3, avatar_url = $4, active = $5
		WHERE id = $6
	`, p.FullName, p.RegistrationID, p.Language, p.AvatarURL, p.Active, p.ID)
	if err != nil {
		return wrap("update profile", err)
	}
	return requireOne("update profile", res)
}

// ListProfiles returns profiles with the given role, newest first. search
// matches name, email or registration id case-insensitively.
func (s *Store) ListProfiles(ctx context.Context, role, search string) ([]models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE role = $1`
	args := []interface{}{role}
	if search != "" {
		query += ` AND (LOWER(full_name) LIKE $2 OR LOWER(email) LIKE $2 OR LOWER(COALESCE(registration_id, '')) LIKE $2)`
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	query += ` ORDER BY created_at DESC, id`

	profiles := []models.Profile{}
	err := s.db.SelectContext(ctx, &profiles, query, args...)
	return profiles, wrap("list profiles", err)
}

// DeleteProfile removes a profile together with its votes and messages.
// Vote counters are decremented so the tallies stay consistent.
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrap("delete profile", err)
	}
	defer tx.Rollback()

	var votes []models.Vote
	if err := tx.SelectContext(ctx, &votes, `SELECT `+voteColumns+` FROM votes WHERE voter_id = $1`, id); err != nil {
		return wrap("delete profile", err)
	}
	for _, v := range votes {
		if _, err := tx.ExecContext(ctx, `UPDATE candidates SET vote_count = vote_count - 1 WHERE id = $1`, v.CandidateID); err != nil {
			return wrap("delete profile", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE elections SET total_votes = total_votes - 1 WHERE id = $1`, v.ElectionID); err != nil {
			return wrap("delete profile", err)
		}
	}

	stmts := []string{
		`DELETE FROM votes WHERE voter_id = $1`,
		`DELETE FROM support_messages WHERE sender_id = $1 OR receiver_id = $1`,
		`UPDATE activity_logs SET user_id = NULL WHERE user_id = $1`,
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return wrap("delete profile", err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return wrap("delete profile", err)
	}
	if err := requireOne("delete profile", res); err != nil {
		return err
	}
	return wrap("delete profile", tx.Commit())
}
