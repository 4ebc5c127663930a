// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/ballotbox/models"
)

const (
	electionColumns  = `id, title, description, start_date, end_date, total_votes, created_by, created_at`
	candidateColumns = `id, election_id, name, party, bio, image_url, vote_count`
)

// CreateElection inserts an election and its initial candidates atomically
func (s *Store) CreateElection(ctx context.Context, e models.Election) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrap("create election", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO elections (id, title, description, start_date, end_date, total_votes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, e.Title, e.Description, e.StartDate.UTC(), e.EndDate.UTC(), 0, e.CreatedBy, e.CreatedAt)
	if err != nil {
		return wrap("create election", err)
	}

	for _, c := range e.Candidates {
		if err := insertCandidate(ctx, tx, c); err != nil {
			return err
		}
	}

	return wrap("create election", tx.Commit())
}

// GetElection returns one election with its candidates
func (s *Store) GetElection(ctx context.Context, id string) (models.Election, error) {
	var e models.Election
	err := s.db.GetContext(ctx, &e, `SELECT `+electionColumns+` FROM elections WHERE id = $1`, id)
	if err != nil {
		return e, wrap("get election", err)
	}

	e.Candidates = []models.Candidate{}
	err = s.db.SelectContext(ctx, &e.Candidates, `
		SELECT `+candidateColumns+` FROM candidates WHERE election_id = $1 ORDER BY name, id
	`, id)
	return e, wrap("get election candidates", err)
}

// ListElections returns all elections, newest start first, with candidates
func (s *Store) ListElections(ctx context.Context) ([]models.Election, error) {
	elections := []models.Election{}
	err := s.db.SelectContext(ctx, &elections, `
		SELECT `+electionColumns+` FROM elections ORDER BY start_date DESC, id
	`)
	if err != nil {
		return nil, wrap("list elections", err)
	}

	var candidates []models.Candidate
	err = s.db.SelectContext(ctx, &candidates, `
		SELECT `+candidateColumns+` FROM candidates ORDER BY name, id
	`)
	if err != nil {
		return nil, wrap("list candidates", err)
	}

	byElection := make(map[string][]models.Candidate)
	for _, c := range candidates {
		byElection[c.ElectionID] = append(byElection[c.ElectionID], c)
	}
	for i := range elections {
		elections[i].Candidates = byElection[elections[i].ID]
		if elections[i].Candidates == nil {
			elections[i].Candidates = []models.Candidate{}
		}
	}
	return elections, nil
}

// UpdateElection writes title, description and schedule
func (s *Store) UpdateElection(ctx context.Context, e models.Election) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE elections
		SET title = $1, description = $2, start_date = $3, end_date = $4
		WHERE id = $5
	`, e.Title, e.Description, e.StartDate.UTC(), e.EndDate.UTC(), e.ID)
	if err != nil {
		return wrap("update election", err)
	}
	return requireOne("update election", res)
}

// EndElection moves the end of the schedule to now
func (s *Store) EndElection(ctx context.Context, id string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE elections SET end_date = $1 WHERE id = $2`, now.UTC(), id)
	if err != nil {
		return wrap("end election", err)
	}
	return requireOne("end election", res)
}

// DeleteElection removes an election along with its votes and candidates
func (s *Store) DeleteElection(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrap("delete election", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE election_id = $1`, id); err != nil {
		return wrap("delete election votes", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM candidates WHERE election_id = $1`, id); err != nil {
		return wrap("delete election candidates", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM elections WHERE id = $1`, id)
	if err != nil {
		return wrap("delete election", err)
	}
	if err := requireOne("delete election", res); err != nil {
		return err
	}
	return wrap("delete election", tx.Commit())
}

func (s *Store) AddCandidate(ctx context.Context, c models.Candidate) error {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM elections WHERE id = $1)`, c.ElectionID)
	if err != nil {
		return wrap("add candidate", err)
	}
	if !exists {
		return wrap("add candidate", ErrNotFound)
	}
	return insertCandidate(ctx, s.db, c)
}

func (s *Store) GetCandidate(ctx context.Context, id string) (models.Candidate, error) {
	var c models.Candidate
	err := s.db.GetContext(ctx, &c, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	return c, wrap("get candidate", err)
}

// UpdateCandidate writes name, party, bio and image
func (s *Store) UpdateCandidate(ctx context.Context, c models.Candidate) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE candidates SET name = $1, party = $2, bio = $3, image_url = $4 WHERE id = $5
	`, c.Name, c.Party, c.Bio, c.ImageURL, c.ID)
	if err != nil {
		return wrap("update candidate", err)
	}
	return requireOne("update candidate", res)
}

// DeleteCandidate removes a candidate and the votes cast for it, taking
// them off the election's total
func (s *Store) DeleteCandidate(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrap("delete candidate", err)
	}
	defer tx.Rollback()

	var c models.Candidate
	if err := tx.GetContext(ctx, &c, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id); err != nil {
		return wrap("delete candidate", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE candidate_id = $1`, id)
	if err != nil {
		return wrap("delete candidate votes", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return wrap("delete candidate votes", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE elections SET total_votes = total_votes - $1 WHERE id = $2
	`, removed, c.ElectionID); err != nil {
		return wrap("delete candidate", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM candidates WHERE id = $1`, id); err != nil {
		return wrap("delete candidate", err)
	}
	return wrap("delete candidate", tx.Commit())
}

func insertCandidate(ctx context.Context, ex sqlx.ExecerContext, c models.Candidate) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO candidates (id, election_id, name, party, bio, image_url, vote_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.ElectionID, c.Name, c.Party, c.Bio, c.ImageURL, 0)
	return wrap("insert candidate", err)
}
