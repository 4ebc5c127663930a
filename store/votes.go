// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"

	"github.com/danielhkuo/ballotbox/models"
)

const voteColumns = `id, voter_id, election_id, candidate_id, created_at`

// InsertVote records a vote and bumps the candidate and election counters in
// the same transaction, returning the counters as written. A second vote for
// the same (voter, election) fails with ErrDuplicate from the unique index.
func (s *Store) InsertVote(ctx context.Context, v models.Vote) (models.VoteCounts, error) {
	var counts models.VoteCounts

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return counts, wrap("insert vote", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO votes (id, voter_id, election_id, candidate_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, v.ID, v.VoterID, v.ElectionID, v.CandidateID, v.CreatedAt.UTC())
	if err != nil {
		return counts, wrap("insert vote", err)
	}

	// No row back means the candidate is not part of the election
	err = tx.GetContext(ctx, &counts.CandidateVotes, `
		UPDATE candidates SET vote_count = vote_count + 1 WHERE id = $1 AND election_id = $2
		RETURNING vote_count
	`, v.CandidateID, v.ElectionID)
	if err != nil {
		return counts, wrap("count candidate vote", err)
	}

	err = tx.GetContext(ctx, &counts.ElectionVotes, `
		UPDATE elections SET total_votes = total_votes + 1 WHERE id = $1
		RETURNING total_votes
	`, v.ElectionID)
	if err != nil {
		return counts, wrap("count election vote", err)
	}

	if err := tx.Commit(); err != nil {
		return models.VoteCounts{}, wrap("insert vote", err)
	}
	return counts, nil
}

func (s *Store) VotesByVoter(ctx context.Context, voterID string) ([]models.Vote, error) {
	votes := []models.Vote{}
	err := s.db.SelectContext(ctx, &votes, `
		SELECT `+voteColumns+` FROM votes WHERE voter_id = $1 ORDER BY created_at
	`, voterID)
	return votes, wrap("votes by voter", err)
}

func (s *Store) VotesByElection(ctx context.Context, electionID string) ([]models.Vote, error) {
	votes := []models.Vote{}
	err := s.db.SelectContext(ctx, &votes, `
		SELECT `+voteColumns+` FROM votes WHERE election_id = $1 ORDER BY created_at
	`, electionID)
	return votes, wrap("votes by election", err)
}
