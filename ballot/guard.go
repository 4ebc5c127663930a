// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/store"
)

var (
	ErrAuthRequired      = errors.New("authentication required")
	ErrAlreadyVoted      = errors.New("already voted in this election")
	ErrElectionNotFound  = errors.New("election not found")
	ErrElectionNotActive = errors.New("election is not active")
	ErrUnknownCandidate  = errors.New("candidate does not belong to this election")
	ErrVoteFailed        = errors.New("vote failed")
)

// Store is the persistence the guard writes through. InsertVote must return
// an error matching store.ErrDuplicate when (voter_id, election_id) exists.
type Store interface {
	GetElection(ctx context.Context, id string) (models.Election, error)
	InsertVote(ctx context.Context, v models.Vote) (models.VoteCounts, error)
	VotesByVoter(ctx context.Context, voterID string) ([]models.Vote, error)
}

type voteKey struct {
	voterID    string
	electionID string
}

// Guard accepts at most one vote per (voter, election).
//
// The known-vote set is a fast path that rejects repeats without a write.
// The store's unique index is authoritative: two requests that both pass the
// fast path still produce exactly one vote.
type Guard struct {
	store Store
	now   func() time.Time
	tally *Tally

	mu     sync.Mutex
	known  map[voteKey]string
	synced map[string]bool
}

func NewGuard(s Store) *Guard {
	return &Guard{
		store:  s,
		now:    time.Now,
		tally:  NewTally(),
		known:  make(map[voteKey]string),
		synced: make(map[string]bool),
	}
}

// WithClock replaces the wall clock, for tests
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

func (g *Guard) Tally() *Tally {
	return g.tally
}

// HasVoted reports whether the guard knows of a vote for the pair
func (g *Guard) HasVoted(voterID, electionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.known[voteKey{voterID, electionID}]
	return ok
}

// Observe merges a vote written elsewhere (another instance, another
// request) into the known set and the tally. Votes already known are
// ignored, so a vote observed twice is counted once.
func (g *Guard) Observe(v models.Vote) {
	if !g.remember(v) {
		return
	}
	g.tally.Record(v)
}

// CastVote records a vote for candidateID in electionID on behalf of voterID
func (g *Guard) CastVote(ctx context.Context, voterID, electionID, candidateID string) (models.Vote, error) {
	if voterID == "" {
		return models.Vote{}, ErrAuthRequired
	}

	if err := g.sync(ctx, voterID); err != nil {
		return models.Vote{}, fmt.Errorf("%w: %w", ErrVoteFailed, err)
	}
	if g.HasVoted(voterID, electionID) {
		return models.Vote{}, ErrAlreadyVoted
	}

	e, err := g.store.GetElection(ctx, electionID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Vote{}, ErrElectionNotFound
	}
	if err != nil {
		return models.Vote{}, fmt.Errorf("%w: %w", ErrVoteFailed, err)
	}

	now := g.now().UTC()
	if election.Classify(e.StartDate, e.EndDate, now) != models.StatusActive {
		return models.Vote{}, ErrElectionNotActive
	}
	if !hasCandidate(e, candidateID) {
		return models.Vote{}, ErrUnknownCandidate
	}

	v := models.Vote{
		ID:          uuid.NewString(),
		VoterID:     voterID,
		ElectionID:  electionID,
		CandidateID: candidateID,
		CreatedAt:   now,
	}

	counts, err := g.store.InsertVote(ctx, v)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Lost a race with another request; learn the real vote next sync.
			g.mu.Lock()
			delete(g.synced, voterID)
			g.mu.Unlock()
			return models.Vote{}, ErrAlreadyVoted
		}
		return models.Vote{}, fmt.Errorf("%w: %w", ErrVoteFailed, err)
	}

	g.remember(v)
	g.tally.Set(v, counts)

	slog.Info("vote cast", "election_id", electionID, "candidate_id", candidateID)
	return v, nil
}

// sync loads a voter's stored votes the first time the voter is seen
func (g *Guard) sync(ctx context.Context, voterID string) error {
	g.mu.Lock()
	done := g.synced[voterID]
	g.mu.Unlock()
	if done {
		return nil
	}

	votes, err := g.store.VotesByVoter(ctx, voterID)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, v := range votes {
		g.known[voteKey{v.VoterID, v.ElectionID}] = v.ID
	}
	g.synced[voterID] = true
	return nil
}

// remember adds v to the known set, reporting false if the pair was known
func (g *Guard) remember(v models.Vote) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	k := voteKey{v.VoterID, v.ElectionID}
	if _, ok := g.known[k]; ok {
		return false
	}
	g.known[k] = v.ID
	return true
}

func hasCandidate(e models.Election, candidateID string) bool {
	for _, c := range e.Candidates {
		if c.ID == candidateID {
			return true
		}
	}
	return false
}
