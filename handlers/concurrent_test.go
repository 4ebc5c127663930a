// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/testutil"
)

// TestConcurrentVotesSameVoter verifies that when one voter submits from
// several tabs at once, exactly one vote is stored
func TestConcurrentVotesSameVoter(t *testing.T) {
	env := newTestEnv(t)
	voter := testutil.CreateTestVoter(t, env.st, "voter@example.com")
	e := testutil.CreateTestElection(t, env.st, models.StatusActive, "Alice", "Bob")

	numAttempts := 8
	var created, conflicts atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			candidate := e.Candidates[idx%2].ID
			w := serve(env.voting.CastVote, castVote(e.ID, candidate), &voter)

			switch w.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				conflicts.Add(1)
			default:
				t.Errorf("Unexpected status %d: %s", w.Code, w.Body.String())
			}
		}(i)
	}

	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("Expected exactly 1 accepted vote, got %d", created.Load())
	}
	if int(conflicts.Load()) != numAttempts-1 {
		t.Errorf("Expected %d conflicts, got %d", numAttempts-1, conflicts.Load())
	}

	votes, _ := env.st.VotesByVoter(context.Background(), voter.ID)
	if len(votes) != 1 {
		t.Errorf("Expected 1 stored vote, got %d", len(votes))
	}
	stored, _ := env.st.GetElection(context.Background(), e.ID)
	if stored.TotalVotes != 1 {
		t.Errorf("Expected total_votes 1, got %d", stored.TotalVotes)
	}
}

// TestConcurrentVotesManyVoters verifies that simultaneous votes from
// different voters are all counted
func TestConcurrentVotesManyVoters(t *testing.T) {
	env := newTestEnv(t)
	e := testutil.CreateTestElection(t, env.st, models.StatusActive, "Alice", "Bob", "Carol")

	numVoters := 10
	voters := make([]models.Profile, numVoters)
	for i := range voters {
		voters[i] = testutil.CreateTestVoter(t, env.st, fmt.Sprintf("voter%d@example.com", i))
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			voter := voters[idx]
			w := serve(env.voting.CastVote, castVote(e.ID, e.Candidates[idx%3].ID), &voter)
			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful votes, got %d", numVoters, successCount.Load())
	}

	stored, err := env.st.GetElection(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("Failed to reload election: %v", err)
	}
	if stored.TotalVotes != numVoters {
		t.Errorf("Expected total_votes %d, got %d", numVoters, stored.TotalVotes)
	}

	sum := 0
	tally := env.guard.Tally()
	for _, c := range stored.Candidates {
		sum += c.VoteCount
		if got := tally.CandidateVotes(c.ID); got != c.VoteCount {
			t.Errorf("Tally for %s is %d, stored %d", c.Name, got, c.VoteCount)
		}
	}
	if sum != numVoters {
		t.Errorf("Candidate counts add up to %d, expected %d", sum, numVoters)
	}
	if got := tally.ElectionVotes(e.ID); got != numVoters {
		t.Errorf("Election tally is %d, expected %d", got, numVoters)
	}

	votes, _ := env.st.VotesByElection(context.Background(), e.ID)
	if len(votes) != numVoters {
		t.Errorf("Expected %d stored votes, got %d", numVoters, len(votes))
	}
}
