// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/testutil"
)

func castVote(electionID, candidateID string) *http.Request {
	req := testutil.MakeRequest("POST", "/elections/"+electionID+"/votes", models.CastVoteRequest{CandidateID: candidateID}, nil)
	return withPath(req, "id", electionID)
}

func TestCastVote(t *testing.T) {
	env := newTestEnv(t)
	voter := testutil.CreateTestVoter(t, env.st, "voter@example.com")
	e := testutil.CreateTestElection(t, env.st, models.StatusActive, "Alice", "Bob")
	alice := e.Candidates[0].ID

	w := serve(env.voting.CastVote, castVote(e.ID, alice), &voter)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.CastVoteResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Vote.VoterID != voter.ID || resp.Vote.CandidateID != alice {
		t.Errorf("Unexpected vote %+v", resp.Vote)
	}
	if resp.CandidateVotes != 1 || resp.ElectionVotes != 1 {
		t.Errorf("Expected tallies 1/1, got %d/%d", resp.CandidateVotes, resp.ElectionVotes)
	}

	stored, _ := env.st.GetElection(context.Background(), e.ID)
	if stored.TotalVotes != 1 {
		t.Errorf("Expected total_votes 1, got %d", stored.TotalVotes)
	}

	// Second attempt, even for another candidate, is rejected
	w = serve(env.voting.CastVote, castVote(e.ID, e.Candidates[1].ID), &voter)
	testutil.AssertStatus(t, w, http.StatusConflict)

	stored, _ = env.st.GetElection(context.Background(), e.ID)
	if stored.TotalVotes != 1 {
		t.Errorf("Rejected vote changed the total: %d", stored.TotalVotes)
	}
}

func TestCastVoteRejections(t *testing.T) {
	env := newTestEnv(t)
	voter := testutil.CreateTestVoter(t, env.st, "voter@example.com")
	active := testutil.CreateTestElection(t, env.st, models.StatusActive, "Alice")
	other := testutil.CreateTestElection(t, env.st, models.StatusActive, "Zed")
	upcoming := testutil.CreateTestElection(t, env.st, models.StatusUpcoming, "Bob")
	completed := testutil.CreateTestElection(t, env.st, models.StatusCompleted, "Carol")

	tests := []struct {
		name           string
		electionID     string
		candidateID    string
		caller         *models.Profile
		expectedStatus int
	}{
		{"upcoming election", upcoming.ID, upcoming.Candidates[0].ID, &voter, http.StatusConflict},
		{"completed election", completed.ID, completed.Candidates[0].ID, &voter, http.StatusConflict},
		{"candidate from another election", active.ID, other.Candidates[0].ID, &voter, http.StatusBadRequest},
		{"unknown election", "missing", "c1", &voter, http.StatusNotFound},
		{"missing candidate", active.ID, "", &voter, http.StatusBadRequest},
		{"no caller", active.ID, active.Candidates[0].ID, nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(env.voting.CastVote, castVote(tt.electionID, tt.candidateID), tt.caller)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	votes, _ := env.st.VotesByVoter(context.Background(), voter.ID)
	if len(votes) != 0 {
		t.Errorf("Expected no stored votes, got %d", len(votes))
	}
}

func TestMyVotes(t *testing.T) {
	env := newTestEnv(t)
	voter := testutil.CreateTestVoter(t, env.st, "voter@example.com")
	e1 := testutil.CreateTestElection(t, env.st, models.StatusActive, "A")
	e2 := testutil.CreateTestElection(t, env.st, models.StatusActive, "B")

	for _, e := range []models.Election{e1, e2} {
		w := serve(env.voting.CastVote, castVote(e.ID, e.Candidates[0].ID), &voter)
		testutil.AssertStatus(t, w, http.StatusCreated)
	}

	w := serve(env.voting.MyVotes, testutil.MakeRequest("GET", "/me/votes", nil, nil), &voter)
	testutil.AssertStatus(t, w, http.StatusOK)

	var votes []models.Vote
	testutil.AssertJSON(t, w, &votes)
	if len(votes) != 2 {
		t.Errorf("Expected 2 votes, got %d", len(votes))
	}
}
