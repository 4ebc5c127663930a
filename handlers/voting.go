// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/ballotbox/ballot"
	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/metrics"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/realtime"
	"github.com/danielhkuo/ballotbox/store"
)

type VotingHandler struct {
	guard    *ballot.Guard
	store    *store.Store
	activity *ActivityRecorder
	hub      *realtime.Hub
}

func NewVotingHandler(guard *ballot.Guard, st *store.Store, activity *ActivityRecorder, hub *realtime.Hub) *VotingHandler {
	return &VotingHandler{guard: guard, store: st, activity: activity, hub: hub}
}

// CastVote handles POST /elections/{id}/votes
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	voter, _ := middleware.ProfileFrom(r.Context())
	electionID := r.PathValue("id")

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.CandidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate_id is required")
		return
	}

	vote, err := h.guard.CastVote(r.Context(), voter.ID, electionID, req.CandidateID)
	switch {
	case err == nil:
	case errors.Is(err, ballot.ErrAuthRequired):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Please log in to vote")
		return
	case errors.Is(err, ballot.ErrAlreadyVoted):
		metrics.RecordVote(metrics.VoteAlreadyVoted)
		slog.Info("repeat vote rejected", "user_id", voter.ID, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusConflict, "You have already voted in this election")
		return
	case errors.Is(err, ballot.ErrElectionNotFound):
		metrics.RecordVote(metrics.VoteRejected)
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	case errors.Is(err, ballot.ErrElectionNotActive):
		metrics.RecordVote(metrics.VoteRejected)
		middleware.ErrorResponse(w, http.StatusConflict, "This election is not open for voting")
		return
	case errors.Is(err, ballot.ErrUnknownCandidate):
		metrics.RecordVote(metrics.VoteRejected)
		middleware.ErrorResponse(w, http.StatusBadRequest, "Candidate is not part of this election")
		return
	default:
		metrics.RecordVote(metrics.VoteFailed)
		middleware.StoreError(w, err, "Failed to record vote")
		return
	}

	metrics.RecordVote(metrics.VoteAccepted)
	h.activity.Record(r.Context(), r, voter.ID, models.ActionVoteCast, "Voted in election "+electionID)
	h.hub.Publish(realtime.VoteChange(vote))
	h.publishCounts(r.Context(), vote)

	tally := h.guard.Tally()
	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		Vote:           vote,
		CandidateVotes: tally.CandidateVotes(vote.CandidateID),
		ElectionVotes:  tally.ElectionVotes(vote.ElectionID),
	})
}

// publishCounts announces the counters a vote moved to subscribers of
// elections and candidates
func (h *VotingHandler) publishCounts(ctx context.Context, v models.Vote) {
	e, err := h.store.GetElection(ctx, v.ElectionID)
	if err != nil {
		slog.Warn("failed to load counts after vote", "election_id", v.ElectionID, "error", err)
		return
	}
	e.Status = election.Classify(e.StartDate, e.EndDate, time.Now().UTC())

	h.hub.Publish(realtime.ElectionChange(realtime.Update, e))
	for _, c := range e.Candidates {
		if c.ID == v.CandidateID {
			h.hub.Publish(realtime.CandidateChange(realtime.Update, c))
		}
	}
}

// MyVotes handles GET /me/votes
func (h *VotingHandler) MyVotes(w http.ResponseWriter, r *http.Request) {
	voter, _ := middleware.ProfileFrom(r.Context())

	votes, err := h.store.VotesByVoter(r.Context(), voter.ID)
	if err != nil {
		middleware.StoreError(w, err, "Failed to load votes")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, votes)
}
