// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ballot guards vote casting and keeps the denormalized vote tally.

# Casting

	g := ballot.NewGuard(st)
	vote, err := g.CastVote(ctx, voterID, electionID, candidateID)

CastVote fails with:

  - ErrAuthRequired: empty voter id
  - ErrAlreadyVoted: the pair is in the known-vote set, or the store's
    unique index on (voter_id, election_id) rejected the insert
  - ErrElectionNotFound, ErrElectionNotActive, ErrUnknownCandidate
  - ErrVoteFailed: wraps any other store error; nothing is retried

The known-vote set is loaded from the store the first time a voter is seen
and is only a fast path. The unique index decides.

# Tally

Tally holds per-candidate and per-election counts. CastVote applies the
counters the store wrote in the vote's own transaction, so concurrent votes
never leave it behind the table. Observe patches it with votes arriving on
the change feed without re-reading the table. Counts never move backwards
on their own; Forget and Reset clear them when stored counts go down.
*/
package ballot
