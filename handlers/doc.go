// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the BallotBox API.

# Handler Types

Each handler is a struct holding the store and the services it needs:

  - AccountHandler: register, login, own profile, avatar upload
  - ElectionHandler: election and candidate reads and admin writes
  - VotingHandler: vote casting through ballot.Guard, own votes
  - VoterHandler: admin voter management and CSV export
  - ActivityHandler: activity log listing and CSV export
  - SupportHandler: voter timeline and admin inbox
  - RealtimeHandler: websocket change feed

Handlers are created via constructor functions:

	elections := handlers.NewElectionHandler(st, activity, hub)

Routes behind middleware.Sessions read the caller with
middleware.ProfileFrom(r.Context()).

# Side Effects

Every successful write is followed by an activity log entry
(ActivityRecorder.Record) and a change event on the realtime hub. Neither
can fail the request: activity failures are logged at warn level and
counted, and a full change queue drops the event.

# Error Mapping

	400 validation (missing title, end before start, empty message)
	401 no or invalid session
	403 deactivated account, non-admin on admin routes
	404 unknown election, candidate or voter
	409 duplicate email, already voted, election not open, ending a non-active election
	413 avatar too large
	503 request deadline exceeded

Business-rule rejections such as a repeat vote are logged at info, never
as errors.
*/
package handlers
