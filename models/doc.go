// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Profile: account with role, language preference and avatar
  - Election: schedule, candidates and denormalized total_votes
  - Candidate: belongs to one election, carries vote_count
  - Vote: one per (voter_id, election_id)
  - ActivityLog: append-only audit entry
  - SupportMessage: one row of the shared support inbox
  - SupportThread: derived per-voter conversation (not persisted)
  - TimelineMessage: a support message annotated for the voter's view

# Request Types

  - RegisterRequest, LoginRequest, UpdateProfileRequest
  - CreateElectionRequest, UpdateElectionRequest, CandidateInput
  - CastVoteRequest
  - CreateVoterRequest, UpdateVoterRequest
  - SendMessageRequest

# Response Types

  - SessionResponse: token, expires_at, profile
  - CastVoteResponse: vote plus updated tallies
  - AvatarResponse, MarkReadResponse, UnreadResponse
  - ErrorResponse: error, message

# Constants

Election status values (derived, see package election):

	StatusUpcoming  = "upcoming"
	StatusActive    = "active"
	StatusCompleted = "completed"

Roles:

	RoleVoter = "voter"
	RoleAdmin = "admin"

Delivery states in the voter's support timeline:

	DeliverySent     = "sent"
	DeliveryRead     = "read"
	DeliveryReceived = "received"
*/
package models
