// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn.DB); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same DDL runs on PostgreSQL and SQLite, so timestamps are always
supplied by the application rather than by column defaults.

# Tables

  - profiles: accounts, role, language preference, avatar
  - elections: schedule and denormalized total_votes
  - candidates: belong to one election, denormalized vote_count
  - votes: UNIQUE (voter_id, election_id)
  - activity_logs: append-only audit trail
  - support_messages: shared support inbox

# Relationships

	elections 1──* candidates
	elections 1──* votes
	candidates 1──* votes
	profiles  1──* votes

Deletes that must keep counters consistent (elections, candidates,
profiles) are done explicitly in store transactions; the ON DELETE clauses
only back them up.
*/
package db
