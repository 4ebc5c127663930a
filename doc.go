// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the BallotBox API server.

BallotBox is an e-voting portal backend: voters sign in, see elections
whose status (upcoming, active, completed) is derived from their schedule,
cast at most one vote per election, and talk to administrators through a
support inbox. Administrators manage elections, candidates and voter
accounts, read the activity log and export it as CSV.

# Starting the Server

With SQLite for local development:

	JWT_SECRET=dev-secret DATABASE_TYPE=sqlite DATABASE_URL=file:ballotbox.db go run .

With PostgreSQL:

	go run . -t postgres -d "postgres://..." -jwt-secret "..."

# Configuration

Settings come from CLI flags, then the environment, then a .env file:

  - JWT_SECRET (-jwt-secret): session signing secret, required
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): connection string
  - PORT (-p): server port (default: 3318)
  - SUPPORT_ADMIN_ID (-support-admin): fallback support recipient
  - SUPPORT_ROUTING (-support-routing): fixed or assigned
  - STORAGE_DIR, PUBLIC_BASE_URL: avatar storage
  - REQUEST_TIMEOUT, RATE_LIMIT_RPS, RATE_LIMIT_BURST, MAX_AVATAR_BYTES
  - LOG_LEVEL, ENVIRONMENT

# Architecture

  - election: status classification and schedule validation
  - ballot: the vote guard and running tallies
  - support: conversation threads, voter timeline, routing
  - store: sqlx queries for every table
  - handlers: HTTP request handlers
  - router: route definitions using Go 1.22+ routing
  - middleware: sessions, rate limits, CORS, logging, JSON helpers
  - realtime: websocket change feed
  - objectstore: avatar storage
  - export: CSV exports
  - metrics: Prometheus collectors
  - models, auth, db, cliparse: types, credentials, schema, configuration

See package documentation for each component.
*/
package main
