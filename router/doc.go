// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the BallotBox API.

# Route Registration

NewServices builds the shared components (vote guard, support service,
change feed hub, avatar storage) and NewRouter wires every endpoint:

	svc := router.NewServices(st, cfg)
	go svc.Hub.Run(ctx)
	mux := router.NewRouter(st, cfg, svc)

# Endpoints

Public:

	GET  /health        - Database ping
	GET  /metrics       - Prometheus metrics
	GET  /storage/...   - Uploaded files (avatars)
	POST /auth/register - Create a voter account (rate limited)
	POST /auth/login    - Start a session (rate limited)

Signed in (Authorization: Bearer <token>):

	GET   /me                    - Own profile
	PATCH /me                    - Update name or language
	POST  /me/avatar             - Upload profile image
	GET   /me/votes              - Own votes
	GET   /elections             - Elections with status (?status=)
	GET   /elections/{id}        - One election
	POST  /elections/{id}/votes  - Cast a vote (rate limited)
	GET   /support/messages      - Own support conversation
	GET   /support/messages/unread - Count unread replies
	POST  /support/messages      - Message support
	POST  /support/messages/read - Mark replies read
	GET   /realtime              - Change feed websocket (?table=&filter=)

Administrators:

	POST   /admin/elections                        - Create election
	PATCH  /admin/elections/{id}                   - Edit election
	POST   /admin/elections/{id}/end               - End now
	DELETE /admin/elections/{id}                   - Delete with votes
	POST   /admin/elections/{id}/candidates        - Add candidate
	PATCH  /admin/candidates/{id}                  - Edit candidate
	DELETE /admin/candidates/{id}                  - Remove candidate
	GET    /admin/voters                           - List voters (?search=)
	POST   /admin/voters                           - Create voter
	GET    /admin/voters/export                    - Voters as CSV
	PATCH  /admin/voters/{id}                      - Edit voter
	DELETE /admin/voters/{id}                      - Delete voter
	GET    /admin/activity                         - Activity log (?limit=)
	GET    /admin/activity/export                  - Activity log as CSV
	GET    /admin/support/threads                  - Support inbox
	POST   /admin/support/threads/{voterID}/messages - Reply
	POST   /admin/support/threads/{voterID}/read   - Mark thread read

The returned mux is wrapped by the caller with middleware.CORS and
middleware.WithTimeout.
*/
package router
