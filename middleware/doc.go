// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (duration_ms),
and records the latency in the request duration histogram keyed by the
matched route pattern.

# Sessions

Routes that need a caller are wrapped with a Sessions guard:

	sessions := middleware.NewSessions(cfg.JWTSecret, st)
	mux.HandleFunc("POST /elections/{id}/votes", middleware.WithLogging(sessions.RequireAuth(h.CastVote)))
	mux.HandleFunc("GET /admin/voters", middleware.WithLogging(sessions.RequireAdmin(h.ListVoters)))

The token comes from "Authorization: Bearer <jwt>" or, for websocket
clients, the access_token query parameter. Missing or invalid tokens get
401, deactivated accounts and non-admins on admin routes get 403. Handlers
read the caller with ProfileFrom(r.Context()).

# Rate Limiting and Timeouts

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	mux.HandleFunc("POST /auth/login", middleware.WithLogging(limiter.Limit(h.Login)))

One token bucket per client IP; rejected requests get 429 with Retry-After.
WithTimeout puts a deadline on every request context except websocket
upgrades. StoreError maps an expired deadline to 503.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PUT, PATCH, DELETE, OPTIONS with headers
Content-Type and Authorization.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Used for rate limiting and for the hashed IP in the activity log.
*/
package middleware
