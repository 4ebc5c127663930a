// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/store"
)

type profileKey struct{}

// ProfileLoader fetches the account behind a session
type ProfileLoader interface {
	GetProfile(ctx context.Context, id string) (models.Profile, error)
}

// Sessions guards routes with bearer session tokens
type Sessions struct {
	secret   string
	profiles ProfileLoader
}

func NewSessions(secret string, profiles ProfileLoader) *Sessions {
	return &Sessions{secret: secret, profiles: profiles}
}

// RequireAuth rejects requests without a valid session for an active account
// and puts the caller's profile on the request context
func (s *Sessions) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		session, err := auth.ParseToken(token, s.secret)
		if err != nil {
			ErrorResponse(w, http.StatusUnauthorized, "Invalid or expired session")
			return
		}

		profile, err := s.profiles.GetProfile(r.Context(), session.UserID)
		if errors.Is(err, store.ErrNotFound) {
			ErrorResponse(w, http.StatusUnauthorized, "Account no longer exists")
			return
		}
		if err != nil {
			StoreError(w, err, "Failed to load session")
			return
		}
		if !profile.Active {
			ErrorResponse(w, http.StatusForbidden, "Account is deactivated")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), profileKey{}, profile)))
	}
}

// RequireAdmin is RequireAuth plus the admin role
func (s *Sessions) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return s.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		profile, _ := ProfileFrom(r.Context())
		if profile.Role != models.RoleAdmin {
			slog.Info("admin route denied", "user_id", profile.ID, "path", r.URL.Path)
			ErrorResponse(w, http.StatusForbidden, "Administrator access required")
			return
		}
		next(w, r)
	})
}

// ProfileFrom returns the authenticated caller
func ProfileFrom(ctx context.Context) (models.Profile, bool) {
	p, ok := ctx.Value(profileKey{}).(models.Profile)
	return p, ok
}

// WithProfile attaches a profile to ctx, for tests and internal calls
func WithProfile(ctx context.Context, p models.Profile) context.Context {
	return context.WithValue(ctx, profileKey{}, p)
}

// bearerToken reads the Authorization header, or access_token for
// websocket clients that cannot set headers
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return r.URL.Query().Get("access_token")
}
