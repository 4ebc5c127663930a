// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package support

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danielhkuo/ballotbox/store"
)

// Router picks the administrator a voter's message is addressed to
type Router interface {
	Recipient(ctx context.Context, voterID string) string
}

// FixedRouter sends everything to one administrator
type FixedRouter struct {
	AdminID string
}

func (r FixedRouter) Recipient(context.Context, string) string {
	return r.AdminID
}

// AssignedRouter sends a voter's message to the administrator who last
// replied to that voter, falling back to Fallback for new threads
type AssignedRouter struct {
	Fallback string
	Lookup   func(ctx context.Context, voterID string) (string, error)
}

func (r AssignedRouter) Recipient(ctx context.Context, voterID string) string {
	adminID, err := r.Lookup(ctx, voterID)
	if err == nil && adminID != "" {
		return adminID
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Warn("support routing lookup failed", "voter_id", voterID, "error", err)
	}
	return r.Fallback
}
