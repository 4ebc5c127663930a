// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/export"
	"github.com/danielhkuo/ballotbox/metrics"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/store"
)

// defaultActivityLimit caps GET /admin/activity when no limit is given
const defaultActivityLimit = 100

// ActivityRecorder appends audit entries. A failed write is logged and
// counted but never fails the request that caused it.
type ActivityRecorder struct {
	store *store.Store
	salt  string
}

func NewActivityRecorder(st *store.Store, salt string) *ActivityRecorder {
	return &ActivityRecorder{store: st, salt: salt}
}

// Record stores one entry for userID ("" for anonymous) with the hashed
// client IP of r
func (a *ActivityRecorder) Record(ctx context.Context, r *http.Request, userID, action, details string) {
	entry := models.ActivityLog{
		ID:        uuid.NewString(),
		Action:    action,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
	if userID != "" {
		entry.UserID = &userID
	}
	if r != nil {
		ipHash := auth.HashIP(middleware.GetClientIP(r), a.salt)
		entry.IPHash = &ipHash
	}

	// Detached from the request deadline so a slow request still gets audited
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := a.store.InsertActivity(ctx, entry); err != nil {
		metrics.ActivityWriteFailures.Inc()
		slog.Warn("failed to record activity", "action", action, "user_id", userID, "error", err)
	}
}

type ActivityHandler struct {
	store *store.Store
}

func NewActivityHandler(st *store.Store) *ActivityHandler {
	return &ActivityHandler{store: st}
}

// ListActivity handles GET /admin/activity?limit=N
func (h *ActivityHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	logs, err := h.store.ListActivity(r.Context(), limit)
	if err != nil {
		middleware.StoreError(w, err, "Failed to load activity")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, logs)
}

// ExportActivity handles GET /admin/activity/export
func (h *ActivityHandler) ExportActivity(w http.ResponseWriter, r *http.Request) {
	logs, err := h.store.ListActivity(r.Context(), 0)
	if err != nil {
		middleware.StoreError(w, err, "Failed to load activity")
		return
	}
	writeCSV(w, export.Filename("activity", time.Now()), func(w http.ResponseWriter) error {
		return export.WriteActivity(w, logs)
	})
}

// writeCSV sets download headers and streams the body
func writeCSV(w http.ResponseWriter, filename string, write func(http.ResponseWriter) error) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if err := write(w); err != nil {
		// Headers are already out; all we can do is log
		slog.Error("failed to write CSV export", "file", filename, "error", err)
	}
}
