// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/realtime"
)

type RealtimeHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Sessions are bearer tokens, not cookies, so any origin may connect
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Subscribe handles GET /realtime?table=<t>&filter=<col>=eq.<value>
func (h *RealtimeHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	profile, _ := middleware.ProfileFrom(r.Context())

	filter, err := realtime.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := realtime.Authorize(profile, r.URL.Query().Get("table"), filter)
	switch {
	case errors.Is(err, realtime.ErrUnknownTable):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, realtime.ErrTableDenied):
		slog.Info("change feed denied", "user_id", profile.ID, "table", r.URL.Query().Get("table"))
		middleware.ErrorResponse(w, http.StatusForbidden, err.Error())
		return
	case err != nil:
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	slog.Info("change feed opened", "user_id", profile.ID, "table", sub.Table)
	h.hub.Serve(conn, sub)
}
