// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/danielhkuo/ballotbox/metrics"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/realtime"
	"github.com/danielhkuo/ballotbox/store"
	"github.com/danielhkuo/ballotbox/support"
)

type SupportHandler struct {
	service  *support.Service
	store    *store.Store
	activity *ActivityRecorder
	hub      *realtime.Hub
}

func NewSupportHandler(service *support.Service, st *store.Store, activity *ActivityRecorder, hub *realtime.Hub) *SupportHandler {
	return &SupportHandler{service: service, store: st, activity: activity, hub: hub}
}

// MyMessages handles GET /support/messages
func (h *SupportHandler) MyMessages(w http.ResponseWriter, r *http.Request) {
	voter, _ := middleware.ProfileFrom(r.Context())

	timeline, err := h.service.Timeline(r.Context(), voter.ID)
	if err != nil {
		middleware.StoreError(w, err, "Failed to load messages")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, timeline)
}

// UnreadCount handles GET /support/messages/unread
func (h *SupportHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	voter, _ := middleware.ProfileFrom(r.Context())

	n, err := h.service.UnreadCount(r.Context(), voter.ID)
	if err != nil {
		middleware.StoreError(w, err, "Failed to load messages")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.UnreadResponse{Unread: n})
}

// SendMessage handles POST /support/messages
func (h *SupportHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	voter, _ := middleware.ProfileFrom(r.Context())

	var req models.SendMessageRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	msg, err := h.service.SendFromVoter(r.Context(), voter, req.Message)
	if !h.sendFailed(w, err) {
		metrics.SupportMessages.WithLabelValues("inbound").Inc()
		h.activity.Record(r.Context(), r, voter.ID, models.ActionSupportMessage, "Sent support message")
		h.hub.Publish(realtime.MessageChange(realtime.Insert, msg))
		middleware.JSONResponse(w, http.StatusCreated, msg)
	}
}

// MarkMessagesAsRead handles POST /support/messages/read
func (h *SupportHandler) MarkMessagesAsRead(w http.ResponseWriter, r *http.Request) {
	voter, _ := middleware.ProfileFrom(r.Context())

	changed, err := h.service.MarkMessagesAsRead(r.Context(), voter.ID)
	if err != nil {
		middleware.StoreError(w, err, "Failed to update messages")
		return
	}
	h.publishRead(changed)
	middleware.JSONResponse(w, http.StatusOK, models.MarkReadResponse{Updated: int64(len(changed))})
}

// ListThreads handles GET /admin/support/threads
func (h *SupportHandler) ListThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := h.service.Threads(r.Context())
	if err != nil {
		middleware.StoreError(w, err, "Failed to load conversations")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, threads)
}

// Reply handles POST /admin/support/threads/{voterID}/messages
func (h *SupportHandler) Reply(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.ProfileFrom(r.Context())
	voterID := r.PathValue("voterID")

	var req models.SendMessageRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	voter, err := h.store.GetProfile(r.Context(), voterID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && voter.Role != models.RoleVoter) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voter not found")
		return
	}
	if err != nil {
		middleware.StoreError(w, err, "Failed to load voter")
		return
	}

	msg, err := h.service.Reply(r.Context(), admin, voter.ID, req.Message)
	if !h.sendFailed(w, err) {
		metrics.SupportMessages.WithLabelValues("outbound").Inc()
		h.activity.Record(r.Context(), r, admin.ID, models.ActionSupportMessage, "Replied to "+voter.Email)
		h.hub.Publish(realtime.MessageChange(realtime.Insert, msg))
		middleware.JSONResponse(w, http.StatusCreated, msg)
	}
}

// MarkThreadAsRead handles POST /admin/support/threads/{voterID}/read
func (h *SupportHandler) MarkThreadAsRead(w http.ResponseWriter, r *http.Request) {
	changed, err := h.service.MarkThreadAsRead(r.Context(), r.PathValue("voterID"))
	if err != nil {
		middleware.StoreError(w, err, "Failed to update messages")
		return
	}
	h.publishRead(changed)
	middleware.JSONResponse(w, http.StatusOK, models.MarkReadResponse{Updated: int64(len(changed))})
}

// publishRead sends a read receipt for every message that changed
func (h *SupportHandler) publishRead(changed []models.SupportMessage) {
	for _, m := range changed {
		h.hub.Publish(realtime.MessageChange(realtime.Update, m))
	}
}

// sendFailed writes the response for a failed send and reports whether err
// was non-nil
func (h *SupportHandler) sendFailed(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, support.ErrEmptyMessage), errors.Is(err, support.ErrMessageTooLong):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, support.ErrNoRecipient):
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Support is not available right now")
	default:
		middleware.StoreError(w, err, "Failed to send message")
	}
	return true
}
