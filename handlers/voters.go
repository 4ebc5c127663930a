// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/ballotbox/export"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/realtime"
	"github.com/danielhkuo/ballotbox/store"
)

type VoterHandler struct {
	store    *store.Store
	activity *ActivityRecorder
	hub      *realtime.Hub
}

func NewVoterHandler(st *store.Store, activity *ActivityRecorder, hub *realtime.Hub) *VoterHandler {
	return &VoterHandler{store: st, activity: activity, hub: hub}
}

// ListVoters handles GET /admin/voters?search=
func (h *VoterHandler) ListVoters(w http.ResponseWriter, r *http.Request) {
	voters, err := h.store.ListProfiles(r.Context(), models.RoleVoter, strings.TrimSpace(r.URL.Query().Get("search")))
	if err != nil {
		middleware.StoreError(w, err, "Failed to load voters")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, voters)
}

// CreateVoter handles POST /admin/voters
func (h *VoterHandler) CreateVoter(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.ProfileFrom(r.Context())

	var req models.CreateVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	voter, status, msg := newProfile(req.Email, req.Password, req.FullName, req.RegistrationID, models.RoleVoter, nil)
	if status != 0 {
		middleware.ErrorResponse(w, status, msg)
		return
	}

	if err := h.store.CreateProfile(r.Context(), voter); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			middleware.ErrorResponse(w, http.StatusConflict, "An account with this email already exists")
			return
		}
		middleware.StoreError(w, err, "Failed to create voter")
		return
	}

	slog.Info("voter created", "user_id", voter.ID, "by", admin.ID)
	h.activity.Record(r.Context(), r, admin.ID, models.ActionVoterCreated, "Created voter "+voter.Email)
	h.hub.Publish(realtime.ProfileChange(realtime.Insert, voter))
	middleware.JSONResponse(w, http.StatusCreated, voter)
}

// UpdateVoter handles PATCH /admin/voters/{id}
func (h *VoterHandler) UpdateVoter(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.ProfileFrom(r.Context())

	var req models.UpdateVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	voter, ok := h.loadVoter(w, r)
	if !ok {
		return
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "full_name cannot be empty")
			return
		}
		voter.FullName = name
	}
	if req.RegistrationID != nil {
		if regID := strings.TrimSpace(*req.RegistrationID); regID != "" {
			voter.RegistrationID = &regID
		} else {
			voter.RegistrationID = nil
		}
	}
	if req.Active != nil {
		voter.Active = *req.Active
	}

	if err := h.store.UpdateProfile(r.Context(), voter); err != nil {
		middleware.StoreError(w, err, "Failed to update voter")
		return
	}

	h.activity.Record(r.Context(), r, admin.ID, models.ActionVoterUpdated, "Updated voter "+voter.Email)
	h.hub.Publish(realtime.ProfileChange(realtime.Update, voter))
	middleware.JSONResponse(w, http.StatusOK, voter)
}

// DeleteVoter handles DELETE /admin/voters/{id}
func (h *VoterHandler) DeleteVoter(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.ProfileFrom(r.Context())

	voter, ok := h.loadVoter(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteProfile(r.Context(), voter.ID); err != nil {
		middleware.StoreError(w, err, "Failed to delete voter")
		return
	}

	slog.Info("voter deleted", "user_id", voter.ID, "by", admin.ID)
	h.activity.Record(r.Context(), r, admin.ID, models.ActionVoterDeleted, "Deleted voter "+voter.Email)
	h.hub.Publish(realtime.ProfileChange(realtime.Delete, voter))
	w.WriteHeader(http.StatusNoContent)
}

// ExportVoters handles GET /admin/voters/export
func (h *VoterHandler) ExportVoters(w http.ResponseWriter, r *http.Request) {
	voters, err := h.store.ListProfiles(r.Context(), models.RoleVoter, "")
	if err != nil {
		middleware.StoreError(w, err, "Failed to load voters")
		return
	}
	writeCSV(w, export.Filename("voters", time.Now()), func(w http.ResponseWriter) error {
		return export.WriteVoters(w, voters)
	})
}

// loadVoter fetches the voter named by {id}. Admin accounts are not managed
// here and read as not found.
func (h *VoterHandler) loadVoter(w http.ResponseWriter, r *http.Request) (models.Profile, bool) {
	p, err := h.store.GetProfile(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) || (err == nil && p.Role != models.RoleVoter) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voter not found")
		return models.Profile{}, false
	}
	if err != nil {
		middleware.StoreError(w, err, "Failed to load voter")
		return models.Profile{}, false
	}
	return p, true
}
