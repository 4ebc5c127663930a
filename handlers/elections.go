// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/realtime"
	"github.com/danielhkuo/ballotbox/store"
)

type ElectionHandler struct {
	store    *store.Store
	activity *ActivityRecorder
	hub      *realtime.Hub
	now      func() time.Time
}

func NewElectionHandler(st *store.Store, activity *ActivityRecorder, hub *realtime.Hub) *ElectionHandler {
	return &ElectionHandler{store: st, activity: activity, hub: hub, now: time.Now}
}

// ListElections handles GET /elections?status=upcoming|active|completed
func (h *ElectionHandler) ListElections(w http.ResponseWriter, r *http.Request) {
	want, ok := election.ParseStatus(r.URL.Query().Get("status"))
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "status must be upcoming, active or completed")
		return
	}

	elections, err := h.store.ListElections(r.Context())
	if err != nil {
		middleware.StoreError(w, err, "Failed to load elections")
		return
	}

	election.Annotate(elections, h.now())
	middleware.JSONResponse(w, http.StatusOK, election.Filter(elections, want))
}

// GetElection handles GET /elections/{id}
func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	e, ok := h.load(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, e)
}

// CreateElection handles POST /admin/elections
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.ProfileFrom(r.Context())

	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := election.ValidateNew(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	e := models.Election{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartDate:   req.StartDate.UTC(),
		EndDate:     req.EndDate.UTC(),
		CreatedBy:   &admin.ID,
		CreatedAt:   time.Now().UTC(),
		Candidates:  make([]models.Candidate, 0, len(req.Candidates)),
	}
	for _, in := range req.Candidates {
		e.Candidates = append(e.Candidates, newCandidate(e.ID, in))
	}

	if err := h.store.CreateElection(r.Context(), e); err != nil {
		middleware.StoreError(w, err, "Failed to create election")
		return
	}

	e.Status = election.Classify(e.StartDate, e.EndDate, h.now())
	slog.Info("election created", "election_id", e.ID, "candidates", len(e.Candidates))
	h.activity.Record(r.Context(), r, admin.ID, models.ActionElectionCreated, "Created election "+e.Title)
	h.hub.Publish(realtime.ElectionChange(realtime.Insert, e))
	for _, c := range e.Candidates {
		h.hub.Publish(realtime.CandidateChange(realtime.Insert, c))
	}

	middleware.JSONResponse(w, http.StatusCreated, e)
}

// UpdateElection handles PATCH /admin/elections/{id}
func (h *ElectionHandler) UpdateElection(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.ProfileFrom(r.Context())

	var req models.UpdateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	current, ok := h.load(w, r)
	if !ok {
		return
	}

	updated, err := election.ApplyUpdate(current, req)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	updated.Title = strings.TrimSpace(updated.Title)

	if err := h.store.UpdateElection(r.Context(), updated); err != nil {
		h.writeStoreError(w, err, "Failed to update election")
		return
	}

	updated.Status = election.Classify(updated.StartDate, updated.EndDate, h.now())
	h.activity.Record(r.Context(), r, admin.ID, models.ActionElectionUpdated, "Updated election "+updated.Title)
	h.hub.Publish(realtime.ElectionChange(realtime.Update, updated))
	middleware.JSONResponse(w, http.StatusOK, updated)
}

// EndElection handles POST /admin/elections/{id}/end. Only an active
// election can be ended; its end moves to now and it becomes completed.
func (h *ElectionHandler) EndElection(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.ProfileFrom(r.Context())

	e, ok := h.load(w, r)
	if !ok {
		return
	}
	if e.Status != models.StatusActive {
		middleware.ErrorResponse(w, http.StatusConflict, "Only an active election can be ended")
		return
	}

	now := h.now().UTC()
	if err := h.store.EndElection(r.Context(), e.ID, now); err != nil {
		h.writeStoreError(w, err, "Failed to end election")
		return
	}

	e.EndDate = now
	e.Status = election.Classify(e.StartDate, e.EndDate, now.Add(time.Nanosecond))
	slog.Info("election ended", "election_id", e.ID)
	h.activity.Record(r.Context(), r, admin.ID, models.ActionElectionEnded, "Ended election "+e.Title)
	h.hub.Publish(realtime.ElectionChange(realtime.Update, e))
	middleware.JSONResponse(w, http.StatusOK, e)
}

// DeleteElection handles DELETE /admin/elections/{id}
func (h *ElectionHandler) DeleteElection(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.ProfileFrom(r.Context())
	id := r.PathValue("id")

	if err := h.store.DeleteElection(r.Context(), id); err != nil {
		h.writeStoreError(w, err, "Failed to delete election")
		return
	}

	slog.Info("election deleted", "election_id", id)
	h.activity.Record(r.Context(), r, admin.ID, models.ActionElectionDeleted, "Deleted election "+id)
	h.hub.Publish(realtime.ElectionChange(realtime.Delete, models.Election{ID: id}))
	w.WriteHeader(http.StatusNoContent)
}

// AddCandidate handles POST /admin/elections/{id}/candidates
func (h *ElectionHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.ProfileFrom(r.Context())

	var req models.CandidateInput
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := election.ValidateCandidate(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	c := newCandidate(r.PathValue("id"), req)
	if err := h.store.AddCandidate(r.Context(), c); err != nil {
		h.writeStoreError(w, err, "Failed to add candidate")
		return
	}

	h.activity.Record(r.Context(), r, admin.ID, models.ActionCandidateAdded, "Added candidate "+c.Name)
	h.hub.Publish(realtime.CandidateChange(realtime.Insert, c))
	middleware.JSONResponse(w, http.StatusCreated, c)
}

// UpdateCandidate handles PATCH /admin/candidates/{id}. Omitted fields keep
// their value.
func (h *ElectionHandler) UpdateCandidate(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.ProfileFrom(r.Context())

	var req struct {
		Name     *string `json:"name"`
		Party    *string `json:"party"`
		Bio      *string `json:"bio"`
		ImageURL *string `json:"image_url"`
	}
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	c, err := h.store.GetCandidate(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeStoreError(w, err, "Failed to load candidate")
		return
	}

	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Party != nil {
		c.Party = req.Party
	}
	if req.Bio != nil {
		c.Bio = req.Bio
	}
	if req.ImageURL != nil {
		c.ImageURL = req.ImageURL
	}
	if err := election.ValidateCandidate(models.CandidateInput{Name: c.Name}); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.UpdateCandidate(r.Context(), c); err != nil {
		h.writeStoreError(w, err, "Failed to update candidate")
		return
	}

	h.activity.Record(r.Context(), r, admin.ID, models.ActionCandidateUpdated, "Updated candidate "+c.Name)
	h.hub.Publish(realtime.CandidateChange(realtime.Update, c))
	middleware.JSONResponse(w, http.StatusOK, c)
}

// DeleteCandidate handles DELETE /admin/candidates/{id}
func (h *ElectionHandler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.ProfileFrom(r.Context())

	c, err := h.store.GetCandidate(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeStoreError(w, err, "Failed to load candidate")
		return
	}
	if err := h.store.DeleteCandidate(r.Context(), c.ID); err != nil {
		h.writeStoreError(w, err, "Failed to delete candidate")
		return
	}

	h.activity.Record(r.Context(), r, admin.ID, models.ActionCandidateDeleted, "Deleted candidate "+c.Name)
	h.hub.Publish(realtime.CandidateChange(realtime.Delete, c))
	w.WriteHeader(http.StatusNoContent)
}

// load fetches the election named by the {id} path value with a fresh
// status, writing the error response itself when it fails
func (h *ElectionHandler) load(w http.ResponseWriter, r *http.Request) (models.Election, bool) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return models.Election{}, false
	}

	e, err := h.store.GetElection(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err, "Failed to load election")
		return models.Election{}, false
	}
	e.Status = election.Classify(e.StartDate, e.EndDate, h.now())
	return e, true
}

func (h *ElectionHandler) writeStoreError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Not found")
		return
	}
	middleware.StoreError(w, err, msg)
}

func newCandidate(electionID string, in models.CandidateInput) models.Candidate {
	return models.Candidate{
		ID:         uuid.NewString(),
		ElectionID: electionID,
		Name:       strings.TrimSpace(in.Name),
		Party:      in.Party,
		Bio:        in.Bio,
		ImageURL:   in.ImageURL,
	}
}
