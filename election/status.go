// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"errors"
	"strings"
	"time"

	"github.com/danielhkuo/ballotbox/models"
)

var (
	ErrTitleRequired    = errors.New("title is required")
	ErrMissingSchedule  = errors.New("start_date and end_date are required")
	ErrEndBeforeStart   = errors.New("end_date must be after start_date")
	ErrCandidateNameReq = errors.New("candidate name is required")
)

// Classify returns the status of an election with the given schedule at now.
// Both boundaries count as active.
func Classify(start, end, now time.Time) models.ElectionStatus {
	if now.Before(start) {
		return models.StatusUpcoming
	}
	if now.After(end) {
		return models.StatusCompleted
	}
	return models.StatusActive
}

// Annotate sets Status on each election from its schedule at now
func Annotate(elections []models.Election, now time.Time) {
	for i := range elections {
		elections[i].Status = Classify(elections[i].StartDate, elections[i].EndDate, now)
	}
}

// Filter keeps the elections whose status equals want.
// An empty want keeps everything.
func Filter(elections []models.Election, want models.ElectionStatus) []models.Election {
	if want == "" {
		return elections
	}
	out := make([]models.Election, 0, len(elections))
	for _, e := range elections {
		if e.Status == want {
			out = append(out, e)
		}
	}
	return out
}

// ParseStatus validates a status filter value
func ParseStatus(s string) (models.ElectionStatus, bool) {
	switch st := models.ElectionStatus(strings.ToLower(s)); st {
	case models.StatusUpcoming, models.StatusActive, models.StatusCompleted:
		return st, true
	case "":
		return "", true
	}
	return "", false
}

// ValidateSchedule rejects zero dates and an end that is not strictly
// after the start. Dates are checked at write time so Classify never sees
// an unusable schedule.
func ValidateSchedule(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return ErrMissingSchedule
	}
	if !end.After(start) {
		return ErrEndBeforeStart
	}
	return nil
}

// ValidateNew checks a create request before anything is written
func ValidateNew(req models.CreateElectionRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return ErrTitleRequired
	}
	if err := ValidateSchedule(req.StartDate, req.EndDate); err != nil {
		return err
	}
	for _, c := range req.Candidates {
		if err := ValidateCandidate(c); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCandidate checks a single candidate input
func ValidateCandidate(c models.CandidateInput) error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrCandidateNameReq
	}
	return nil
}

// ApplyUpdate merges an update request into e and validates the result.
// e is left untouched on error.
func ApplyUpdate(e models.Election, req models.UpdateElectionRequest) (models.Election, error) {
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return e, ErrTitleRequired
		}
		e.Title = *req.Title
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.StartDate != nil {
		e.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		e.EndDate = *req.EndDate
	}
	if err := ValidateSchedule(e.StartDate, e.EndDate); err != nil {
		return e, err
	}
	return e, nil
}
