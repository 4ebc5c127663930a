// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/store"
	"github.com/danielhkuo/ballotbox/testutil"
)

func TestListVotersSearch(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateTestVoter(t, env.st, "ada@example.com")
	testutil.CreateTestVoter(t, env.st, "grace@example.com")

	tests := []struct {
		search   string
		expected int
	}{
		{"", 2},
		{"GRACE", 1},
		{"example.com", 2},
		{"nobody", 0},
	}

	for _, tt := range tests {
		t.Run("search="+tt.search, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/admin/voters?search="+tt.search, nil, nil)
			w := serve(env.voters.ListVoters, req, &env.admin)
			testutil.AssertStatus(t, w, http.StatusOK)

			var voters []models.Profile
			testutil.AssertJSON(t, w, &voters)
			if len(voters) != tt.expected {
				t.Errorf("Expected %d voters, got %d", tt.expected, len(voters))
			}
			for _, v := range voters {
				if v.Role != models.RoleVoter {
					t.Errorf("Admin account listed as voter: %s", v.Email)
				}
			}
		})
	}
}

func TestCreateAndUpdateVoter(t *testing.T) {
	env := newTestEnv(t)

	req := testutil.MakeRequest("POST", "/admin/voters", models.CreateVoterRequest{
		Email: "new@example.com", Password: "long-enough", FullName: "New Voter", RegistrationID: "R-9",
	}, nil)
	w := serve(env.voters.CreateVoter, req, &env.admin)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var voter models.Profile
	testutil.AssertJSON(t, w, &voter)

	req = testutil.MakeRequest("POST", "/admin/voters", models.CreateVoterRequest{
		Email: "new@example.com", Password: "long-enough", FullName: "Dup",
	}, nil)
	w = serve(env.voters.CreateVoter, req, &env.admin)
	testutil.AssertStatus(t, w, http.StatusConflict)

	inactive := false
	empty := ""
	req = withPath(testutil.MakeRequest("PATCH", "/admin/voters/"+voter.ID, models.UpdateVoterRequest{
		Active: &inactive, RegistrationID: &empty,
	}, nil), "id", voter.ID)
	w = serve(env.voters.UpdateVoter, req, &env.admin)
	testutil.AssertStatus(t, w, http.StatusOK)

	stored, _ := env.st.GetProfile(context.Background(), voter.ID)
	if stored.Active || stored.RegistrationID != nil || stored.FullName != "New Voter" {
		t.Errorf("Unexpected stored voter %+v", stored)
	}

	// Admin accounts are not managed through the voter routes
	req = withPath(testutil.MakeRequest("PATCH", "/admin/voters/"+env.admin.ID, models.UpdateVoterRequest{Active: &inactive}, nil), "id", env.admin.ID)
	w = serve(env.voters.UpdateVoter, req, &env.admin)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestDeleteVoterKeepsTalliesConsistent(t *testing.T) {
	env := newTestEnv(t)
	voter := testutil.CreateTestVoter(t, env.st, "voter@example.com")
	other := testutil.CreateTestVoter(t, env.st, "other@example.com")
	e := testutil.CreateTestElection(t, env.st, models.StatusActive, "Alice")

	for _, v := range []models.Profile{voter, other} {
		if _, err := env.guard.CastVote(context.Background(), v.ID, e.ID, e.Candidates[0].ID); err != nil {
			t.Fatal(err)
		}
	}

	req := withPath(testutil.MakeRequest("DELETE", "/admin/voters/"+voter.ID, nil, nil), "id", voter.ID)
	w := serve(env.voters.DeleteVoter, req, &env.admin)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	if _, err := env.st.GetProfile(context.Background(), voter.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected voter to be deleted, got %v", err)
	}

	stored, _ := env.st.GetElection(context.Background(), e.ID)
	if stored.TotalVotes != 1 || stored.Candidates[0].VoteCount != 1 {
		t.Errorf("Expected counts 1/1 after delete, got %d/%d", stored.TotalVotes, stored.Candidates[0].VoteCount)
	}
}

func TestExportVoters(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateTestVoter(t, env.st, "ada@example.com")

	w := serve(env.voters.ExportVoters, testutil.MakeRequest("GET", "/admin/voters/export", nil, nil), &env.admin)
	testutil.AssertStatus(t, w, http.StatusOK)

	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Expected text/csv, got %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "voters-") {
		t.Errorf("Unexpected Content-Disposition %q", cd)
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected header and one row, got %d lines", len(lines))
	}
	if lines[0] != "id,full_name,email,registration_id,active,created_at" {
		t.Errorf("Unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "ada@example.com") {
		t.Errorf("Unexpected row %q", lines[1])
	}
}
