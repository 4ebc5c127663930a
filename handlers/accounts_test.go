// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/testutil"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name           string
		body           models.RegisterRequest
		expectedStatus int
	}{
		{"valid", models.RegisterRequest{Email: "Ada@Example.com", Password: "long-enough", FullName: "Ada", RegistrationID: "S-1"}, http.StatusCreated},
		{"duplicate email", models.RegisterRequest{Email: "ada@example.com", Password: "long-enough", FullName: "Ada Again"}, http.StatusConflict},
		{"short password", models.RegisterRequest{Email: "bob@example.com", Password: "short", FullName: "Bob"}, http.StatusBadRequest},
		{"bad email", models.RegisterRequest{Email: "not-an-email", Password: "long-enough", FullName: "Bob"}, http.StatusBadRequest},
		{"missing name", models.RegisterRequest{Email: "bob@example.com", Password: "long-enough"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/auth/register", tt.body, nil)
			w := serve(env.accounts.Register, req, nil)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	p, err := env.st.GetProfileByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("registered profile not found: %v", err)
	}
	if p.Role != models.RoleVoter || !p.Active || p.RegistrationID == nil || *p.RegistrationID != "S-1" {
		t.Errorf("Unexpected profile %+v", p)
	}

	logs, _ := env.st.ListActivity(context.Background(), 0)
	if len(logs) != 1 || logs[0].Action != models.ActionRegister || logs[0].IPHash == nil {
		t.Errorf("Expected one register activity entry with an IP hash, got %+v", logs)
	}
}

func TestRegisterUsesAcceptLanguage(t *testing.T) {
	env := newTestEnv(t)

	req := testutil.MakeRequest("POST", "/auth/register", models.RegisterRequest{
		Email: "eva@example.com", Password: "long-enough", FullName: "Eva",
	}, map[string]string{"Accept-Language": "es, en;q=0.5"})
	w := serve(env.accounts.Register, req, nil)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.SessionResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Profile.Language != "es" {
		t.Errorf("Expected language es, got %q", resp.Profile.Language)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	voter := testutil.CreateTestVoter(t, env.st, "voter@example.com")
	inactive := testutil.CreateTestVoter(t, env.st, "gone@example.com")
	inactive.Active = false
	if err := env.st.UpdateProfile(context.Background(), inactive); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name           string
		email          string
		password       string
		expectedStatus int
	}{
		{"valid", "VOTER@example.com", testutil.TestPassword, http.StatusOK},
		{"wrong password", "voter@example.com", "wrong-password", http.StatusUnauthorized},
		{"unknown email", "nobody@example.com", testutil.TestPassword, http.StatusUnauthorized},
		{"deactivated", "gone@example.com", testutil.TestPassword, http.StatusForbidden},
		{"missing fields", "", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/auth/login", models.LoginRequest{Email: tt.email, Password: tt.password}, nil)
			w := serve(env.accounts.Login, req, nil)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusOK {
				var resp models.SessionResponse
				testutil.AssertJSON(t, w, &resp)
				session, err := auth.ParseToken(resp.Token, env.cfg.JWTSecret)
				if err != nil {
					t.Fatalf("issued token does not parse: %v", err)
				}
				if session.UserID != voter.ID || session.Role != models.RoleVoter {
					t.Errorf("Unexpected session %+v", session)
				}
				if strings.Contains(w.Body.String(), "password") {
					t.Error("Response leaks the password hash")
				}
			}
		})
	}
}

func TestUpdateMe(t *testing.T) {
	env := newTestEnv(t)
	voter := testutil.CreateTestVoter(t, env.st, "voter@example.com")

	name := "  New Name "
	lang := "FR"
	req := testutil.MakeRequest("PATCH", "/me", models.UpdateProfileRequest{FullName: &name, Language: &lang}, nil)
	w := serve(env.accounts.UpdateMe, req, &voter)
	testutil.AssertStatus(t, w, http.StatusOK)

	stored, _ := env.st.GetProfile(context.Background(), voter.ID)
	if stored.FullName != "New Name" || stored.Language != "fr" {
		t.Errorf("Profile not updated: %+v", stored)
	}

	bad := "de"
	req = testutil.MakeRequest("PATCH", "/me", models.UpdateProfileRequest{Language: &bad}, nil)
	w = serve(env.accounts.UpdateMe, req, &stored)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"en", "en", true},
		{"fr", "fr", true},
		{"ES", "es", true},
		{"de", "", false},
		{"not a tag", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseLanguage(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLanguage(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestUploadAvatar(t *testing.T) {
	env := newTestEnv(t)
	voter := testutil.CreateTestVoter(t, env.st, "voter@example.com")

	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 64, 64))); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("POST", "/me/avatar", bytes.NewReader(img.Bytes()))
	req.Header.Set("Content-Type", "image/png")
	w := serve(env.accounts.UploadAvatar, req, &voter)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.AvatarResponse
	testutil.AssertJSON(t, w, &resp)
	if !strings.HasPrefix(resp.AvatarURL, env.cfg.PublicBaseURL+"/storage/avatars/"+voter.ID+"/") {
		t.Errorf("Unexpected avatar URL %q", resp.AvatarURL)
	}

	stored, _ := env.st.GetProfile(context.Background(), voter.ID)
	if stored.AvatarURL == nil || *stored.AvatarURL != resp.AvatarURL {
		t.Errorf("Avatar URL not saved on profile: %+v", stored.AvatarURL)
	}

	req = httptest.NewRequest("POST", "/me/avatar", strings.NewReader("plain text"))
	w = serve(env.accounts.UploadAvatar, req, &voter)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}
