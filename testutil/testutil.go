// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/store"
)

// TestPassword is the password of every fixture account
const TestPassword = "correct-horse"

// SetupTestDB opens a fresh SQLite database in a temp dir with the full schema
func SetupTestDB(t *testing.T) *store.Store {
	t.Helper()

	url := "file:" + filepath.Join(t.TempDir(), "ballotbox.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	conn, err := store.Open(context.Background(), "sqlite", url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn.DB); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return store.New(conn)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseType:   "sqlite",
		JWTSecret:      "test-jwt-secret",
		SessionTTL:     time.Hour,
		SupportRouting: "fixed",
		PublicBaseURL:  "http://localhost:3318",
		RequestTimeout: 5 * time.Second,
		RateLimitRPS:   100,
		RateLimitBurst: 100,
		MaxAvatarBytes: 1 << 20,
		LogLevel:       "info",
		Environment:    "test",
	}
}

// CreateTestProfile inserts an active account with TestPassword
func CreateTestProfile(t *testing.T, st *store.Store, role, email string) models.Profile {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	p := models.Profile{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FullName:     "Test " + role,
		Role:         role,
		Language:     "en",
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := st.CreateProfile(context.Background(), p); err != nil {
		t.Fatalf("Failed to create test profile: %v", err)
	}
	return p
}

// CreateTestVoter inserts a voter account
func CreateTestVoter(t *testing.T, st *store.Store, email string) models.Profile {
	t.Helper()
	return CreateTestProfile(t, st, models.RoleVoter, email)
}

// CreateTestAdmin inserts an administrator account
func CreateTestAdmin(t *testing.T, st *store.Store) models.Profile {
	t.Helper()
	return CreateTestProfile(t, st, models.RoleAdmin, "admin-"+uuid.NewString()[:8]+"@example.com")
}

// CreateTestElection inserts an election with one candidate per name.
// status picks the schedule relative to now: "upcoming", "active" or
// "completed".
func CreateTestElection(t *testing.T, st *store.Store, status models.ElectionStatus, candidates ...string) models.Election {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	var start, end time.Time
	switch status {
	case models.StatusUpcoming:
		start, end = now.Add(24*time.Hour), now.Add(48*time.Hour)
	case models.StatusCompleted:
		start, end = now.Add(-48*time.Hour), now.Add(-24*time.Hour)
	default:
		start, end = now.Add(-time.Hour), now.Add(time.Hour)
	}

	e := models.Election{
		ID:          uuid.NewString(),
		Title:       "Test Election",
		Description: "A test election",
		StartDate:   start,
		EndDate:     end,
		CreatedAt:   now,
	}
	for _, name := range candidates {
		e.Candidates = append(e.Candidates, models.Candidate{
			ID:         uuid.NewString(),
			ElectionID: e.ID,
			Name:       name,
		})
	}

	if err := st.CreateElection(context.Background(), e); err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}
	return e
}

// SessionToken signs a session for p with the test config's secret
func SessionToken(t *testing.T, p models.Profile) string {
	t.Helper()
	cfg := GetTestConfig()
	token, _, err := auth.IssueToken(p.ID, p.Role, cfg.JWTSecret, cfg.SessionTTL, time.Now())
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return token
}

// AuthHeader returns the Authorization header for p
func AuthHeader(t *testing.T, p models.Profile) map[string]string {
	t.Helper()
	return map[string]string{"Authorization": "Bearer " + SessionToken(t, p)}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
