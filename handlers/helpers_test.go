// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/ballotbox/ballot"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/objectstore"
	"github.com/danielhkuo/ballotbox/realtime"
	"github.com/danielhkuo/ballotbox/store"
	"github.com/danielhkuo/ballotbox/support"
	"github.com/danielhkuo/ballotbox/testutil"
)

// testEnv wires every handler against a fresh SQLite database
type testEnv struct {
	st    *store.Store
	cfg   cliparse.Config
	hub   *realtime.Hub
	guard *ballot.Guard
	admin models.Profile

	accounts  *AccountHandler
	elections *ElectionHandler
	voting    *VotingHandler
	voters    *VoterHandler
	activity  *ActivityHandler
	support   *SupportHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	cfg.StorageDir = t.TempDir()
	admin := testutil.CreateTestAdmin(t, st)
	cfg.SupportAdminID = admin.ID

	hub := realtime.NewHub()
	guard := ballot.NewGuard(st)
	recorder := NewActivityRecorder(st, cfg.JWTSecret)
	avatars := objectstore.NewAvatars(objectstore.NewLocalStore(cfg.StorageDir, cfg.PublicBaseURL), cfg.MaxAvatarBytes)
	svc := support.NewService(st, support.FixedRouter{AdminID: admin.ID})

	return &testEnv{
		st:        st,
		cfg:       cfg,
		hub:       hub,
		guard:     guard,
		admin:     admin,
		accounts:  NewAccountHandler(st, cfg, avatars, recorder, hub),
		elections: NewElectionHandler(st, recorder, hub),
		voting:    NewVotingHandler(guard, st, recorder, hub),
		voters:    NewVoterHandler(st, recorder, hub),
		activity:  NewActivityHandler(st),
		support:   NewSupportHandler(svc, st, recorder, hub),
	}
}

// serve runs h as caller, the way the session middleware would
func serve(h http.HandlerFunc, req *http.Request, caller *models.Profile) *httptest.ResponseRecorder {
	if caller != nil {
		req = req.WithContext(middleware.WithProfile(req.Context(), *caller))
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

// withPath sets path values the mux would have extracted
func withPath(req *http.Request, kv ...string) *http.Request {
	for i := 0; i+1 < len(kv); i += 2 {
		req.SetPathValue(kv[i], kv[i+1])
	}
	return req
}
