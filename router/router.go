// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/ballotbox/ballot"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/handlers"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/objectstore"
	"github.com/danielhkuo/ballotbox/realtime"
	"github.com/danielhkuo/ballotbox/store"
	"github.com/danielhkuo/ballotbox/support"
)

// Services are the long-lived components shared by the handlers
type Services struct {
	Guard   *ballot.Guard
	Support *support.Service
	Hub     *realtime.Hub
	Avatars *objectstore.Avatars
	Files   *objectstore.LocalStore
}

// NewServices builds the default services for st and cfg and subscribes the
// vote guard to the change feed. The caller runs Hub.
func NewServices(st *store.Store, cfg cliparse.Config) Services {
	hub := realtime.NewHub()
	guard := ballot.NewGuard(st)
	hub.Observe(tallyObserver(guard))

	var supportRouter support.Router = support.FixedRouter{AdminID: cfg.SupportAdminID}
	if cfg.SupportRouting == "assigned" {
		supportRouter = support.AssignedRouter{Fallback: cfg.SupportAdminID, Lookup: st.LastAdminReplier}
	}

	files := objectstore.NewLocalStore(cfg.StorageDir, cfg.PublicBaseURL)
	return Services{
		Guard:   guard,
		Support: support.NewService(st, supportRouter),
		Hub:     hub,
		Avatars: objectstore.NewAvatars(files, cfg.MaxAvatarBytes),
		Files:   files,
	}
}

// tallyObserver keeps the guard in step with the change feed: new votes are
// counted and deletions that lower stored counts clear the affected tallies
func tallyObserver(guard *ballot.Guard) func(realtime.Change) {
	return func(c realtime.Change) {
		switch row := c.Row.(type) {
		case models.Vote:
			guard.Observe(row)
		case models.Election:
			if c.Type == realtime.Delete {
				guard.Tally().Forget(row.ID)
			}
		case models.Candidate:
			if c.Type == realtime.Delete {
				guard.Tally().Forget(row.ElectionID)
			}
		case models.Profile:
			if c.Type == realtime.Delete {
				guard.Tally().Reset()
			}
		}
	}
}

func NewRouter(st *store.Store, cfg cliparse.Config, svc Services) *http.ServeMux {
	mux := http.NewServeMux()

	sessions := middleware.NewSessions(cfg.JWTSecret, st)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	activity := handlers.NewActivityRecorder(st, cfg.JWTSecret)

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(st, cfg, svc.Avatars, activity, svc.Hub)
	electionHandler := handlers.NewElectionHandler(st, activity, svc.Hub)
	votingHandler := handlers.NewVotingHandler(svc.Guard, st, activity, svc.Hub)
	voterHandler := handlers.NewVoterHandler(st, activity, svc.Hub)
	activityHandler := handlers.NewActivityHandler(st)
	supportHandler := handlers.NewSupportHandler(svc.Support, st, activity, svc.Hub)
	realtimeHandler := handlers.NewRealtimeHandler(svc.Hub)

	user := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(sessions.RequireAuth(h))
	}
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(sessions.RequireAdmin(h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := st.DB().PingContext(r.Context()); err != nil {
			middleware.StoreError(w, err, "Database unavailable")
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /storage/", http.StripPrefix("/storage/", svc.Files.Handler()))

	// Accounts
	mux.HandleFunc("POST /auth/register", middleware.WithLogging(limiter.Limit(accountHandler.Register)))
	mux.HandleFunc("POST /auth/login", middleware.WithLogging(limiter.Limit(accountHandler.Login)))
	mux.HandleFunc("GET /me", user(accountHandler.Me))
	mux.HandleFunc("PATCH /me", user(accountHandler.UpdateMe))
	mux.HandleFunc("POST /me/avatar", user(accountHandler.UploadAvatar))
	mux.HandleFunc("GET /me/votes", user(votingHandler.MyVotes))

	// Elections and voting
	mux.HandleFunc("GET /elections", user(electionHandler.ListElections))
	mux.HandleFunc("GET /elections/{id}", user(electionHandler.GetElection))
	mux.HandleFunc("POST /elections/{id}/votes", middleware.WithLogging(limiter.Limit(sessions.RequireAuth(votingHandler.CastVote))))

	// Election management
	mux.HandleFunc("POST /admin/elections", admin(electionHandler.CreateElection))
	mux.HandleFunc("PATCH /admin/elections/{id}", admin(electionHandler.UpdateElection))
	mux.HandleFunc("POST /admin/elections/{id}/end", admin(electionHandler.EndElection))
	mux.HandleFunc("DELETE /admin/elections/{id}", admin(electionHandler.DeleteElection))
	mux.HandleFunc("POST /admin/elections/{id}/candidates", admin(electionHandler.AddCandidate))
	mux.HandleFunc("PATCH /admin/candidates/{id}", admin(electionHandler.UpdateCandidate))
	mux.HandleFunc("DELETE /admin/candidates/{id}", admin(electionHandler.DeleteCandidate))

	// Voter management
	mux.HandleFunc("GET /admin/voters", admin(voterHandler.ListVoters))
	mux.HandleFunc("POST /admin/voters", admin(voterHandler.CreateVoter))
	mux.HandleFunc("GET /admin/voters/export", admin(voterHandler.ExportVoters))
	mux.HandleFunc("PATCH /admin/voters/{id}", admin(voterHandler.UpdateVoter))
	mux.HandleFunc("DELETE /admin/voters/{id}", admin(voterHandler.DeleteVoter))

	// Activity log
	mux.HandleFunc("GET /admin/activity", admin(activityHandler.ListActivity))
	mux.HandleFunc("GET /admin/activity/export", admin(activityHandler.ExportActivity))

	// Support inbox
	mux.HandleFunc("GET /support/messages", user(supportHandler.MyMessages))
	mux.HandleFunc("GET /support/messages/unread", user(supportHandler.UnreadCount))
	mux.HandleFunc("POST /support/messages", user(supportHandler.SendMessage))
	mux.HandleFunc("POST /support/messages/read", user(supportHandler.MarkMessagesAsRead))
	mux.HandleFunc("GET /admin/support/threads", admin(supportHandler.ListThreads))
	mux.HandleFunc("POST /admin/support/threads/{voterID}/messages", admin(supportHandler.Reply))
	mux.HandleFunc("POST /admin/support/threads/{voterID}/read", admin(supportHandler.MarkThreadAsRead))

	// Change feed
	mux.HandleFunc("GET /realtime", user(realtimeHandler.Subscribe))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ballotbox API v1"))
	})

	return mux
}
