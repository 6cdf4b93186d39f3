package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"FlashLeaderserver/internal/service"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing func(context.Context) error

	Games         *service.GameService
	Friends       *service.FriendsService
	Leaderboard   *service.LeaderboardService
	Notifications *service.NotificationService

	// Metrics instruments requests; MetricsHandler is mounted at /metrics.
	Metrics        *HTTPMetrics
	MetricsHandler http.Handler
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api := &api{
		logger:           logger,
		dbPing:           opts.DBPing,
		gamesSvc:         opts.Games,
		friendsSvc:       opts.Friends,
		leaderboardSvc:   opts.Leaderboard,
		notificationsSvc: opts.Notifications,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", api.handleHealthz)
	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	}
	mux.HandleFunc("/v1/", handleV1NotFound)

	if api.gamesSvc != nil {
		mux.HandleFunc("POST /v1/decks/{deckID}/sessions", requireUser(api.handleSessionStart))
		mux.HandleFunc("POST /v1/decks/{deckID}/sessions/end", requireUser(api.handleSessionEnd))
		mux.HandleFunc("GET /v1/decks/{deckID}/sessions", requireUser(api.handleSessionsList))
		mux.HandleFunc("GET /v1/decks/{deckID}/sessions/{sessionID}", requireUser(api.handleSessionGet))
		mux.HandleFunc("GET /v1/sessions", requireUser(api.handleSessionsList))
	}

	if api.friendsSvc != nil {
		mux.HandleFunc("GET /v1/friends", requireUser(api.handleFriendsList))
		mux.HandleFunc("DELETE /v1/friends/{id}", requireUser(api.handleFriendsDelete))
		mux.HandleFunc("POST /v1/friends/invitations", requireUser(api.handleInvitationSend))
		mux.HandleFunc("POST /v1/friends/invitations/{id}/respond", requireUser(api.handleInvitationRespond))
		mux.HandleFunc("GET /v1/friends/invitations/received", requireUser(api.handleInvitationsReceived))
		mux.HandleFunc("GET /v1/friends/invitations/sent", requireUser(api.handleInvitationsSent))
	}

	if api.leaderboardSvc != nil {
		mux.HandleFunc("GET /v1/leaderboard", requireUser(api.handleLeaderboard))
	}

	if api.notificationsSvc != nil {
		mux.HandleFunc("POST /v1/notifications/token", requireUser(api.handleNotificationsTokenUpsert))
		mux.HandleFunc("DELETE /v1/notifications/token", requireUser(api.handleNotificationsTokenDelete))
	}

	// Every layer passes the same *Request down, so the pattern the mux
	// matches is visible to metrics and the access log. Recoverer sits inside
	// both so panics are counted and logged as 500s.
	var h http.Handler = Recoverer(logger, opts.IsProd)(mux)
	h = opts.Metrics.Middleware(h)
	h = RequestLogger(logger)(h)
	h = RequestID()(h)
	return h
}

func handleV1NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "not_found", "not found")
}

type api struct {
	logger *slog.Logger

	dbPing func(context.Context) error

	gamesSvc         *service.GameService
	friendsSvc       *service.FriendsService
	leaderboardSvc   *service.LeaderboardService
	notificationsSvc *service.NotificationService
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			a.logger.Warn("healthz: db ping failed", "err", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}
