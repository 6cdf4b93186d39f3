package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"FlashLeaderserver/internal/domain"
	"FlashLeaderserver/internal/lock"
	"FlashLeaderserver/internal/service"
	"FlashLeaderserver/internal/store/memory"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t        *testing.T
	store    *memory.Store
	handler  http.Handler
	registry *prometheus.Registry
	now      time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{
		t:        t,
		store:    memory.New(),
		registry: prometheus.NewRegistry(),
		now:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return ts.now }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, u := range []domain.User{
		{ID: "alice", Email: "alice@example.com", Username: "alice", DisplayName: "Alice"},
		{ID: "bob", Email: "bob@example.com", Username: "bob"},
		{ID: "carol", Email: "carol@example.com", Username: "carol"},
	} {
		require.NoError(t, ts.store.AddUser(u))
	}
	require.NoError(t, ts.store.AddDeck(
		domain.Deck{ID: "deck-1", OwnerID: "alice", Name: "Capitals", Kind: domain.DeckKindQuestions},
		[]domain.Question{
			{ID: "q1", Prompt: "Capital of France?", CorrectAnswers: []string{"Paris"}, IncorrectAnswers: []string{"Lyon"}},
			{ID: "q2", Prompt: "Capital of Spain?", CorrectAnswers: []string{"Madrid"}, IncorrectAnswers: []string{"Seville"}},
		},
	))

	notifications := &service.NotificationService{Tokens: ts.store, Users: ts.store, Logger: logger, Now: now}
	ts.handler = NewRouter(RouterOpts{
		Logger: logger,
		Games: &service.GameService{
			Sessions: ts.store,
			Decks:    ts.store,
			Locker:   lock.NewKeyed(),
			Logger:   logger,
			Now:      now,
		},
		Friends: &service.FriendsService{
			Users:       ts.store,
			Friendships: ts.store,
			Logger:      logger,
			Now:         now,
		},
		Leaderboard:    &service.LeaderboardService{Users: ts.store, MaxLimit: 50},
		Notifications:  notifications,
		Metrics:        NewHTTPMetrics(ts.registry),
		MetricsHandler: promhttp.HandlerFor(ts.registry, promhttp.HandlerOpts{}),
	})
	return ts
}

func (ts *testServer) do(method, path, userID string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(ts.t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(UserHeader, userID)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[errorEnvelope](t, rr).Error.Code
}

func TestRouter_Healthz(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
	require.NotEmpty(t, rr.Header().Get("X-Request-Id"))
}

func TestRouter_RequiresCallerIdentity(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodGet, "/v1/friends", "", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "unauthenticated", errorCode(t, rr))
}

func TestRouter_UnknownV1RouteIsJSON404(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodGet, "/v1/nope", "alice", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "not_found", errorCode(t, rr))
}

func TestRouter_RequestIDIsEchoed(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	require.Equal(t, "req-123", rr.Header().Get("X-Request-Id"))
}

func TestRouter_MetricsEndpointExposesRouteLabels(t *testing.T) {
	ts := newTestServer(t)

	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/v1/friends", "alice", nil).Code)

	rr := ts.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `http_requests_total{method="GET",route="GET /v1/friends",status="200"} 1`)
}

func TestRouter_RecovererTurnsPanicsInto500(t *testing.T) {
	h := Recoverer(slog.New(slog.NewTextHandler(io.Discard, nil)), true)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "internal_error", errorCode(t, rr))
}
