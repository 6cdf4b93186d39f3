package httpapi

import (
	"net/http"
	"testing"
	"time"

	"FlashLeaderserver/internal/domain"
	"FlashLeaderserver/internal/frn"
	"FlashLeaderserver/internal/service"

	"github.com/stretchr/testify/require"
)

func TestSessions_StartCreatesThenResumes(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodPost, "/v1/decks/deck-1/sessions", "alice", nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	first := decodeBody[service.StartResult](t, rr)
	require.False(t, first.Resumed)
	require.Equal(t, domain.GameStatusPending, first.Session.Status)
	require.Len(t, first.Questions, 2)

	rr = ts.do(http.MethodPost, "/v1/decks/deck-1/sessions", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	second := decodeBody[service.StartResult](t, rr)
	require.True(t, second.Resumed)
	require.Equal(t, first.Session.ID, second.Session.ID)
}

func TestSessions_StartOnForeignDeckIsNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodPost, "/v1/decks/deck-1/sessions", "bob", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "not_found", errorCode(t, rr))
}

func TestSessions_EndScoresAndCreditsStats(t *testing.T) {
	ts := newTestServer(t)

	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/v1/decks/deck-1/sessions", "alice", nil).Code)
	ts.now = ts.now.Add(90 * time.Second)

	rr := ts.do(http.MethodPost, "/v1/decks/deck-1/sessions/end", "alice", map[string]any{
		"answers": []map[string]any{
			{"question": "capital of france?", "correct_answers": []string{"Paris"}},
			{"question": "Capital of Spain?", "correct_answers": []string{"Seville"}},
		},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	session := decodeBody[domain.GameSession](t, rr)
	require.Equal(t, domain.GameStatusFinished, session.Status)
	require.Equal(t, 1, session.CorrectCount)
	require.Equal(t, 1, session.WrongCount)
	require.Equal(t, 1, session.Score)

	u, err := ts.store.GetUserByID(t.Context(), "alice")
	require.NoError(t, err)
	require.EqualValues(t, 1, u.Points)
	require.Equal(t, 1, u.GamesPlayed)
	require.NotNil(t, u.StudyTime)
	require.Equal(t, 90*time.Second, *u.StudyTime)
}

func TestSessions_EndErrors(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodPost, "/v1/decks/deck-1/sessions/end", "alice", map[string]any{"answers": []any{}})
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, "no_active_session", errorCode(t, rr))

	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/v1/decks/deck-1/sessions", "alice", nil).Code)

	rr = ts.do(http.MethodPost, "/v1/decks/deck-1/sessions/end", "alice", map[string]any{
		"answers": []map[string]any{{"question": "Capital of Peru?", "correct_answers": []string{"Lima"}}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Equal(t, "unknown_question", errorCode(t, rr))

	rr = ts.do(http.MethodPost, "/v1/decks/deck-1/sessions/end", "alice", `{"answers": [], "extra": true}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "bad_json", errorCode(t, rr))

	// The rejected submissions left the session pending.
	rr = ts.do(http.MethodPost, "/v1/decks/deck-1/sessions", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestSessions_ListAndGet(t *testing.T) {
	ts := newTestServer(t)

	started := decodeBody[service.StartResult](t, ts.do(http.MethodPost, "/v1/decks/deck-1/sessions", "alice", nil))

	rr := ts.do(http.MethodGet, "/v1/decks/deck-1/sessions", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decodeBody[sessionsResponse](t, rr)
	require.Len(t, list.Sessions, 1)

	rr = ts.do(http.MethodGet, "/v1/sessions", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, decodeBody[sessionsResponse](t, rr).Sessions, 1)

	rr = ts.do(http.MethodGet, "/v1/sessions", "bob", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"sessions":[]}`, rr.Body.String())

	rr = ts.do(http.MethodGet, "/v1/decks/deck-1/sessions/"+started.Session.ID, "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, started.Session.ID, decodeBody[domain.GameSession](t, rr).ID)

	rr = ts.do(http.MethodGet, "/v1/decks/deck-1/sessions/"+started.Session.ID, "bob", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	for _, id := range []string{"not-an-id", frn.New(frn.KindInvitation)} {
		rr = ts.do(http.MethodGet, "/v1/decks/deck-1/sessions/"+id, "alice", nil)
		require.Equal(t, http.StatusNotFound, rr.Code, id)
		require.Equal(t, "not_found", errorCode(t, rr))
	}
}
