package httpapi

import (
	"net/http"
	"strings"

	"FlashLeaderserver/internal/domain"
	"FlashLeaderserver/internal/frn"
)

func (a *api) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	userID, _ := CurrentUserID(r.Context())

	res, err := a.gamesSvc.Start(r.Context(), userID, r.PathValue("deckID"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	status := http.StatusCreated
	if res.Resumed {
		status = http.StatusOK
	}
	WriteJSON(w, status, res)
}

type endSessionRequest struct {
	Answers []domain.AnswerSubmission `json:"answers"`
}

func (a *api) handleSessionEnd(w http.ResponseWriter, r *http.Request) {
	userID, _ := CurrentUserID(r.Context())

	var req endSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	session, err := a.gamesSvc.End(r.Context(), userID, r.PathValue("deckID"), req.Answers)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, session)
}

func (a *api) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := CurrentUserID(r.Context())

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	if !frn.Is(sessionID, frn.KindSession) {
		WriteDomainError(w, domain.ErrNotFound)
		return
	}

	session, err := a.gamesSvc.Get(r.Context(), userID, strings.TrimSpace(r.PathValue("deckID")), sessionID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, session)
}

type sessionsResponse struct {
	Sessions []domain.GameSession `json:"sessions"`
}

// handleSessionsList serves both the per-deck and the all-decks listing;
// deckID is empty on the latter route.
func (a *api) handleSessionsList(w http.ResponseWriter, r *http.Request) {
	userID, _ := CurrentUserID(r.Context())

	sessions, err := a.gamesSvc.List(r.Context(), userID, r.PathValue("deckID"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if sessions == nil {
		sessions = []domain.GameSession{}
	}
	WriteJSON(w, http.StatusOK, sessionsResponse{Sessions: sessions})
}
