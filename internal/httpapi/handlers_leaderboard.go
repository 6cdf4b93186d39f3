package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"FlashLeaderserver/internal/domain"
	"FlashLeaderserver/internal/ranking"
)

const defaultLeaderboardLimit = 10

type leaderboardResponse struct {
	Criterion   ranking.Criterion         `json:"criterion"`
	FriendsOnly bool                      `json:"friends_only"`
	Entries     []domain.LeaderboardEntry `json:"entries"`
}

func (a *api) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := CurrentUserID(r.Context())
	q := r.URL.Query()

	fields := map[string]string{}
	friendsOnly := false
	if raw := strings.TrimSpace(q.Get("friends_only")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			fields["friends_only"] = "must be a boolean"
		}
		friendsOnly = v
	}
	limit := defaultLeaderboardLimit
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			fields["limit"] = "must be a positive integer"
		}
		limit = v
	}
	if len(fields) > 0 {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	criterion := ranking.ParseCriterion(q.Get("criterion"))
	entries, err := a.leaderboardSvc.Get(r.Context(), userID, criterion, friendsOnly, limit)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	WriteJSON(w, http.StatusOK, leaderboardResponse{Criterion: criterion, FriendsOnly: friendsOnly, Entries: entries})
}
