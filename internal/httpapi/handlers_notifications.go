package httpapi

import (
	"net/http"
	"time"
)

type deviceTokenRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type deviceTokenResponse struct {
	Token     string `json:"token"`
	Platform  string `json:"platform"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (a *api) handleNotificationsTokenUpsert(w http.ResponseWriter, r *http.Request) {
	userID, _ := CurrentUserID(r.Context())

	var req deviceTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	out, err := a.notificationsSvc.RegisterToken(r.Context(), userID, req.Token, req.Platform)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, deviceTokenResponse{
		Token:     out.Token,
		Platform:  string(out.Platform),
		CreatedAt: formatMillis(out.CreatedAt),
		UpdatedAt: formatMillis(out.UpdatedAt),
	})
}

func (a *api) handleNotificationsTokenDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := CurrentUserID(r.Context())

	if err := a.notificationsSvc.DeleteToken(r.Context(), userID, r.URL.Query().Get("token")); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func formatMillis(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
