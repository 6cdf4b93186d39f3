package httpapi

import (
	"net/http"
	"strings"

	"FlashLeaderserver/internal/domain"
	"FlashLeaderserver/internal/frn"
)

type sendInvitationRequest struct {
	Email string `json:"email"`
}

func (a *api) handleInvitationSend(w http.ResponseWriter, r *http.Request) {
	userID, _ := CurrentUserID(r.Context())

	var req sendInvitationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	inv, err := a.friendsSvc.Send(r.Context(), userID, req.Email)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, inv)
}

type respondInvitationRequest struct {
	Status string `json:"status"`
}

func (a *api) handleInvitationRespond(w http.ResponseWriter, r *http.Request) {
	userID, _ := CurrentUserID(r.Context())

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"id": "required"}))
		return
	}
	if !frn.Is(id, frn.KindInvitation) {
		WriteDomainError(w, domain.ErrNotFound)
		return
	}

	var req respondInvitationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	status := domain.InvitationStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if status == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"status": "required"}))
		return
	}

	inv, err := a.friendsSvc.Respond(r.Context(), id, userID, status)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, inv)
}

type invitationsResponse struct {
	Invitations []domain.FriendInvitation `json:"invitations"`
}

func (a *api) handleInvitationsReceived(w http.ResponseWriter, r *http.Request) {
	userID, _ := CurrentUserID(r.Context())

	out, err := a.friendsSvc.ListReceived(r.Context(), userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeInvitations(w, out)
}

func (a *api) handleInvitationsSent(w http.ResponseWriter, r *http.Request) {
	userID, _ := CurrentUserID(r.Context())

	out, err := a.friendsSvc.ListSent(r.Context(), userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeInvitations(w, out)
}

func writeInvitations(w http.ResponseWriter, invs []domain.FriendInvitation) {
	if invs == nil {
		invs = []domain.FriendInvitation{}
	}
	WriteJSON(w, http.StatusOK, invitationsResponse{Invitations: invs})
}

type friendsResponse struct {
	Friends []domain.UserSummary `json:"friends"`
}

func (a *api) handleFriendsList(w http.ResponseWriter, r *http.Request) {
	userID, _ := CurrentUserID(r.Context())

	out, err := a.friendsSvc.ListFriends(r.Context(), userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if out == nil {
		out = []domain.UserSummary{}
	}
	WriteJSON(w, http.StatusOK, friendsResponse{Friends: out})
}

func (a *api) handleFriendsDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := CurrentUserID(r.Context())

	if err := a.friendsSvc.DeleteFriend(r.Context(), userID, r.PathValue("id")); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
