package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"FlashLeaderserver/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: message}})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteDomainError maps domain errors onto statuses. Specific reasons are
// checked before the generic validation and conflict sentinels they wrap.
func WriteDomainError(w http.ResponseWriter, err error) {
	var fields map[string]string
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		fields = verr.Fields
	}
	write := func(status int, code, message string) {
		WriteJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: message, Fields: fields}})
	}

	switch {
	case errors.Is(err, domain.ErrUnknownQuestion):
		write(http.StatusUnprocessableEntity, "unknown_question", "answer refers to a question not in the deck")
	case errors.Is(err, domain.ErrEmptySubmission):
		write(http.StatusUnprocessableEntity, "empty_submission", "at least one answer is required")
	case errors.Is(err, domain.ErrSelfInvite):
		write(http.StatusUnprocessableEntity, "self_invite", "cannot invite yourself")
	case errors.Is(err, domain.ErrValidation):
		write(http.StatusBadRequest, "validation_error", "invalid request")
	case errors.Is(err, domain.ErrNoActiveSession):
		write(http.StatusConflict, "no_active_session", "no active session for this deck")
	case errors.Is(err, domain.ErrDuplicatePending):
		write(http.StatusConflict, "duplicate_pending", "a pending invitation already exists")
	case errors.Is(err, domain.ErrAlreadyFriends):
		write(http.StatusConflict, "already_friends", "already friends")
	case errors.Is(err, domain.ErrInvalidTransition):
		write(http.StatusUnprocessableEntity, "invalid_transition", "status not allowed for this invitation")
	case errors.Is(err, domain.ErrConflict):
		write(http.StatusConflict, "conflict", "conflict")
	case errors.Is(err, domain.ErrUnauthorized):
		write(http.StatusForbidden, "unauthorized", "not allowed to act on this resource")
	case errors.Is(err, domain.ErrNotFriends):
		write(http.StatusNotFound, "not_friends", "not friends")
	case errors.Is(err, domain.ErrNotFound):
		write(http.StatusNotFound, "not_found", "not found")
	default:
		write(http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
