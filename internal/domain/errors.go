package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not_found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrValidation        = errors.New("validation")
	ErrInternal          = errors.New("internal")

	ErrNoActiveSession  = errors.New("no_active_session")
	ErrUnknownQuestion  = errors.New("unknown_question")
	ErrEmptySubmission  = errors.New("empty_submission")
	ErrSelfInvite       = errors.New("self_invite")
	ErrDuplicatePending = errors.New("duplicate_pending")
	ErrNotFriends       = errors.New("not_friends")
	ErrAlreadyFriends   = errors.New("already_friends")
)

type ValidationError struct {
	Fields map[string]string
	// Reason is a more specific sentinel (ErrUnknownQuestion, ErrSelfInvite, ...)
	// matched by errors.Is alongside ErrValidation.
	Reason error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		if e.Reason != nil {
			return "validation failed: " + e.Reason.Error()
		}
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() []error {
	if e.Reason != nil {
		return []error{ErrValidation, e.Reason}
	}
	return []error{ErrValidation}
}

func NewValidationError(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}

func NewValidationReason(reason error, fields map[string]string) error {
	return &ValidationError{Fields: fields, Reason: reason}
}

// ConflictError marks a specific conflict (duplicate pending invitation, lost
// terminal-state race) so callers can match either the reason or ErrConflict.
type ConflictError struct {
	Reason error
}

func (e *ConflictError) Error() string {
	if e.Reason == nil {
		return ErrConflict.Error()
	}
	return "conflict: " + e.Reason.Error()
}

func (e *ConflictError) Unwrap() []error {
	if e.Reason != nil {
		return []error{ErrConflict, e.Reason}
	}
	return []error{ErrConflict}
}

func NewConflict(reason error) error {
	return &ConflictError{Reason: reason}
}
