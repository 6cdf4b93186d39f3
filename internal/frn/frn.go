// Package frn builds and parses the prefixed resource identifiers handed out
// to clients: "frn:<kind>:<uuid>".
package frn

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

type Kind string

const (
	KindUser       Kind = "user"
	KindDeck       Kind = "deck"
	KindQuestion   Kind = "question"
	KindSession    Kind = "session"
	KindInvitation Kind = "invitation"
)

const prefix = "frn"

var ErrMalformed = errors.New("malformed frn")

func New(kind Kind) string {
	return prefix + ":" + string(kind) + ":" + uuid.NewString()
}

func parse(s string) (Kind, uuid.UUID, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || parts[0] != prefix || parts[1] == "" {
		return "", uuid.Nil, ErrMalformed
	}
	id, err := uuid.Parse(parts[2])
	if err != nil {
		return "", uuid.Nil, ErrMalformed
	}
	return Kind(parts[1]), id, nil
}

// Is reports whether s is a well-formed identifier of the given kind.
func Is(s string, kind Kind) bool {
	k, _, err := parse(s)
	return err == nil && k == kind
}
