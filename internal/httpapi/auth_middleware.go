package httpapi

import (
	"context"
	"net/http"
	"strings"
)

// UserHeader carries the caller identity resolved by the upstream gateway.
// This service never verifies credentials itself.
const UserHeader = "X-Authenticated-User"

type authCtxKey int

const authUserKey authCtxKey = iota

func requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(UserHeader))
		if id == "" {
			WriteError(w, http.StatusUnauthorized, "unauthenticated", "missing caller identity")
			return
		}
		ctx := context.WithValue(r.Context(), authUserKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func CurrentUserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(authUserKey).(string)
	return id, ok && id != ""
}
