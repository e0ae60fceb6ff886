package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/taskpulse/taskpulse-api/internal/api/shared"
)

// userIDHeader carries the verified user identity, injected by the upstream
// gateway after authentication. This service trusts it as opaque identity
// and performs no credential checks of its own.
const userIDHeader = "X-User-ID"

// Identity extracts the verified user ID from the request and stores it on
// the context. Requests without a parseable identity are rejected before
// reaching any handler.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.Header.Get(userIDHeader))
		if err != nil || userID == uuid.Nil {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Missing or invalid user identity")
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithUserID(r.Context(), userID)))
	})
}
