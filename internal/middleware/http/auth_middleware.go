package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/winnyineza/choir-tickets/internal/constants"
	"github.com/winnyineza/choir-tickets/internal/dto"
	"github.com/winnyineza/choir-tickets/internal/logic"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const sessionKey contextKey = "session"

// RenewedTokenHeader carries a re-minted session token back to the client
// when a rolling session gets its idle window extended.
const RenewedTokenHeader = "X-Renewed-Token"

// SessionExpiresHeader reports the session's current expiry in RFC 3339.
const SessionExpiresHeader = "X-Session-Expires"

// AuthMiddleware defines the function signature for the session middleware.
type AuthMiddleware func(http.Handler) http.Handler

// NewAuthMiddleware creates a middleware that verifies the bearer session
// token, attaches the session to the request context and, for rolling
// sessions, re-mints the token with a fresh idle window.
func NewAuthMiddleware(authLogic *logic.AuthLogic) AuthMiddleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			session, err := authLogic.ValidateSession(r.Context(), token)
			if err != nil {
				if errors.Is(err, logic.ErrAccountDeactivated) {
					writeError(w, http.StatusForbidden, err.Error())
					return
				}
				writeError(w, http.StatusUnauthorized, "session is invalid or expired")
				return
			}

			renewed, expiresAt, err := authLogic.RenewSession(r.Context(), token, session)
			if err == nil && renewed != token {
				w.Header().Set(RenewedTokenHeader, renewed)
				w.Header().Set(SessionExpiresHeader, expiresAt.Format(time.RFC3339))
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the session attached by the auth middleware.
func SessionFromContext(ctx context.Context) (*dto.Session, bool) {
	session, ok := ctx.Value(sessionKey).(*dto.Session)
	return session, ok
}

// RequireRole gates a route on the operator's role. It must run after the
// auth middleware.
func RequireRole(required constants.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing session")
				return
			}

			role, ok := constants.ParseRole(session.Role)
			if !ok || !role.Satisfies(required) {
				writeError(w, http.StatusForbidden, "insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

func writeError(w http.ResponseWriter, httpCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "error",
		"code":    httpCode,
		"message": message,
	})
}
