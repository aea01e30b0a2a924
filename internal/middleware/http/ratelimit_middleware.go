package http

import (
	"net"
	"net/http"
	"strings"

	"github.com/winnyineza/choir-tickets/internal/limiter"
)

// CreateRateLimitMiddleware creates a rate-limiting middleware for a specific
// policy. Authenticated requests are keyed by operator, anonymous ones by
// client IP so the public checkout cannot be drained from a single host.
func CreateRateLimitMiddleware(limiterManager *limiter.Manager, policyName string) func(http.Handler) http.Handler {
	limiter := limiterManager.Get(policyName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := clientIdentifier(r)

			allowed, err := limiter.Allow(r.Context(), identifier)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to check rate limit")
				return
			}

			if !allowed {
				writeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIdentifier(r *http.Request) string {
	if session, ok := SessionFromContext(r.Context()); ok {
		return "op:" + session.Operator.ID.Hex()
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return "ip:" + strings.TrimSpace(parts[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}
