package http

import (
	"context"
	"net/http"

	"fintrack/internal/core"
)

type contextKey string

const identityKey contextKey = "identity"

// identityFrom returns the authenticated identity placed by requireAuth.
func identityFrom(ctx context.Context) (core.Identity, bool) {
	who, ok := ctx.Value(identityKey).(core.Identity)
	return who, ok
}

// requireAuth authenticates the Authorization header and stores the resulting
// identity in the request context. Refresh tokens are rejected here; only the
// refresh endpoint accepts them, and it does its own verification.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, err := s.authenticator.Authenticate(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), identityKey, who)))
	}
}

// withCORS answers preflight requests and sets the allow-origin header on
// everything else. An empty configured origin disables CORS entirely.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.corsOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// withAuthRateLimit guards the credential endpoints, where each request costs
// a bcrypt computation.
func (s *Server) withAuthRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authLimiter != nil && !s.authLimiter.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeErrorCode(w, http.StatusTooManyRequests, codeRateLimited,
				"too many requests, try again later", nil)
			return
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
