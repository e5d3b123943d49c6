package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/iteebz/spacebrr-api/sessions"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the authenticated session record
const ContextKeySession ContextKey = "session"

// RequireSession is middleware that resolves a bearer token to a session.
// Every failure path returns the same 401 body so callers cannot tell a
// malformed token from a missing session.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthorized(w)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				writeUnauthorized(w)
				return
			}

			session, err := s.sessions.Get(parts[1])
			if err != nil {
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, session)
			next(w, r.WithContext(ctx))
		}
	}
}

// sessionFromContext returns the session injected by RequireSession.
func sessionFromContext(ctx context.Context) *sessions.Session {
	session, _ := ctx.Value(ContextKeySession).(*sessions.Session)
	return session
}

func writeUnauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "unauthorized")
}
