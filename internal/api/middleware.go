package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/byway-labs/byway-gateway/internal/session"
)

// sessionCookie is the cookie the gateway issues on login.
const sessionCookie = "byway_session"

// withSession resolves the gateway session when the request carries
// one and attaches it to the context. Requests without a session pass
// through untouched; route groups that need auth add requireSession.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := extractSessionID(r)
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := s.sessions.Get(r.Context(), id)
		if errors.Is(err, session.ErrNotFound) {
			// Expired or forged; treat as anonymous.
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			slog.Error("failed to resolve session", "error", err)
			respondError(w, http.StatusInternalServerError, "session_error", "internal server error")
			return
		}

		ctx := ContextWithSession(r.Context(), &sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireSession rejects requests that did not resolve to a session.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromContext(r.Context()) == nil {
			respondError(w, http.StatusUnauthorized, "unauthenticated", "Please login to continue")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractSessionID reads the session id from the cookie, the
// X-Session-Id header or a bearer Authorization header, in that order.
func extractSessionID(r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if id := r.Header.Get("X-Session-Id"); id != "" {
		return id
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// token returns the upstream bearer token of the request's session,
// empty for anonymous requests.
func token(r *http.Request) string {
	if sess := SessionFromContext(r.Context()); sess != nil {
		return sess.Token
	}
	return ""
}
