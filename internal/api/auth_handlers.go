package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/byway-labs/byway-gateway/internal/models"
	"github.com/byway-labs/byway-gateway/internal/upstream"
)

// handleLogin proxies credentials to the upstream, wraps the returned
// bearer token in a gateway session and sets the session cookie. The
// token itself never reaches the browser.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req upstream.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	result, err := s.upstream.Login(r.Context(), req)
	if err != nil {
		s.respondAuthError(w, r, err)
		return
	}
	s.issueSession(w, r, result)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req upstream.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" || req.UserName == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "userName, email and password are required")
		return
	}

	result, err := s.upstream.Register(r.Context(), req)
	if err != nil {
		s.respondAuthError(w, r, err)
		return
	}
	s.issueSession(w, r, result)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := SessionFromContext(r.Context()); sess != nil {
		if err := s.sessions.Delete(r.Context(), sess.ID); err != nil {
			s.respondServiceError(w, r, err)
			return
		}
	}
	clearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "Please login to continue")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":      sess.User,
		"role":      sess.User.Role(),
		"createdAt": sess.CreatedAt,
	})
}

// issueSession creates the gateway session for a successful upstream
// auth result and responds with the user profile.
func (s *Server) issueSession(w http.ResponseWriter, r *http.Request, result *upstream.AuthResult) {
	if !result.IsAuthenticated || result.Token == "" {
		message := result.Message
		if message == "" {
			message = "Invalid credentials"
		}
		respondError(w, http.StatusUnauthorized, "auth_failed", message)
		return
	}

	user := models.User{
		ID:    result.UserID,
		Name:  result.UserName,
		Email: result.Email,
		Roles: result.Roles,
	}
	sess, err := s.sessions.Create(r.Context(), result.Token, user)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": sess.ID,
		"user":      sess.User,
		"role":      sess.User.Role(),
	})
}

// respondAuthError keeps credential failures at 401 instead of the
// generic 502 an upstream 4xx would otherwise map to.
func (s *Server) respondAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		message := apiErr.Message
		if message == "" {
			message = "Invalid credentials"
		}
		respondError(w, http.StatusUnauthorized, "auth_failed", message)
		return
	}
	s.respondServiceError(w, r, err)
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
