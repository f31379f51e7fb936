package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/byway-labs/byway-gateway/internal/authoring"
	"github.com/byway-labs/byway-gateway/internal/cart"
	"github.com/byway-labs/byway-gateway/internal/upstream"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondServiceError maps a failure from the upstream or one of the
// orchestrators onto the envelope. A 401 from the upstream forces a
// logout: the gateway session is cleared before responding.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var cartValidation *cart.ValidationError
	var wizardValidation *authoring.ValidationError

	switch {
	case errors.Is(err, upstream.ErrUnauthenticated):
		if sess := SessionFromContext(r.Context()); sess != nil {
			if derr := s.sessions.Delete(r.Context(), sess.ID); derr != nil {
				slog.Error("failed to clear session on upstream 401", "error", derr)
			}
		}
		respondError(w, http.StatusUnauthorized, "unauthenticated", "Session expired. Please login again.")

	case errors.Is(err, upstream.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", "resource not found")

	case errors.As(err, &cartValidation), errors.As(err, &wizardValidation):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())

	case errors.Is(err, upstream.ErrNetwork):
		slog.Error("upstream unreachable", "error", err)
		respondError(w, http.StatusBadGateway, "upstream_unreachable", "The marketplace service is unreachable. Please try again.")

	default:
		var apiErr *upstream.APIError
		if errors.As(err, &apiErr) {
			message := apiErr.Message
			if message == "" {
				message = "The marketplace service rejected the request."
			}
			respondError(w, http.StatusBadGateway, "upstream_rejected", message)
			return
		}
		slog.Error("unhandled service error", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Ready once the session store answers and the catalog pipeline
	// has run at least once.
	if err := s.sessions.HealthCheck(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "session store not ready")
		return
	}
	if !s.catalog.HasLoaded() {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "catalog not loaded yet")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"stage":  string(s.catalog.Stage()),
	})
}
