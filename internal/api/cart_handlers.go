package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/byway-labs/byway-gateway/internal/cart"
)

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	current, err := s.cart.Fetch(r.Context(), token(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, current)
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	courseID, ok := cartCourseID(w, r)
	if !ok {
		return
	}

	current, err := s.cart.Add(r.Context(), token(r), courseID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, current)
}

func (s *Server) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	courseID, ok := cartCourseID(w, r)
	if !ok {
		return
	}

	current, err := s.cart.Remove(r.Context(), token(r), courseID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, current)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var form cart.CheckoutForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, remaining, err := s.cart.Checkout(r.Context(), token(r), form)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"order": order,
		"cart":  remaining,
	})
}

func cartCourseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "courseId"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "course id must be a positive integer")
		return 0, false
	}
	return id, true
}
