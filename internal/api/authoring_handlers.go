package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/byway-labs/byway-gateway/internal/authoring"
	"github.com/byway-labs/byway-gateway/internal/models"
)

// Authoring handlers drive the two-step course wizard. The draft
// lives in the session store between calls; every step responds with
// the full draft so the client can render the current state.

func (s *Server) handleWizardBegin(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	draft, err := s.wizard.Begin(r.Context(), sess.ID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, draft)
}

func (s *Server) handleWizardBeginUpdate(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	courseID, err := strconv.ParseInt(chi.URLParam(r, "courseId"), 10, 64)
	if err != nil || courseID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "course id must be a positive integer")
		return
	}

	draft, err := s.wizard.BeginUpdate(r.Context(), sess.ID, courseID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, draft)
}

func (s *Server) handleWizardDraft(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	draft, err := s.wizard.Load(r.Context(), sess.ID)
	if errors.Is(err, authoring.ErrNoDraft) {
		respondError(w, http.StatusNotFound, "no_draft", "no authoring draft in progress")
		return
	}
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, draft)
}

func (s *Server) handleWizardStep1(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	var step authoring.Step1
	if err := json.NewDecoder(r.Body).Decode(&step); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	draft, err := s.wizard.SaveStep1(r.Context(), sess.ID, step)
	if err != nil {
		s.respondWizardError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, draft)
}

func (s *Server) handleWizardContents(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	var contents []models.ContentSection
	if err := json.NewDecoder(r.Body).Decode(&contents); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	draft, err := s.wizard.SaveContents(r.Context(), sess.ID, contents)
	if err != nil {
		s.respondWizardError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, draft)
}

func (s *Server) handleWizardSubmit(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	created, err := s.wizard.Submit(r.Context(), sess.ID, sess.Token)
	if err != nil {
		s.respondWizardError(w, r, err)
		return
	}

	// The catalog never patches itself from a mutation; re-run the
	// pipeline so the new course shows up through the normal path.
	go s.refreshCatalogAsync()

	data := map[string]interface{}{"status": "submitted"}
	if created != nil {
		data["courseId"] = created.ID
	}
	respondJSON(w, http.StatusCreated, data)
}

func (s *Server) handleWizardCancel(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	if err := s.wizard.Cancel(r.Context(), sess.ID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) respondWizardError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, authoring.ErrNoDraft) {
		respondError(w, http.StatusConflict, "no_draft", "no authoring draft in progress, begin the wizard first")
		return
	}
	s.respondServiceError(w, r, err)
}
