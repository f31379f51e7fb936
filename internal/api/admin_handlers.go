package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/byway-labs/byway-gateway/internal/models"
	"github.com/byway-labs/byway-gateway/internal/upstream"
)

// Admin handlers back the dashboard: aggregate counts plus the
// instructor and course management operations the wizard does not
// cover.

// handleAdminSummary aggregates the dashboard counts in parallel. A
// failed count degrades to zero; the summary never fails as a whole.
func (s *Server) handleAdminSummary(w http.ResponseWriter, r *http.Request) {
	snap := s.catalog.Snapshot()

	var categoryCount int
	var instructorTotal int

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		count, err := s.upstream.CountCategories(ctx)
		if err != nil {
			slog.Error("failed to count categories", "error", err)
			return nil
		}
		categoryCount = count
		return nil
	})
	g.Go(func() error {
		page, err := s.upstream.ListInstructors(ctx, upstream.InstructorQuery{Page: 1, PageSize: 1})
		if err != nil {
			slog.Error("failed to count instructors", "error", err)
			return nil
		}
		instructorTotal = page.Total
		return nil
	})
	_ = g.Wait()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"courses":       snap.TotalCourses,
		"categories":    categoryCount,
		"instructors":   instructorTotal,
		"catalogStage":  snap.Stage,
		"refreshedAt":   snap.RefreshedAt,
		"notifications": s.hub.SubscriberCount(),
	})
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "course id must be a positive integer")
		return
	}

	if err := s.upstream.DeleteCourse(r.Context(), token(r), id); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.hub.Publish("info", "Course deleted")
	go s.refreshCatalogAsync()

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// instructorPayload is the JSON form of instructor create/update. The
// image arrives base64-encoded; the upstream wants multipart.
type instructorPayload struct {
	Name        string          `json:"name"`
	JobTitle    models.JobTitle `json:"jobTitle"`
	Rate        float64         `json:"rate"`
	Description string          `json:"description"`
	Image       string          `json:"image,omitempty"`
	ImageName   string          `json:"imageName,omitempty"`
}

func (p instructorPayload) form() (upstream.InstructorForm, error) {
	form := upstream.InstructorForm{
		Name:        p.Name,
		JobTitle:    p.JobTitle,
		Rate:        p.Rate,
		Description: p.Description,
		ImageName:   p.ImageName,
	}
	if p.Image != "" {
		data, err := base64.StdEncoding.DecodeString(p.Image)
		if err != nil {
			return upstream.InstructorForm{}, err
		}
		form.Image = data
	}
	return form, nil
}

func (s *Server) handleCreateInstructor(w http.ResponseWriter, r *http.Request) {
	var payload instructorPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if payload.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	form, err := payload.form()
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "image must be base64 encoded")
		return
	}

	created, err := s.upstream.CreateInstructor(r.Context(), token(r), form)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.hub.Publish("info", "Instructor created")
	go s.refreshCatalogAsync()

	respondJSON(w, http.StatusCreated, s.mapper.Instructor(*created))
}

func (s *Server) handleUpdateInstructor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "instructor id must be a positive integer")
		return
	}

	var payload instructorPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	form, err := payload.form()
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "image must be base64 encoded")
		return
	}

	if err := s.upstream.UpdateInstructor(r.Context(), token(r), id, form); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.hub.Publish("info", "Instructor updated")
	go s.refreshCatalogAsync()

	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteInstructor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "instructor id must be a positive integer")
		return
	}

	if err := s.upstream.DeleteInstructor(r.Context(), token(r), id); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.hub.Publish("info", "Instructor deleted")
	go s.refreshCatalogAsync()

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// refreshCatalogAsync re-runs the catalog pipeline after a mutation,
// detached from the request that triggered it.
func (s *Server) refreshCatalogAsync() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.catalog.Refresh(ctx); err != nil {
		slog.Error("catalog refresh after mutation failed", "error", err)
	}
}
