package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/byway-labs/byway-gateway/internal/models"
)

// Catalog handlers — the storefront browsing surface. Everything here
// reads the controller's in-memory snapshot; only the course-detail
// handler goes to the upstream (for the nested contents).

// defaultListPageSize matches the storefront's 3x3 course grid.
const defaultListPageSize = 9

func (s *Server) handleCatalogStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.catalog.Snapshot()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stage":        snap.Stage,
		"isLoading":    snap.IsLoading,
		"totalCourses": snap.TotalCourses,
		"categories":   len(snap.Categories),
		"instructors":  len(snap.Instructors),
		"refreshedAt":  snap.RefreshedAt,
	})
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	filters := parseFilters(r)
	visible := s.catalog.FilteredCourses(filters)

	page, pageSize := parsePagination(r)
	start := (page - 1) * pageSize
	if start > len(visible) {
		start = len(visible)
	}
	end := start + pageSize
	if end > len(visible) {
		end = len(visible)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"courses":   visible[start:end],
		"total":     len(visible),
		"page":      page,
		"pageSize":  pageSize,
		"isLoading": s.catalog.Snapshot().IsLoading,
		"filters":   filters,
	})
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "course id must be numeric")
		return
	}

	course, err := s.catalog.CourseByID(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, course)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories := s.catalog.Snapshot().Categories
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"total":      len(categories),
	})
}

func (s *Server) handleTopCategories(w http.ResponseWriter, r *http.Request) {
	top := 10
	if v, err := strconv.Atoi(r.URL.Query().Get("top")); err == nil && v > 0 {
		top = v
	}

	raw, err := s.upstream.TopCategories(r.Context(), top)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	categories := make([]models.Category, len(raw))
	for i, rc := range raw {
		categories[i] = s.mapper.TopCategory(rc)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"total":      len(categories),
	})
}

func (s *Server) handleListInstructors(w http.ResponseWriter, r *http.Request) {
	instructors := s.catalog.Snapshot().Instructors
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"instructors": instructors,
		"total":       len(instructors),
	})
}

func (s *Server) handleGetInstructor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "instructor id must be numeric")
		return
	}

	raw, err := s.upstream.GetInstructor(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	instructor := s.mapper.Instructor(*raw)

	// Course and student counts come from dedicated endpoints; a
	// failure there degrades to zero rather than failing the page.
	if count, err := s.upstream.CountInstructorCourses(r.Context(), id); err == nil {
		instructor.CourseCount = count
	}
	if count, err := s.upstream.CountInstructorStudents(r.Context(), id); err == nil {
		instructor.StudentCount = count
	}

	respondJSON(w, http.StatusOK, instructor)
}

func (s *Server) handleTopCourses(w http.ResponseWriter, r *http.Request) {
	courses := s.catalog.Snapshot().TopCourses
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"courses": courses,
		"total":   len(courses),
	})
}

func (s *Server) handleTopInstructors(w http.ResponseWriter, r *http.Request) {
	instructors := s.catalog.Snapshot().TopInstructors
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"instructors": instructors,
		"total":       len(instructors),
	})
}

func (s *Server) handleCatalogRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Refresh(r.Context()); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// parseFilters builds a FilterState from query parameters. Absent
// parameters keep their no-filter zero values.
func parseFilters(r *http.Request) models.FilterState {
	q := r.URL.Query()
	filters := models.DefaultFilters()

	if v, err := strconv.ParseFloat(q.Get("rating"), 64); err == nil && v > 0 {
		filters.SelectedRating = v
	}

	for _, raw := range strings.Split(q.Get("categories"), ",") {
		if id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
			filters.SelectedCategories[id] = true
		}
	}

	// Lecture buckets arrive as "min-max" keys, e.g. lectures=0-15,30-45.
	for _, raw := range strings.Split(q.Get("lectures"), ",") {
		parts := strings.SplitN(strings.TrimSpace(raw), "-", 2)
		if len(parts) != 2 {
			continue
		}
		min, errMin := strconv.Atoi(parts[0])
		max, errMax := strconv.Atoi(parts[1])
		if errMin == nil && errMax == nil && min <= max {
			filters.SelectedLectures = append(filters.SelectedLectures, models.LectureRange{Min: min, Max: max})
		}
	}

	if v, err := strconv.ParseFloat(q.Get("minPrice"), 64); err == nil && v >= 0 {
		filters.PriceRange.Min = v
	}
	if v, err := strconv.ParseFloat(q.Get("maxPrice"), 64); err == nil && v > 0 {
		filters.PriceRange.Max = v
	}

	switch models.SortKey(q.Get("sort")) {
	case models.SortRating:
		filters.SortBy = models.SortRating
	case models.SortPriceLow:
		filters.SortBy = models.SortPriceLow
	case models.SortPriceHigh:
		filters.SortBy = models.SortPriceHigh
	}

	filters.SearchTerm = strings.TrimSpace(q.Get("search"))
	return filters
}

func parsePagination(r *http.Request) (page, pageSize int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(q.Get("pageSize"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = defaultListPageSize
	}
	return page, pageSize
}
