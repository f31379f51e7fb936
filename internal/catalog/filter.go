package catalog

import (
	"sort"
	"strings"

	"github.com/byway-labs/byway-gateway/internal/models"
)

// Apply computes the visible course list for a filter state: every
// predicate clause must hold for a course to be included, then the
// survivors are sorted by the selected key. The input slice is never
// mutated; callers must not assume the result shares backing storage
// across calls.
func Apply(courses []models.Course, f models.FilterState) []models.Course {
	visible := make([]models.Course, 0, len(courses))
	for _, course := range courses {
		if matches(course, f) {
			visible = append(visible, course)
		}
	}

	sort.SliceStable(visible, less(f.SortBy, visible))
	return visible
}

func matches(c models.Course, f models.FilterState) bool {
	if f.SelectedRating != 0 && c.Rating < f.SelectedRating {
		return false
	}

	if len(f.SelectedCategories) > 0 && !f.SelectedCategories[c.CategoryID] {
		return false
	}

	if c.Price < f.PriceRange.Min || c.Price > f.PriceRange.Max {
		return false
	}

	if len(f.SelectedLectures) > 0 {
		inRange := false
		for _, r := range f.SelectedLectures {
			if c.TotalLectures >= r.Min && c.TotalLectures <= r.Max {
				inRange = true
				break
			}
		}
		if !inRange {
			return false
		}
	}

	if f.SearchTerm != "" {
		term := strings.ToLower(f.SearchTerm)
		if !strings.Contains(strings.ToLower(c.Title), term) &&
			!strings.Contains(strings.ToLower(c.InstructorName), term) &&
			!strings.Contains(strings.ToLower(c.CategoryName), term) {
			return false
		}
	}

	return true
}

func less(key models.SortKey, courses []models.Course) func(i, j int) bool {
	switch key {
	case models.SortRating:
		return func(i, j int) bool { return courses[i].Rating > courses[j].Rating }
	case models.SortPriceLow:
		return func(i, j int) bool { return courses[i].Price < courses[j].Price }
	case models.SortPriceHigh:
		return func(i, j int) bool { return courses[i].Price > courses[j].Price }
	default:
		// "latest": descending id as a recency proxy. Valid only while
		// the upstream assigns ids monotonically; there is no creation
		// timestamp to sort on.
		return func(i, j int) bool { return courses[i].ID > courses[j].ID }
	}
}
