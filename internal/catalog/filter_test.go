package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byway-labs/byway-gateway/internal/models"
)

func course(id int64, title string, rating, price float64, categoryID int64, lectures int) models.Course {
	return models.Course{
		ID:            id,
		Title:         title,
		Rating:        rating,
		Price:         price,
		CategoryID:    categoryID,
		TotalLectures: lectures,
	}
}

func ids(courses []models.Course) []int64 {
	out := make([]int64, len(courses))
	for i, c := range courses {
		out[i] = c.ID
	}
	return out
}

func TestRatingAndPriceFilter(t *testing.T) {
	courses := []models.Course{
		course(1, "A", 4.5, 50, 0, 0),
		course(2, "B", 3, 20, 0, 0),
	}
	f := models.DefaultFilters()
	f.SelectedRating = 4
	f.PriceRange = models.PriceRange{Min: 0, Max: 100}

	visible := Apply(courses, f)

	require.Len(t, visible, 1)
	assert.Equal(t, int64(1), visible[0].ID)
}

func TestEmptyCategorySetIsNoOp(t *testing.T) {
	courses := []models.Course{
		course(1, "A", 4, 10, 7, 0),
		course(2, "B", 4, 10, 8, 0),
	}

	visible := Apply(courses, models.DefaultFilters())
	assert.Len(t, visible, 2)
}

func TestCategoryFilter(t *testing.T) {
	courses := []models.Course{
		course(1, "A", 4, 10, 7, 0),
		course(2, "B", 4, 10, 8, 0),
	}
	f := models.DefaultFilters()
	f.SelectedCategories = map[int64]bool{8: true}

	visible := Apply(courses, f)

	require.Len(t, visible, 1)
	assert.Equal(t, int64(2), visible[0].ID)
}

func TestLectureRangeFilter(t *testing.T) {
	courses := []models.Course{
		course(1, "A", 4, 10, 0, 5),
		course(2, "B", 4, 10, 0, 25),
		course(3, "C", 4, 10, 0, 60),
	}
	f := models.DefaultFilters()
	f.SelectedLectures = []models.LectureRange{
		{Min: 0, Max: 10},
		{Min: 50, Max: 100},
	}

	visible := Apply(courses, f)

	assert.Equal(t, []int64{3, 1}, ids(visible)) // latest sort, desc id
}

func TestSearchMatchesTitleInstructorCategory(t *testing.T) {
	courses := []models.Course{
		{ID: 1, Title: "React Basics", InstructorName: "Ada", CategoryName: "Dev", Rating: 4, Price: 10},
		{ID: 2, Title: "Cooking", InstructorName: "Bob", CategoryName: "Lifestyle", Rating: 4, Price: 10},
		{ID: 3, Title: "Go", InstructorName: "Adalbert", CategoryName: "Dev", Rating: 4, Price: 10},
	}

	tests := []struct {
		term string
		want []int64
	}{
		{"react", []int64{1}},
		{"ADA", []int64{3, 1}},
		{"dev", []int64{3, 1}},
		{"lifestyle", []int64{2}},
		{"nothing-matches", nil},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			f := models.DefaultFilters()
			f.SearchTerm = tt.term
			got := ids(Apply(courses, f))
			if tt.want == nil {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSortKeys(t *testing.T) {
	courses := []models.Course{
		course(1, "A", 3.0, 30, 0, 0),
		course(2, "B", 5.0, 10, 0, 0),
		course(3, "C", 4.0, 20, 0, 0),
	}

	tests := []struct {
		key  models.SortKey
		want []int64
	}{
		{models.SortLatest, []int64{3, 2, 1}},
		{models.SortRating, []int64{2, 3, 1}},
		{models.SortPriceLow, []int64{2, 3, 1}},
		{models.SortPriceHigh, []int64{1, 3, 2}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			f := models.DefaultFilters()
			f.SortBy = tt.key
			assert.Equal(t, tt.want, ids(Apply(courses, f)))
		})
	}
}

func TestSortIsStableAndDeterministic(t *testing.T) {
	// Two courses with equal rating keep input order under the rating
	// sort, and repeated application yields identical results. The
	// randomly generated review count must play no part.
	courses := []models.Course{
		{ID: 1, Rating: 4.0, Price: 10, ReviewCount: 90},
		{ID: 2, Rating: 4.0, Price: 10, ReviewCount: 11},
		{ID: 3, Rating: 4.0, Price: 10, ReviewCount: 55},
	}
	f := models.DefaultFilters()
	f.SortBy = models.SortRating

	first := ids(Apply(courses, f))
	second := ids(Apply(courses, f))

	assert.Equal(t, []int64{1, 2, 3}, first)
	assert.Equal(t, first, second)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	courses := []models.Course{
		course(1, "A", 3, 30, 0, 0),
		course(2, "B", 5, 10, 0, 0),
	}
	f := models.DefaultFilters()
	f.SortBy = models.SortRating

	Apply(courses, f)

	assert.Equal(t, []int64{1, 2}, ids(courses))
}
