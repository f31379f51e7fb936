package normalize

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byway-labs/byway-gateway/internal/models"
	"github.com/byway-labs/byway-gateway/internal/upstream"
)

func fixedMapper() *Mapper {
	now := func() time.Time { return time.Unix(1700000000, 0) }
	return NewMapperWithSeed(now, 42)
}

func TestCourseFieldReconciliation(t *testing.T) {
	m := fixedMapper()
	lookup := Lookup{
		Instructors: map[int64]string{9: "Ada"},
		Categories:  map[int64]string{1: "Dev"},
	}

	raw := upstream.RawCourse{
		ID:           5,
		Name:         "React Basics",
		Cost:         49.99,
		InstructorID: 9,
		CategoryID:   1,
		Rate:         4.5,
		Contents: []upstream.RawContent{
			{LecturesNumber: 3},
			{LecturesNumber: 2},
		},
	}

	course := m.Course(raw, lookup, 0)

	assert.Equal(t, "React Basics", course.Title)
	assert.Equal(t, "Ada", course.InstructorName)
	assert.Equal(t, "Dev", course.CategoryName)
	assert.Equal(t, 5, course.TotalLectures)
	assert.Equal(t, 49.99, course.Price)
	assert.Equal(t, 4.5, course.Rating)
	assert.False(t, course.SyntheticID)
}

func TestCourseFallbacks(t *testing.T) {
	m := fixedMapper()

	tests := []struct {
		name string
		raw  upstream.RawCourse
		want func(t *testing.T, c models.Course)
	}{
		{
			name: "title falls back to title field",
			raw:  upstream.RawCourse{ID: 1, Title: "Only Title"},
			want: func(t *testing.T, c models.Course) {
				assert.Equal(t, "Only Title", c.Title)
			},
		},
		{
			name: "unknown instructor when map misses",
			raw:  upstream.RawCourse{ID: 1, Name: "X", InstructorID: 77},
			want: func(t *testing.T, c models.Course) {
				assert.Equal(t, "Unknown Instructor", c.InstructorName)
			},
		},
		{
			name: "inline instructor name beats the default",
			raw:  upstream.RawCourse{ID: 1, Name: "X", InstructorID: 77, InstructorName: "Grace"},
			want: func(t *testing.T, c models.Course) {
				assert.Equal(t, "Grace", c.InstructorName)
			},
		},
		{
			name: "category defaults to General",
			raw:  upstream.RawCourse{ID: 1, Name: "X", CategoryID: 99},
			want: func(t *testing.T, c models.Course) {
				assert.Equal(t, "General", c.CategoryName)
			},
		},
		{
			name: "zero rating defaults to 4.5",
			raw:  upstream.RawCourse{ID: 1, Name: "X"},
			want: func(t *testing.T, c models.Course) {
				assert.Equal(t, 4.5, c.Rating)
			},
		},
		{
			name: "price falls back from cost to price field",
			raw:  upstream.RawCourse{ID: 1, Name: "X", Price: 12.5},
			want: func(t *testing.T, c models.Course) {
				assert.Equal(t, 12.5, c.Price)
			},
		},
		{
			name: "missing image gets placeholder embedding the name",
			raw:  upstream.RawCourse{ID: 1, Name: "Go In Depth"},
			want: func(t *testing.T, c models.Course) {
				assert.Contains(t, c.ImageURL, "placehold.co")
				assert.Contains(t, c.ImageURL, "Go+In+Dept")
			},
		},
		{
			name: "placeholder truncates multi-byte titles on rune boundaries",
			raw:  upstream.RawCourse{ID: 1, Name: "Программирование"},
			want: func(t *testing.T, c models.Course) {
				assert.Contains(t, c.ImageURL, url.QueryEscape("Программир"))
				assert.True(t, utf8.ValidString(c.ImageURL))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, m.Course(tt.raw, Lookup{}, 0))
		})
	}
}

func TestSyntheticIDs(t *testing.T) {
	m := fixedMapper()

	raw := []upstream.RawCourse{
		{Name: "A"},
		{Name: "B"},
	}
	courses := m.Courses(raw, Lookup{})

	require.Len(t, courses, 2)
	assert.True(t, courses[0].SyntheticID)
	assert.True(t, courses[1].SyntheticID)
	assert.NotEqual(t, courses[0].ID, courses[1].ID, "synthetic ids in one batch must not collide")
	assert.NotZero(t, courses[0].ID)
}

func TestReviewCountRange(t *testing.T) {
	m := fixedMapper()
	for i := 0; i < 200; i++ {
		c := m.Course(upstream.RawCourse{ID: 1, Name: "X"}, Lookup{}, 0)
		assert.GreaterOrEqual(t, c.ReviewCount, 10)
		assert.LessOrEqual(t, c.ReviewCount, 109)
	}
}

func TestLevelDecoding(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    models.Level
	}{
		{"string beginner", `{"level":"Beginner"}`, models.LevelBeginner},
		{"string expert", `{"level":"Expert"}`, models.LevelExpert},
		{"unrecognized string", `{"level":"Guru"}`, models.LevelAllLevels},
		{"integer", `{"level":2}`, models.LevelIntermediate},
		{"out of range integer", `{"level":9}`, models.LevelAllLevels},
		{"absent", `{}`, models.LevelAllLevels},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw upstream.RawCourse
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &raw))
			assert.Equal(t, tt.want, raw.Level)
		})
	}
}

func TestCaseInsensitiveID(t *testing.T) {
	// The upstream spells identifiers both "id" and "Id"; Go's JSON
	// matching is case-insensitive, which this relies on.
	var raw upstream.RawCategory
	require.NoError(t, json.Unmarshal([]byte(`{"Id":3,"Name":"Design"}`), &raw))

	m := fixedMapper()
	cat := m.Category(raw)
	assert.Equal(t, int64(3), cat.ID)
	assert.Equal(t, "Design", cat.Name)
}

func TestCartMapping(t *testing.T) {
	m := fixedMapper()

	cart := m.Cart(upstream.RawCart{
		Items: []upstream.RawCartItem{
			{CourseID: 5, CourseName: "React Basics", Price: 49.99, Level: models.LevelBeginner},
		},
		ItemCount: 1,
		SubTotal:  49.99,
		Tax:       7.5,
		Total:     57.49,
	})

	require.Len(t, cart.Items, 1)
	assert.Equal(t, "React Basics", cart.Items[0].Title)
	assert.Equal(t, "Unknown", cart.Items[0].InstructorName)
	assert.Equal(t, "Beginner", cart.Items[0].LevelName)
	assert.True(t, cart.TotalsConsistent())
}

func TestInstructorMapping(t *testing.T) {
	m := fixedMapper()

	inst := m.Instructor(upstream.RawInstructor{
		ID:       9,
		Name:     "Ada",
		JobTitle: models.JobBackendDeveloper,
		Rate:     4.8,
	})

	assert.Equal(t, "Backend Developer", inst.JobTitleName)
	assert.Equal(t, 4.8, inst.Rating)
	assert.Equal(t, "/images/instructor.png", inst.ImageURL)
}
