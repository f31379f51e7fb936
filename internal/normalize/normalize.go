// Package normalize reconciles the upstream API's inconsistent field
// spellings into the single canonical shape the rest of the gateway
// works with. Every mapping is a documented fallback chain: first
// non-zero value wins, with a literal default at the end.
package normalize

import (
	"fmt"
	"math/rand"
	"net/url"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/byway-labs/byway-gateway/internal/models"
	"github.com/byway-labs/byway-gateway/internal/upstream"
)

const (
	unknownInstructor = "Unknown Instructor"
	defaultCategory   = "General"
	defaultRating     = 4.5
	instructorImage   = "/images/instructor.png"
)

// Lookup carries the id→name maps required to resolve course
// references. Both maps may be empty; resolution then degrades to the
// defaults instead of failing.
type Lookup struct {
	Instructors map[int64]string
	Categories  map[int64]string
}

// Mapper converts raw upstream payloads into canonical models. The
// clock and RNG are injectable so tests stay deterministic; the RNG
// feeds review counts only and must never influence ordering.
type Mapper struct {
	mu   sync.Mutex
	now  func() time.Time
	rand *rand.Rand
}

// NewMapper creates a mapper with the wall clock and a seeded RNG.
func NewMapper() *Mapper {
	return &Mapper{
		now:  time.Now,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewMapperWithSeed creates a mapper with a fixed clock and RNG seed.
func NewMapperWithSeed(now func() time.Time, seed int64) *Mapper {
	return &Mapper{
		now:  now,
		rand: rand.New(rand.NewSource(seed)),
	}
}

// Course maps one raw course. index disambiguates synthetic ids when
// several courses in the same payload arrive without identifiers.
func (m *Mapper) Course(raw upstream.RawCourse, lookup Lookup, index int) models.Course {
	title := firstString(raw.Name, raw.Title)

	instructorName := lookup.Instructors[raw.InstructorID]
	if instructorName == "" {
		instructorName = firstString(raw.InstructorName, unknownInstructor)
	}

	categoryName := lookup.Categories[raw.CategoryID]
	if categoryName == "" {
		categoryName = defaultCategory
	}

	rating := firstFloat(raw.Rate, raw.Rating)
	if rating == 0 {
		rating = defaultRating
	}

	course := models.Course{
		ID:             raw.ID,
		Title:          title,
		InstructorID:   raw.InstructorID,
		InstructorName: instructorName,
		CategoryID:     raw.CategoryID,
		CategoryName:   categoryName,
		Price:          firstFloat(raw.Cost, raw.Price),
		Rating:         rating,
		ReviewCount:    m.reviewCount(),
		TotalHours:     raw.TotalHours,
		Level:          raw.Level,
		LevelName:      raw.Level.String(),
		ImageURL:       firstString(raw.ImageURL, coursePlaceholder(title)),
		Description:    raw.Description,
		Certification:  raw.Certification,
		Contents:       contents(raw.Contents),
	}
	course.TotalLectures = totalLectures(course.Contents)

	if course.ID == 0 {
		course.ID = m.syntheticID(index)
		course.SyntheticID = true
	}
	return course
}

// Courses maps a raw course slice, preserving order.
func (m *Mapper) Courses(raw []upstream.RawCourse, lookup Lookup) []models.Course {
	courses := make([]models.Course, len(raw))
	for i, rc := range raw {
		courses[i] = m.Course(rc, lookup, i)
	}
	return courses
}

// Instructor maps one raw instructor.
func (m *Mapper) Instructor(raw upstream.RawInstructor) models.Instructor {
	return models.Instructor{
		ID:           raw.ID,
		Name:         raw.Name,
		JobTitle:     raw.JobTitle,
		JobTitleName: raw.JobTitle.String(),
		Rating:       firstFloat(raw.Rate, raw.Rating),
		Description:  raw.Description,
		ImageURL:     firstString(raw.ImageURL, instructorImage),
	}
}

// Instructors maps a raw instructor slice, preserving order.
func (m *Mapper) Instructors(raw []upstream.RawInstructor) []models.Instructor {
	instructors := make([]models.Instructor, len(raw))
	for i, ri := range raw {
		instructors[i] = m.Instructor(ri)
	}
	return instructors
}

// Category maps one raw category.
func (m *Mapper) Category(raw upstream.RawCategory) models.Category {
	return models.Category{
		ID:       raw.ID,
		Name:     firstString(raw.Name, raw.Title),
		ImageURL: raw.ImageURL,
	}
}

// Categories maps a raw category slice, preserving order.
func (m *Mapper) Categories(raw []upstream.RawCategory) []models.Category {
	categories := make([]models.Category, len(raw))
	for i, rc := range raw {
		categories[i] = m.Category(rc)
	}
	return categories
}

// TopCategory maps the PascalCase top-category shape.
func (m *Mapper) TopCategory(raw upstream.RawTopCategory) models.Category {
	return models.Category{
		ID:          raw.CategoryID,
		Name:        raw.CategoryName,
		ImageURL:    raw.ImageURL,
		CourseCount: raw.CoursesCount,
	}
}

// Cart maps the raw cart envelope, keeping the server-derived totals
// untouched.
func (m *Mapper) Cart(raw upstream.RawCart) models.Cart {
	items := make([]models.CartItem, len(raw.Items))
	for i, ri := range raw.Items {
		items[i] = models.CartItem{
			CourseID:       ri.CourseID,
			Title:          ri.CourseName,
			InstructorName: firstString(ri.InstructorName, "Unknown"),
			Price:          ri.Price,
			ImageURL:       firstString(ri.ImageURL, cartPlaceholder(ri.CourseName)),
			TotalHours:     ri.TotalHours,
			Level:          ri.Level,
			LevelName:      ri.Level.String(),
		}
	}
	return models.Cart{
		Items:     items,
		ItemCount: raw.ItemCount,
		SubTotal:  raw.SubTotal,
		Tax:       raw.Tax,
		Discount:  raw.Discount,
		Total:     raw.Total,
	}
}

// syntheticID builds a temporary id for a payload that arrived without
// one, derived from the current time plus the slice index so ids in
// the same batch never collide. It keeps list keys unique; it is not a
// handle the upstream will recognize.
func (m *Mapper) syntheticID(index int) int64 {
	return m.now().UnixMilli()*1000 + int64(index)
}

func (m *Mapper) reviewCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rand.Intn(100) + 10
}

func contents(raw []upstream.RawContent) []models.ContentSection {
	sections := make([]models.ContentSection, len(raw))
	for i, rc := range raw {
		sections[i] = models.ContentSection{
			ID:            rc.ID,
			Name:          rc.Name,
			LecturesCount: rc.LecturesNumber,
			Minutes:       rc.Time,
		}
	}
	return sections
}

func totalLectures(sections []models.ContentSection) int {
	total := 0
	for _, s := range sections {
		total += s.LecturesCount
	}
	return total
}

func coursePlaceholder(title string) string {
	short := truncateRunes(title, 10)
	if short == "" {
		short = "Course"
	}
	return fmt.Sprintf("https://placehold.co/400x225/3b82f6/ffffff?text=%s", url.QueryEscape(short))
}

func cartPlaceholder(title string) string {
	short := truncateRunes(title, 3)
	if short == "" {
		short = "C"
	}
	return fmt.Sprintf("https://placehold.co/80x80/2f3337/ffffff?text=%s", url.QueryEscape(short))
}

// truncateRunes cuts s to at most n runes, never splitting a UTF-8
// sequence.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstFloat(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
