// Package catalog owns the in-memory catalog: courses, categories,
// instructors and the derived top lists, together with the filter
// engine that computes visible course lists. Fetching is organized as
// an explicit staged pipeline so the ordering dependencies between
// entity types are visible instead of incidental.
package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/byway-labs/byway-gateway/internal/models"
	"github.com/byway-labs/byway-gateway/internal/normalize"
	"github.com/byway-labs/byway-gateway/internal/upstream"
)

// Stage names one step of the catalog load pipeline.
type Stage string

const (
	StageIdle                Stage = "idle"
	StageLoadingCategories   Stage = "loading_categories"
	StageLoadingInstructors  Stage = "loading_instructors"
	StageLoadingCourses      Stage = "loading_courses"
	StageLoadingDerivedLists Stage = "loading_derived"
	StageReady               Stage = "ready"
)

// maxCoursePages bounds the sequential pagination loop. It is a
// defensive guard against a runaway loop when the upstream misreports
// totalCount, not a correctness mechanism.
const maxCoursePages = 10

// lookupPageSize is the page size used for the categories and
// instructors lookups, which are fetched in a single large page.
const lookupPageSize = 100

// Notifier receives the non-blocking failure notifications the
// pipeline emits instead of halting.
type Notifier interface {
	Publish(level, message string)
}

// Config tunes the controller.
type Config struct {
	// PageSize is the course pagination page size.
	PageSize int
}

// Controller owns the catalog state. All fields behind mu; readers
// get snapshots, never live slices.
type Controller struct {
	client   *upstream.Client
	mapper   *normalize.Mapper
	notifier Notifier
	pageSize int

	mu             sync.RWMutex
	stage          Stage
	isLoading      bool
	everReady      bool
	courses        []models.Course
	categories     []models.Category
	instructors    []models.Instructor
	topCourses     []models.Course
	topInstructors []models.Instructor
	totalCourses   int
	refreshedAt    time.Time

	// topDeps records the dependency counts observed on the last
	// pipeline run. The top lists are re-fetched when a dependency
	// count transitions from zero to nonzero, not on unrelated
	// changes.
	topDeps struct {
		categories  int
		instructors int
		fetched     bool
	}
}

// Snapshot is a read-only copy of the catalog state.
type Snapshot struct {
	Stage          Stage               `json:"stage"`
	IsLoading      bool                `json:"isLoading"`
	Courses        []models.Course     `json:"courses"`
	Categories     []models.Category   `json:"categories"`
	Instructors    []models.Instructor `json:"instructors"`
	TopCourses     []models.Course     `json:"topCourses"`
	TopInstructors []models.Instructor `json:"topInstructors"`
	TotalCourses   int                 `json:"totalCourses"`
	RefreshedAt    time.Time           `json:"refreshedAt"`
}

// NewController creates an idle controller.
func NewController(client *upstream.Client, mapper *normalize.Mapper, notifier Notifier, cfg Config) *Controller {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	return &Controller{
		client:   client,
		mapper:   mapper,
		notifier: notifier,
		pageSize: pageSize,
		stage:    StageIdle,
	}
}

// Refresh runs the full pipeline: categories and instructors first
// (their name maps feed course normalization), then paginated courses,
// then the derived top lists. A failed stage empties its list,
// publishes a notification and lets the rest of the pipeline proceed
// degraded. Only context cancellation aborts the pipeline. At most one
// pipeline runs at a time; a call that finds one in flight returns
// without doing anything, so interleaved runs can never publish a
// snapshot mixing two pipelines.
func (c *Controller) Refresh(ctx context.Context) error {
	if !c.beginRefresh() {
		slog.Debug("catalog refresh already running, skipping")
		return nil
	}
	defer c.endRefresh()

	c.setStage(StageLoadingCategories)
	categories := c.fetchCategories(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	c.setStage(StageLoadingInstructors)
	instructors := c.fetchInstructors(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.categories = categories
	c.instructors = instructors
	c.mu.Unlock()

	c.setStage(StageLoadingCourses)
	courses, total := c.fetchAllCourses(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.courses = courses
	c.totalCourses = total
	c.refreshedAt = time.Now().UTC()
	c.mu.Unlock()

	c.setStage(StageLoadingDerivedLists)
	c.maybeRefreshTopLists(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	c.setStage(StageReady)
	return nil
}

// fetchCategories loads the category lookup. On failure the list is
// empty and name resolution degrades to "General".
func (c *Controller) fetchCategories(ctx context.Context) []models.Category {
	raw, err := c.client.ListCategories(ctx, 1, lookupPageSize)
	if err != nil {
		slog.Error("failed to fetch categories", "error", err)
		c.notifier.Publish("error", "Failed to load categories")
		return []models.Category{}
	}
	return c.mapper.Categories(raw)
}

// fetchInstructors loads the instructor lookup. On failure the list is
// empty and name resolution degrades to "Unknown Instructor".
func (c *Controller) fetchInstructors(ctx context.Context) []models.Instructor {
	page, err := c.client.ListInstructors(ctx, upstream.InstructorQuery{Page: 1, PageSize: lookupPageSize})
	if err != nil {
		slog.Error("failed to fetch instructors", "error", err)
		c.notifier.Publish("error", "Failed to load instructors")
		return []models.Instructor{}
	}
	return c.mapper.Instructors(page.Data)
}

// fetchAllCourses accumulates all course pages sequentially: keep
// going while the accumulated count is below the server-reported total
// and the last page was non-empty, hard-stopping at maxCoursePages.
func (c *Controller) fetchAllCourses(ctx context.Context) ([]models.Course, int) {
	var raw []upstream.RawCourse
	totalCount := 0

	for pageNum := 1; pageNum <= maxCoursePages; pageNum++ {
		page, err := c.client.ListCourses(ctx, upstream.CourseQuery{
			PageNumber: pageNum,
			PageSize:   c.pageSize,
		})
		if err != nil {
			slog.Error("failed to fetch courses", "page", pageNum, "error", err)
			c.notifier.Publish("error", "Failed to load courses")
			return []models.Course{}, 0
		}

		raw = append(raw, page.Data...)
		totalCount = page.TotalCount
		if totalCount == 0 {
			totalCount = len(raw)
		}

		if len(raw) >= totalCount || len(page.Data) == 0 {
			break
		}
		if pageNum == maxCoursePages {
			slog.Warn("stopping course pagination at page cap",
				"pages", maxCoursePages,
				"accumulated", len(raw),
				"total_count", totalCount,
			)
		}
	}

	return c.mapper.Courses(raw, c.lookup()), totalCount
}

// maybeRefreshTopLists fetches the derived top lists when both
// dependencies have resolved to nonempty lists and a dependency count
// has transitioned from zero since the last pipeline run. The observed
// counts are recorded on every run, skips included, so a dependency
// that drops to zero and later recovers triggers a re-fetch.
func (c *Controller) maybeRefreshTopLists(ctx context.Context) {
	c.mu.RLock()
	catCount := len(c.categories)
	instCount := len(c.instructors)
	deps := c.topDeps
	c.mu.RUnlock()

	defer func() {
		c.mu.Lock()
		c.topDeps.categories = catCount
		c.topDeps.instructors = instCount
		c.mu.Unlock()
	}()

	if catCount == 0 || instCount == 0 {
		slog.Debug("skipping top lists, dependencies unresolved",
			"categories", catCount, "instructors", instCount)
		return
	}
	if deps.fetched && deps.categories > 0 && deps.instructors > 0 {
		return
	}

	lookup := c.lookup()

	var topCourses []models.Course
	var topInstructors []models.Instructor

	var eg errgroup.Group
	eg.Go(func() error {
		raw, err := c.client.TopCourses(ctx)
		if err != nil {
			slog.Error("failed to fetch top courses", "error", err)
			c.notifier.Publish("error", "Failed to load top courses")
			topCourses = []models.Course{}
			return nil
		}
		topCourses = c.mapper.Courses(raw, lookup)
		return nil
	})
	eg.Go(func() error {
		raw, err := c.client.TopInstructors(ctx)
		if err != nil {
			slog.Error("failed to fetch top instructors", "error", err)
			c.notifier.Publish("error", "Failed to load top instructors")
			topInstructors = []models.Instructor{}
			return nil
		}
		topInstructors = c.mapper.Instructors(raw)
		return nil
	})
	_ = eg.Wait()

	c.mu.Lock()
	c.topCourses = topCourses
	c.topInstructors = topInstructors
	c.topDeps.fetched = true
	c.mu.Unlock()
}

// lookup builds the id→name maps from current state.
func (c *Controller) lookup() normalize.Lookup {
	c.mu.RLock()
	defer c.mu.RUnlock()

	instructors := make(map[int64]string, len(c.instructors))
	for _, inst := range c.instructors {
		instructors[inst.ID] = inst.Name
	}
	categories := make(map[int64]string, len(c.categories))
	for _, cat := range c.categories {
		categories[cat.ID] = cat.Name
	}
	return normalize.Lookup{Instructors: instructors, Categories: categories}
}

// Snapshot returns a copy of the current catalog state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		Stage:          c.stage,
		IsLoading:      c.isLoading,
		Courses:        append([]models.Course(nil), c.courses...),
		Categories:     append([]models.Category(nil), c.categories...),
		Instructors:    append([]models.Instructor(nil), c.instructors...),
		TopCourses:     append([]models.Course(nil), c.topCourses...),
		TopInstructors: append([]models.Instructor(nil), c.topInstructors...),
		TotalCourses:   c.totalCourses,
		RefreshedAt:    c.refreshedAt,
	}
}

// Stage returns the current pipeline stage.
func (c *Controller) Stage() Stage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stage
}

// HasLoaded reports whether the pipeline has completed at least once.
// It stays true while later refreshes cycle through the loading
// stages.
func (c *Controller) HasLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.everReady
}

// FilteredCourses applies the filter engine to the current course
// list.
func (c *Controller) FilteredCourses(f models.FilterState) []models.Course {
	c.mu.RLock()
	courses := append([]models.Course(nil), c.courses...)
	c.mu.RUnlock()

	return Apply(courses, f)
}

// CourseByID fetches one course fresh from the upstream (detail pages
// need the nested contents) and normalizes it against the current
// lookup maps.
func (c *Controller) CourseByID(ctx context.Context, id int64) (models.Course, error) {
	raw, err := c.client.GetCourse(ctx, id)
	if err != nil {
		return models.Course{}, err
	}
	return c.mapper.Course(*raw, c.lookup(), 0), nil
}

func (c *Controller) setStage(stage Stage) {
	c.mu.Lock()
	c.stage = stage
	if stage == StageReady {
		c.everReady = true
	}
	c.mu.Unlock()
	slog.Debug("catalog stage", "stage", string(stage))
}

// beginRefresh claims the pipeline, failing when one is already in
// flight.
func (c *Controller) beginRefresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isLoading {
		return false
	}
	c.isLoading = true
	return true
}

func (c *Controller) endRefresh() {
	c.mu.Lock()
	c.isLoading = false
	c.mu.Unlock()
}
