package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byway-labs/byway-gateway/internal/normalize"
	"github.com/byway-labs/byway-gateway/internal/upstream"
)

type stubNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *stubNotifier) Publish(level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, level+": "+message)
}

func (n *stubNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

// fakeUpstream serves the marketplace endpoints the controller hits.
type fakeUpstream struct {
	mu           sync.Mutex
	courseCalls  int
	topCalls     int
	failCourses  bool
	failInstr    bool
	totalCourses int
	pageCourses  func(pageNumber, pageSize int) []map[string]any
}

func (f *fakeUpstream) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/Category/GetAll", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": 1, "name": "Dev"}},
		})
	})

	mux.HandleFunc("/Instructor/GetAll", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		fail := f.failInstr
		f.mu.Unlock()
		if fail {
			http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data":  []map[string]any{{"id": 9, "name": "Ada"}},
			"total": 1,
			"page":  1,
		})
	})

	mux.HandleFunc("/Courses/GetAll", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.courseCalls++
		failCourses := f.failCourses
		f.mu.Unlock()

		if failCourses {
			http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
			return
		}

		pageNumber, _ := strconv.Atoi(r.URL.Query().Get("pageNumber"))
		pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
		json.NewEncoder(w).Encode(map[string]any{
			"data":       f.pageCourses(pageNumber, pageSize),
			"totalCount": f.totalCourses,
		})
	})

	mux.HandleFunc("/Courses/GetTop10/Top10", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.topCalls++
		f.mu.Unlock()
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": 5, "name": "React Basics", "cost": 49.99, "instructorId": 9, "categoryId": 1, "rate": 4.5},
		})
	})

	mux.HandleFunc("/Instructor/Top10", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": 9, "name": "Ada", "jobTitle": 1, "rate": 4.8},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeUpstream) setFailInstr(v bool) {
	f.mu.Lock()
	f.failInstr = v
	f.mu.Unlock()
}

func singleCoursePage(pageNumber, pageSize int) []map[string]any {
	if pageNumber > 1 {
		return nil
	}
	return []map[string]any{
		{
			"id": 5, "name": "React Basics", "cost": 49.99,
			"instructorId": 9, "categoryId": 1, "rate": 4.5,
			"contents": []map[string]any{
				{"lecturesNumber": 3},
				{"lecturesNumber": 2},
			},
		},
	}
}

func newTestController(t *testing.T, f *fakeUpstream, pageSize int) (*Controller, *stubNotifier) {
	t.Helper()
	srv := f.server(t)
	client := upstream.NewClient(srv.URL, upstream.WithTimeout(5*time.Second))
	mapper := normalize.NewMapperWithSeed(time.Now, 1)
	notifier := &stubNotifier{}
	return NewController(client, mapper, notifier, Config{PageSize: pageSize}), notifier
}

func TestRefreshEndToEnd(t *testing.T) {
	fake := &fakeUpstream{totalCourses: 1, pageCourses: singleCoursePage}
	ctrl, notifier := newTestController(t, fake, 50)

	require.NoError(t, ctrl.Refresh(context.Background()))

	snap := ctrl.Snapshot()
	assert.Equal(t, StageReady, snap.Stage)
	assert.False(t, snap.IsLoading)

	require.Len(t, snap.Courses, 1)
	c := snap.Courses[0]
	assert.Equal(t, "React Basics", c.Title)
	assert.Equal(t, "Ada", c.InstructorName)
	assert.Equal(t, "Dev", c.CategoryName)
	assert.Equal(t, 5, c.TotalLectures)

	require.Len(t, snap.TopCourses, 1)
	assert.Equal(t, "Ada", snap.TopCourses[0].InstructorName)
	require.Len(t, snap.TopInstructors, 1)
	assert.Equal(t, "Backend Developer", snap.TopInstructors[0].JobTitleName)

	assert.Zero(t, notifier.count())
}

func TestPaginationRequestCount(t *testing.T) {
	// 120 courses at page size 50 needs ceil(120/50) = 3 requests.
	fake := &fakeUpstream{totalCourses: 120}
	fake.pageCourses = func(pageNumber, pageSize int) []map[string]any {
		remaining := 120 - (pageNumber-1)*pageSize
		if remaining <= 0 {
			return nil
		}
		if remaining > pageSize {
			remaining = pageSize
		}
		page := make([]map[string]any, remaining)
		for i := range page {
			page[i] = map[string]any{
				"id":   (pageNumber-1)*pageSize + i + 1,
				"name": fmt.Sprintf("Course %d", i),
			}
		}
		return page
	}
	ctrl, _ := newTestController(t, fake, 50)

	require.NoError(t, ctrl.Refresh(context.Background()))

	assert.Equal(t, 3, fake.courseCalls)
	assert.Len(t, ctrl.Snapshot().Courses, 120)
}

func TestPaginationHardCap(t *testing.T) {
	// The upstream claims 1000 courses; at page size 10 the loop must
	// stop at 10 pages with min(1000, 10*10) = 100 accumulated.
	fake := &fakeUpstream{totalCourses: 1000}
	fake.pageCourses = func(pageNumber, pageSize int) []map[string]any {
		page := make([]map[string]any, pageSize)
		for i := range page {
			page[i] = map[string]any{
				"id":   (pageNumber-1)*pageSize + i + 1,
				"name": "Course",
			}
		}
		return page
	}
	ctrl, _ := newTestController(t, fake, 10)

	require.NoError(t, ctrl.Refresh(context.Background()))

	assert.Equal(t, 10, fake.courseCalls)
	assert.Len(t, ctrl.Snapshot().Courses, 100)
}

func TestInstructorFailureDegradesGracefully(t *testing.T) {
	fake := &fakeUpstream{totalCourses: 1, pageCourses: singleCoursePage, failInstr: true}
	ctrl, notifier := newTestController(t, fake, 50)

	require.NoError(t, ctrl.Refresh(context.Background()))

	snap := ctrl.Snapshot()
	assert.Equal(t, StageReady, snap.Stage)
	assert.Empty(t, snap.Instructors)

	// Courses still load, with name resolution degraded.
	require.Len(t, snap.Courses, 1)
	assert.Equal(t, "Unknown Instructor", snap.Courses[0].InstructorName)

	// Top lists are gated on instructors having resolved nonempty.
	assert.Empty(t, snap.TopCourses)
	assert.Zero(t, fake.topCalls)

	assert.GreaterOrEqual(t, notifier.count(), 1)
}

func TestCourseFailureEmptiesListAndNotifies(t *testing.T) {
	fake := &fakeUpstream{failCourses: true}
	ctrl, notifier := newTestController(t, fake, 50)

	require.NoError(t, ctrl.Refresh(context.Background()))

	snap := ctrl.Snapshot()
	assert.Empty(t, snap.Courses)
	assert.Zero(t, snap.TotalCourses)
	assert.GreaterOrEqual(t, notifier.count(), 1)
}

func TestTopListsNotRefetchedWhenDepsUnchanged(t *testing.T) {
	fake := &fakeUpstream{totalCourses: 1, pageCourses: singleCoursePage}
	ctrl, _ := newTestController(t, fake, 50)

	require.NoError(t, ctrl.Refresh(context.Background()))
	require.NoError(t, ctrl.Refresh(context.Background()))

	// Dependency counts never transitioned back through zero, so one
	// top-list fetch is enough.
	assert.Equal(t, 1, fake.topCalls)
}

func TestTopListsRefetchAfterDependencyRecovers(t *testing.T) {
	fake := &fakeUpstream{totalCourses: 1, pageCourses: singleCoursePage}
	ctrl, _ := newTestController(t, fake, 50)

	require.NoError(t, ctrl.Refresh(context.Background()))
	require.Equal(t, 1, fake.topCalls)

	// Instructors drop out for a refresh, then recover. The recovery
	// is a zero -> nonzero transition, so the top lists must be
	// fetched again.
	fake.setFailInstr(true)
	require.NoError(t, ctrl.Refresh(context.Background()))
	assert.Empty(t, ctrl.Snapshot().Instructors)
	require.Equal(t, 1, fake.topCalls)

	fake.setFailInstr(false)
	require.NoError(t, ctrl.Refresh(context.Background()))
	assert.Equal(t, 2, fake.topCalls)
	assert.Len(t, ctrl.Snapshot().TopCourses, 1)
}

func TestRefreshSkipsWhileAnotherRunIsInFlight(t *testing.T) {
	fake := &fakeUpstream{totalCourses: 1, pageCourses: singleCoursePage}
	ctrl, _ := newTestController(t, fake, 50)

	require.True(t, ctrl.beginRefresh())
	defer ctrl.endRefresh()

	// The claimed pipeline makes a second call a no-op: no requests,
	// no stage movement.
	require.NoError(t, ctrl.Refresh(context.Background()))
	assert.Zero(t, fake.courseCalls)
	assert.Equal(t, StageIdle, ctrl.Stage())
}

func TestHasLoadedSurvivesLaterRefreshes(t *testing.T) {
	fake := &fakeUpstream{totalCourses: 1, pageCourses: singleCoursePage}
	ctrl, _ := newTestController(t, fake, 50)

	assert.False(t, ctrl.HasLoaded())
	require.NoError(t, ctrl.Refresh(context.Background()))
	assert.True(t, ctrl.HasLoaded())

	// A degraded refresh does not revoke readiness.
	fake.setFailInstr(true)
	require.NoError(t, ctrl.Refresh(context.Background()))
	assert.True(t, ctrl.HasLoaded())
}

func TestRefreshHonorsCancellation(t *testing.T) {
	fake := &fakeUpstream{totalCourses: 1, pageCourses: singleCoursePage}
	ctrl, _ := newTestController(t, fake, 50)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ctrl.Refresh(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
