package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/byway-labs/byway-gateway/internal/models"
)

// CourseQuery carries the server-side filters of GET /Courses/GetAll.
// Zero values are omitted from the query string.
type CourseQuery struct {
	PageNumber int
	PageSize   int
	Name       string
	CategoryID int64
	MinPrice   float64
	MaxPrice   float64
	Rating     float64
}

// CoursePage is one page of the paginated course listing.
type CoursePage struct {
	Data       []RawCourse `json:"data"`
	TotalCount int         `json:"totalCount"`
}

// ListCourses fetches one page of courses.
func (c *Client) ListCourses(ctx context.Context, q CourseQuery) (*CoursePage, error) {
	query := url.Values{}
	query.Set("pageNumber", strconv.Itoa(q.PageNumber))
	query.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.Name != "" {
		query.Set("name", q.Name)
	}
	if q.CategoryID != 0 {
		query.Set("categories", strconv.FormatInt(q.CategoryID, 10))
	}
	if q.MinPrice > 0 {
		query.Set("minPrice", strconv.FormatFloat(q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice > 0 {
		query.Set("maxPrice", strconv.FormatFloat(q.MaxPrice, 'f', -1, 64))
	}
	if q.Rating > 0 {
		query.Set("rating", strconv.FormatFloat(q.Rating, 'f', -1, 64))
	}

	var page CoursePage
	if err := c.getJSON(ctx, "/Courses/GetAll", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetCourse fetches a single course with its nested contents.
func (c *Client) GetCourse(ctx context.Context, id int64) (*RawCourse, error) {
	var course RawCourse
	if err := c.getJSON(ctx, fmt.Sprintf("/Courses/GetById/%d", id), nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// TopCourses fetches the upstream's top-10 course list.
func (c *Client) TopCourses(ctx context.Context) ([]RawCourse, error) {
	var courses []RawCourse
	if err := c.getJSON(ctx, "/Courses/GetTop10/Top10", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// CourseForm holds the multipart fields of course create/update. The
// upstream expects content sections as indexed fields
// (contents[0].name, contents[0].lecturesNumber, ...).
type CourseForm struct {
	ID            int64 // update only
	Name          string
	CategoryID    int64
	InstructorID  int64
	Level         models.Level
	TotalHours    float64
	Cost          float64
	Rate          float64
	Description   string
	Certification string
	Image         []byte // nil when updating without a new image
	ImageName     string
	Contents      []models.ContentSection
}

func (f CourseForm) encode(includeID bool) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"name":          f.Name,
		"categoryId":    strconv.FormatInt(f.CategoryID, 10),
		"instructorId":  strconv.FormatInt(f.InstructorID, 10),
		"level":         strconv.Itoa(int(f.Level)),
		"totalHours":    strconv.FormatFloat(f.TotalHours, 'f', -1, 64),
		"cost":          strconv.FormatFloat(f.Cost, 'f', -1, 64),
		"rate":          strconv.FormatFloat(f.Rate, 'f', -1, 64),
		"description":   f.Description,
		"certification": f.Certification,
	}
	if includeID {
		fields["id"] = strconv.FormatInt(f.ID, 10)
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	for i, section := range f.Contents {
		prefix := fmt.Sprintf("contents[%d]", i)
		if section.ID != 0 {
			if err := w.WriteField(prefix+".id", strconv.FormatInt(section.ID, 10)); err != nil {
				return nil, "", err
			}
		}
		if err := w.WriteField(prefix+".name", section.Name); err != nil {
			return nil, "", err
		}
		if err := w.WriteField(prefix+".lecturesNumber", strconv.Itoa(section.LecturesCount)); err != nil {
			return nil, "", err
		}
		if err := w.WriteField(prefix+".time", strconv.Itoa(section.Minutes)); err != nil {
			return nil, "", err
		}
	}

	if f.Image != nil {
		name := f.ImageName
		if name == "" {
			name = "course.jpg"
		}
		part, err := w.CreateFormFile("image", name)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := io.Copy(part, bytes.NewReader(f.Image)); err != nil {
			return nil, "", fmt.Errorf("failed to write image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// CreateCourse submits a new course as multipart form data.
func (c *Client) CreateCourse(ctx context.Context, token string, form CourseForm) (*RawCourse, error) {
	body, contentType, err := form.encode(false)
	if err != nil {
		return nil, err
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/Courses/Create", nil, body, contentType, token)
	if err != nil {
		return nil, err
	}
	var created RawCourse
	if err := json.Unmarshal(resp, &created); err != nil {
		return nil, fmt.Errorf("failed to unmarshal created course: %w", err)
	}
	return &created, nil
}

// UpdateCourse replaces an existing course.
func (c *Client) UpdateCourse(ctx context.Context, token string, id int64, form CourseForm) error {
	form.ID = id
	body, contentType, err := form.encode(true)
	if err != nil {
		return err
	}
	_, err = c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/Courses/Update/%d", id), nil, body, contentType, token)
	return err
}

// DeleteCourse removes a course.
func (c *Client) DeleteCourse(ctx context.Context, token string, id int64) error {
	_, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/Courses/Delete/%d", id), nil, nil, "", token)
	return err
}
