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

// InstructorQuery carries the filters of GET /Instructor/GetAll.
type InstructorQuery struct {
	Page     int
	PageSize int
	Name     string
	JobTitle *models.JobTitle
}

// InstructorPage is one page of the instructor listing.
type InstructorPage struct {
	Data  []RawInstructor `json:"data"`
	Total int             `json:"total"`
	Page  int             `json:"page"`
}

// ListInstructors fetches one page of instructors.
func (c *Client) ListInstructors(ctx context.Context, q InstructorQuery) (*InstructorPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.Name != "" {
		query.Set("name", q.Name)
	}
	if q.JobTitle != nil {
		query.Set("jobTitle", strconv.Itoa(int(*q.JobTitle)))
	}

	var page InstructorPage
	if err := c.getJSON(ctx, "/Instructor/GetAll", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetInstructor fetches a single instructor.
func (c *Client) GetInstructor(ctx context.Context, id int64) (*RawInstructor, error) {
	var instructor RawInstructor
	if err := c.getJSON(ctx, fmt.Sprintf("/Instructor/%d", id), nil, &instructor); err != nil {
		return nil, err
	}
	return &instructor, nil
}

// CountInstructorCourses returns how many courses an instructor teaches.
func (c *Client) CountInstructorCourses(ctx context.Context, id int64) (int, error) {
	var count int
	if err := c.getJSON(ctx, fmt.Sprintf("/Instructor/CountCourses/%d", id), nil, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// CountInstructorStudents returns how many students an instructor has.
func (c *Client) CountInstructorStudents(ctx context.Context, id int64) (int, error) {
	var count int
	if err := c.getJSON(ctx, fmt.Sprintf("/Instructor/CountStudents/%d", id), nil, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// TopInstructors fetches the upstream's top-10 instructor list.
func (c *Client) TopInstructors(ctx context.Context) ([]RawInstructor, error) {
	var instructors []RawInstructor
	if err := c.getJSON(ctx, "/Instructor/Top10", nil, &instructors); err != nil {
		return nil, err
	}
	return instructors, nil
}

// InstructorForm holds the multipart fields of instructor create/update.
type InstructorForm struct {
	ID          int64 // update only
	Name        string
	JobTitle    models.JobTitle
	Rate        float64
	Description string
	Image       []byte
	ImageName   string
}

func (f InstructorForm) encode(includeID bool) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if includeID {
		if err := w.WriteField("id", strconv.FormatInt(f.ID, 10)); err != nil {
			return nil, "", err
		}
	}
	fields := map[string]string{
		"name":        f.Name,
		"jobTitle":    strconv.Itoa(int(f.JobTitle)),
		"rate":        strconv.FormatFloat(f.Rate, 'f', -1, 64),
		"description": f.Description,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	if f.Image != nil {
		name := f.ImageName
		if name == "" {
			name = "instructor.jpg"
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

// CreateInstructor submits a new instructor as multipart form data.
func (c *Client) CreateInstructor(ctx context.Context, token string, form InstructorForm) (*RawInstructor, error) {
	body, contentType, err := form.encode(false)
	if err != nil {
		return nil, err
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/Instructor", nil, body, contentType, token)
	if err != nil {
		return nil, err
	}
	var created RawInstructor
	if len(resp) > 0 {
		if err := json.Unmarshal(resp, &created); err != nil {
			return nil, fmt.Errorf("failed to unmarshal created instructor: %w", err)
		}
	}
	return &created, nil
}

// UpdateInstructor replaces an existing instructor.
func (c *Client) UpdateInstructor(ctx context.Context, token string, id int64, form InstructorForm) error {
	form.ID = id
	body, contentType, err := form.encode(true)
	if err != nil {
		return err
	}
	_, err = c.doRequest(ctx, http.MethodPut, "/Instructor", nil, body, contentType, token)
	return err
}

// DeleteInstructor removes an instructor.
func (c *Client) DeleteInstructor(ctx context.Context, token string, id int64) error {
	_, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/Instructor/%d", id), nil, nil, "", token)
	return err
}
