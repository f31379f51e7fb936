package upstream

import (
	"context"
	"net/url"
	"strconv"
)

// ListCategories fetches one page of categories.
func (c *Client) ListCategories(ctx context.Context, page, pageSize int) ([]RawCategory, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("pageSize", strconv.Itoa(pageSize))

	var envelope struct {
		Data []RawCategory `json:"data"`
	}
	if err := c.getJSON(ctx, "/Category/GetAll", query, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// CountCategories returns the total category count.
func (c *Client) CountCategories(ctx context.Context) (int, error) {
	var count int
	if err := c.getJSON(ctx, "/Category/Count", nil, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// TopCategories fetches the categories with the most courses.
func (c *Client) TopCategories(ctx context.Context, top int) ([]RawTopCategory, error) {
	query := url.Values{}
	query.Set("top", strconv.Itoa(top))

	var categories []RawTopCategory
	if err := c.getJSON(ctx, "/Category/TopCategoriesByCourses", query, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
