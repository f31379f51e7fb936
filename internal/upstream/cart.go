package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// GetCart fetches the caller's cart. Requires auth.
func (c *Client) GetCart(ctx context.Context, token string) (*RawCart, error) {
	var cart RawCart
	if err := c.getJSONAuth(ctx, "/Cart", nil, token, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddToCart adds a course to the caller's cart. A duplicate add is
// reported as ErrAlreadyInCart so callers can downgrade it to a
// warning.
func (c *Client) AddToCart(ctx context.Context, token string, courseID int64) error {
	_, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/Cart/add/%d", courseID), nil, nil, "", token)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && strings.Contains(apiErr.Message, "already in cart") {
			return ErrAlreadyInCart
		}
		return err
	}
	return nil
}

// RemoveFromCart removes a course from the caller's cart.
func (c *Client) RemoveFromCart(ctx context.Context, token string, courseID int64) error {
	_, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/Cart/remove/%d", courseID), nil, nil, "", token)
	return err
}
