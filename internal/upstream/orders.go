package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/byway-labs/byway-gateway/internal/models"
)

// Checkout submits the order. The payload is expected to be fully
// validated already; the upstream empties the cart on success.
func (c *Client) Checkout(ctx context.Context, token string, req models.CheckoutRequest) (*models.Order, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkout request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/Order/Checkout", nil, bytes.NewReader(body), "application/json", token)
	if err != nil {
		return nil, err
	}

	var order models.Order
	if len(resp) > 0 {
		if err := json.Unmarshal(resp, &order); err != nil {
			return nil, fmt.Errorf("failed to unmarshal order: %w", err)
		}
	}
	return &order, nil
}
