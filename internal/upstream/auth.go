package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// LoginRequest is the credential payload for POST /Auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the payload for POST /Auth/register.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	UserName  string `json:"userName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	return c.postAuth(ctx, "/Auth/login", req)
}

// Register creates an account and logs it in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	return c.postAuth(ctx, "/Auth/register", req)
}

func (c *Client) postAuth(ctx context.Context, path string, payload any) (*AuthResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal auth request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, path, nil, bytes.NewReader(body), "application/json", "")
	if err != nil {
		return nil, err
	}

	var result AuthResult
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal auth response: %w", err)
	}
	return &result, nil
}
