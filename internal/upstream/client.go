package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the remote marketplace API. It is a thin transport
// wrapper: it attaches auth, enforces a bounded timeout and maps
// failures onto the error taxonomy, but holds no state of its own.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a marketplace API client rooted at baseURL,
// e.g. "http://byway.runasp.net/api".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// errorBody is the structured error shape the upstream uses for
// rejections. Validation failures additionally carry a field map.
type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// doRequest performs one HTTP request. token may be empty for public
// endpoints. A non-2xx status becomes an *APIError with the message
// extracted from the body when it is structured.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType, token string) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response for %s %s: %v", ErrNetwork, method, path, err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    extractMessage(respBody),
		}
	}

	return respBody, nil
}

// getJSON fetches a public endpoint and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.getJSONAuth(ctx, path, query, "", out)
}

// getJSONAuth is getJSON with a bearer token attached.
func (c *Client) getJSONAuth(ctx context.Context, path string, query url.Values, token string, out any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, query, nil, "", token)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", path, err)
	}
	return nil
}

// extractMessage pulls the user-facing message out of a structured
// error body, falling back to empty when the body is not JSON.
func extractMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return strings.TrimSpace(string(body))
	}
	if eb.Message != "" {
		return eb.Message
	}
	var parts []string
	for _, msgs := range eb.Errors {
		parts = append(parts, msgs...)
	}
	return strings.Join(parts, "; ")
}
