package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the failure taxonomy the storefront cares
// about. Call sites branch with errors.Is.
var (
	// ErrNetwork means the request never completed (DNS, connect,
	// timeout). The response body was never seen.
	ErrNetwork = errors.New("upstream unreachable")

	// ErrUnauthenticated is a 401: missing or expired token. The
	// gateway reacts by clearing the session.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound is a 404 on a specific-resource fetch.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyInCart is the upstream's duplicate-add rejection,
	// surfaced as a warning rather than a failure.
	ErrAlreadyInCart = errors.New("course already in cart")
)

// APIError is a non-2xx response with whatever structured message the
// upstream included. It unwraps to the matching sentinel so callers
// can use errors.Is without inspecting status codes.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream rejected request (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream rejected request (HTTP %d)", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}
