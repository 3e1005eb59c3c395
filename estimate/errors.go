package estimate

import (
	"errors"
	"fmt"
)

// ErrMissingBaseURL is returned by NewClient when no backend URL is configured.
var ErrMissingBaseURL = errors.New("estimate: base URL must not be empty")

// NetworkError means the request never produced an HTTP response:
// DNS, dial, TLS, connection reset or context cancellation.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("estimate: request to %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ServerError means the backend answered, but not with a usable estimate:
// a non-2xx status, or a success body without a justification.
type ServerError struct {
	StatusCode int
	URL        string
	Body       string
	Err        error
}

func (e *ServerError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("estimate: status %d from %s: %v", e.StatusCode, e.URL, e.Err)
	}
	return fmt.Sprintf("estimate: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *ServerError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *ServerError) HTTPStatusCode() int {
	return e.StatusCode
}

// errMalformedResponse is wrapped by ServerError when a 2xx body cannot be used.
var errMalformedResponse = errors.New("malformed response")

// IsNetworkError reports whether err (or anything it wraps) is a *NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsServerError reports whether err (or anything it wraps) is a *ServerError.
func IsServerError(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}
