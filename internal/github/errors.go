package github

import (
	"errors"
	"fmt"
)

var (
	// ErrBadToken means the API rejected the credential (HTTP 401).
	ErrBadToken = errors.New("github: token was rejected")

	// ErrRateLimited means the API refused to serve more requests for
	// now (HTTP 403).
	ErrRateLimited = errors.New("github: rate limited")
)

// StatusError is any other non-2xx response from the API.
type StatusError struct {
	Status int
	Reason string
}

func (e *StatusError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("github: unexpected status %d", e.Status)
	}
	return fmt.Sprintf("github: unexpected status %d: %s", e.Status, e.Reason)
}

// DecodeError wraps a JSON payload we could not make sense of.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("github: decode response for %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
