package client

import (
	"errors"
	"fmt"
)

// Error taxonomy for API failures. Callers branch with errors.Is; the
// wrapped message carries the server's own wording.
var (
	// ErrAuth marks rejected credentials or a missing/expired token.
	ErrAuth = errors.New("invalid credentials")
	// ErrConflict marks duplicate registration or an already-owned book.
	ErrConflict = errors.New("conflict")
	// ErrAuthorization marks an action without entitlement, such as
	// downloading an unpurchased book.
	ErrAuthorization = errors.New("not authorized")
	// ErrValidation marks malformed input rejected by the server.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a missing book or order.
	ErrNotFound = errors.New("not found")
	// ErrNetwork marks a request that never produced a server response.
	ErrNetwork = errors.New("network error")
	// ErrVerification marks a payment confirmation call that failed.
	ErrVerification = errors.New("payment verification failed")
)

// APIError carries the HTTP status and the server's detail message.
type APIError struct {
	StatusCode int
	Detail     string
	kind       error
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

// Unwrap lets errors.Is match the taxonomy sentinel for the status.
func (e *APIError) Unwrap() error {
	return e.kind
}

func newAPIError(statusCode int, detail string) *APIError {
	e := &APIError{StatusCode: statusCode, Detail: detail}
	switch statusCode {
	case 400:
		e.kind = ErrValidation
	case 401:
		e.kind = ErrAuth
	case 403:
		e.kind = ErrAuthorization
	case 404:
		e.kind = ErrNotFound
	case 409:
		e.kind = ErrConflict
	}
	return e
}
