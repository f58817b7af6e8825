package assist

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"

	openai "github.com/openai/openai-go/v3"
)

// ErrorKind is the closed set of failure categories for assist calls.
// Callers match on the kind, never on error message strings.
type ErrorKind int

const (
	// ErrOther is the explicit fallback for unrecognized failures.
	ErrOther ErrorKind = iota
	// ErrTimeout means the upstream call exceeded its deadline.
	ErrTimeout
	// ErrConnection means the upstream API was unreachable.
	ErrConnection
	// ErrRateLimited means the upstream rejected the call with 429.
	ErrRateLimited
	// ErrAuth means the API key was missing or rejected.
	ErrAuth
	// ErrUpstream is any other upstream API error.
	ErrUpstream
	// ErrInvalidResponse means the model reply could not be parsed.
	ErrInvalidResponse
)

// String returns a human-readable name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrTimeout:
		return "timeout"
	case ErrConnection:
		return "connection"
	case ErrRateLimited:
		return "rate_limited"
	case ErrAuth:
		return "auth"
	case ErrUpstream:
		return "upstream"
	case ErrInvalidResponse:
		return "invalid_response"
	default:
		return "other"
	}
}

// UserMessage returns the single recoverable message surfaced to the user.
func (k ErrorKind) UserMessage() string {
	switch k {
	case ErrTimeout:
		return "Request timed out"
	case ErrConnection:
		return "Connection failed"
	case ErrRateLimited:
		return "Rate limit exceeded"
	case ErrAuth:
		return "Authentication failed"
	case ErrUpstream:
		return "Assist API error"
	case ErrInvalidResponse:
		return "Assist returned an unreadable reply"
	default:
		return "An unexpected error occurred"
	}
}

// HTTPStatus maps the kind onto the daemon's response status.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case ErrTimeout:
		return 408
	case ErrConnection:
		return 503
	case ErrRateLimited:
		return 429
	case ErrAuth:
		return 401
	case ErrUpstream:
		return 502
	case ErrInvalidResponse:
		return 502
	default:
		return 500
	}
}

// Error wraps an underlying failure with its classified kind.
// All assist failures are recoverable; there are no retries.
type Error struct {
	Kind ErrorKind
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("assist: %s", e.Kind)
	}
	return fmt.Sprintf("assist: %s: %v", e.Kind, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// newError wraps err with the given kind.
func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// classify maps an SDK or transport error onto the closed kind set.
func classify(err error) *Error {
	var already *Error
	if errors.As(err, &already) {
		return already
	}

	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return newError(ErrTimeout, err)
	}

	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == 401 || apierr.StatusCode == 403:
			return newError(ErrAuth, err)
		case apierr.StatusCode == 429:
			return newError(ErrRateLimited, err)
		default:
			return newError(ErrUpstream, err)
		}
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return newError(ErrConnection, err)
	}

	return newError(ErrOther, err)
}
