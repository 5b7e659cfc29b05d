package classify

import (
	"errors"
	"fmt"
)

// Common errors returned by the classification client.
var (
	// ErrCreditLimitExceeded indicates the credit budget is spent. No request was made.
	ErrCreditLimitExceeded = errors.New("classification credit limit reached")

	// ErrNotConfigured indicates no API key is configured. No request was made.
	ErrNotConfigured = errors.New("classification API key not configured")

	// ErrFetch matches every *FetchError.
	ErrFetch = errors.New("classification request failed")

	// ErrNetworkError indicates a transport failure, including the request deadline.
	ErrNetworkError = errors.New("network error communicating with classifier")
)

// FetchError is returned when the classifier answers with a non-success status
// or a body that cannot be decoded.
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("classification failed (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("classification failed (status %d)", e.StatusCode)
}

// Is makes errors.Is(err, ErrFetch) true for any FetchError.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
