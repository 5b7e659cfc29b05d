package crossref

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the Crossref client.
var (
	// ErrFetch matches every *FetchError.
	ErrFetch = errors.New("crossref metadata fetch failed")

	// ErrNoWorkRecord indicates a success response without a work record.
	ErrNoWorkRecord = errors.New("no work record in response")

	// ErrNetworkError indicates a transport failure, including the request deadline.
	ErrNetworkError = errors.New("network error communicating with Crossref")
)

// FetchError is returned when Crossref answers but does not yield a usable work record.
type FetchError struct {
	DOI        string
	StatusCode int
	Err        error // Detail, e.g. ErrNoWorkRecord or a decoding error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("crossref fetch failed for %s (status %d): %v", e.DOI, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("crossref fetch failed for %s (status %d)", e.DOI, e.StatusCode)
}

// Is makes errors.Is(err, ErrFetch) true for any FetchError.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if Crossref has no record of the DOI.
func IsNotFound(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.StatusCode == http.StatusNotFound
	}
	return false
}
