package repository

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrStoreNotFound is returned by URLRecordRepository.Load when no store exists yet.
	ErrStoreNotFound = errors.New("url store not found")
	// ErrStoreCorrupt is returned when the stored document cannot be decoded.
	ErrStoreCorrupt = errors.New("url store is corrupt")

	ErrCrawlTimeout      = errors.New("crawl timed out")
	ErrNavigationFailed  = errors.New("navigation failed")
	ErrContentRestricted = errors.New("content is restricted or requires authentication")
	ErrExtractionFailed  = errors.New("extraction failed")

	// ErrFailureNotFound is returned when a URL has no failure record.
	ErrFailureNotFound = errors.New("crawl failure not found")

	// ErrLockHeld is returned when another writer holds the store lock.
	ErrLockHeld = errors.New("store lock is held by another writer")
)

// HTTPStatusError reports a response with an unusable status code.
type HTTPStatusError struct {
	StatusCode int
	Err        error // ErrContentRestricted or ErrNavigationFailed
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%v: received status code %d", e.Err, e.StatusCode)
}

func (e *HTTPStatusError) Unwrap() error { return e.Err }

// NewHTTPStatusError classifies a non-2xx status code.
func NewHTTPStatusError(code int) *HTTPStatusError {
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return &HTTPStatusError{StatusCode: code, Err: ErrContentRestricted}
	}
	return &HTTPStatusError{StatusCode: code, Err: ErrNavigationFailed}
}

// StatusCodeOf extracts the HTTP status code carried by err, or 0.
func StatusCodeOf(err error) int {
	var se *HTTPStatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// ErrorType maps a fetch error onto a short label for metrics and logs.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCrawlTimeout):
		return "timeout"
	case errors.Is(err, ErrContentRestricted):
		return "restricted"
	case errors.Is(err, ErrNavigationFailed):
		return "navigation"
	case errors.Is(err, ErrExtractionFailed):
		return "extraction"
	}
	return "unknown"
}
