package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHTTPStatusError(t *testing.T) {
	err := fmt.Errorf("fetch https://a: %w", NewHTTPStatusError(403))
	assert.ErrorIs(t, err, ErrContentRestricted)
	assert.Equal(t, 403, StatusCodeOf(err))
	assert.Equal(t, "restricted", ErrorType(err))

	err = NewHTTPStatusError(500)
	assert.ErrorIs(t, err, ErrNavigationFailed)
	assert.Equal(t, "navigation", ErrorType(err))
	assert.Contains(t, err.Error(), "received status code 500")
}

func TestErrorType(t *testing.T) {
	assert.Equal(t, "", ErrorType(nil))
	assert.Equal(t, "timeout", ErrorType(fmt.Errorf("x: %w", ErrCrawlTimeout)))
	assert.Equal(t, "extraction", ErrorType(ErrExtractionFailed))
	assert.Equal(t, "unknown", ErrorType(errors.New("boom")))
	assert.Equal(t, 0, StatusCodeOf(errors.New("boom")))
}
