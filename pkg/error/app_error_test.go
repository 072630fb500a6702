package error

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenericErrors(t *testing.T) {
	var cases = []struct {
		err    GenericError
		code   string
		status int
	}{
		{ValidationError("body is required"), "VALIDATION_ERROR", http.StatusBadRequest},
		{NotFoundError("nothing here"), "NOT_FOUND_ERROR", http.StatusNotFound},
		{RateLimitedError{RetryAfter: 3 * time.Second}, "RATE_LIMITED", http.StatusTooManyRequests},
		{StorageUnavailableError{}, "STORAGE_UNAVAILABLE", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.ErrCode())
		assert.Equal(t, tc.status, tc.err.StatusCode())
		assert.NotEmpty(t, tc.err.Error())
	}
}

func TestRateLimitedError_RetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, RateLimitedError{}.RetryAfterSeconds())
	assert.Equal(t, 2, RateLimitedError{RetryAfter: 1500 * time.Millisecond}.RetryAfterSeconds())
	assert.Equal(t, 60, RateLimitedError{RetryAfter: time.Minute}.RetryAfterSeconds())
}

func TestStorageUnavailableError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := StorageUnavailableError{Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}
