package error

import (
	"fmt"
	"net/http"
	"time"
)

type ValidationError string

func (err ValidationError) Error() string {
	return string(err)
}

func (err ValidationError) ErrCode() string {
	return "VALIDATION_ERROR"
}

func (err ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

type NotFoundError string

func (err NotFoundError) Error() string {
	return string(err)
}

func (err NotFoundError) ErrCode() string {
	return "NOT_FOUND_ERROR"
}

func (err NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// RateLimitedError carries the time until the client may retry.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (err RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", err.RetryAfter.Round(time.Second))
}

func (err RateLimitedError) ErrCode() string {
	return "RATE_LIMITED"
}

func (err RateLimitedError) StatusCode() int {
	return http.StatusTooManyRequests
}

// RetryAfterSeconds rounds the hint up to whole seconds, minimum one.
func (err RateLimitedError) RetryAfterSeconds() int {
	secs := int((err.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// StorageUnavailableError wraps a message store failure.
type StorageUnavailableError struct {
	Err error
}

func (err StorageUnavailableError) Error() string {
	if err.Err == nil {
		return "message store unavailable"
	}
	return "message store unavailable: " + err.Err.Error()
}

func (err StorageUnavailableError) Unwrap() error {
	return err.Err
}

func (err StorageUnavailableError) ErrCode() string {
	return "STORAGE_UNAVAILABLE"
}

func (err StorageUnavailableError) StatusCode() int {
	return http.StatusInternalServerError
}
