// Package ratelimit implements a sliding-window request limiter keyed by client.
package ratelimit

import (
	"context"
	"time"
)

const (
	DefaultMaxRequests = 60
	DefaultWindow      = time.Minute
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type Limiter interface {
	// Allow records a request for key unless the window is already full.
	Allow(ctx context.Context, key string) (Decision, error)
}
