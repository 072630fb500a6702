package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps per-client request timestamps in process memory.
// Timestamps older than the window are pruned when the client is seen again;
// idle clients are dropped by a lazy sweep.
type MemoryLimiter struct {
	mu        sync.Mutex
	max       int
	window    time.Duration
	now       func() time.Time
	hits      map[string][]time.Time
	lastSweep time.Time
}

type Option func(*MemoryLimiter)

func WithClock(now func() time.Time) Option {
	return func(l *MemoryLimiter) { l.now = now }
}

func NewMemoryLimiter(maxRequests int, window time.Duration, opts ...Option) *MemoryLimiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}

	l := &MemoryLimiter{
		max:    maxRequests,
		window: window,
		now:    time.Now,
		hits:   make(map[string][]time.Time),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.lastSweep = l.now()
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweepLocked(now)

	recent := prune(l.hits[key], now, l.window)
	if len(recent) >= l.max {
		l.hits[key] = recent
		return Decision{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: recent[0].Add(l.window).Sub(now),
		}, nil
	}

	l.hits[key] = append(recent, now)
	return Decision{Allowed: true, Remaining: l.max - len(recent) - 1}, nil
}

// Clients reports how many clients currently hold a window.
func (l *MemoryLimiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

func (l *MemoryLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	for k, ts := range l.hits {
		if kept := prune(ts, now, l.window); len(kept) == 0 {
			delete(l.hits, k)
		} else {
			l.hits[k] = kept
		}
	}
	l.lastSweep = now
}

// prune drops timestamps that fell out of the window. ts is ordered oldest first.
func prune(ts []time.Time, now time.Time, window time.Duration) []time.Time {
	i := 0
	for i < len(ts) && now.Sub(ts[i]) >= window {
		i++
	}
	if i == 0 {
		return ts
	}
	out := make([]time.Time, len(ts)-i)
	copy(out, ts[i:])
	return out
}
