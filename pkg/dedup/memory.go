package dedup

import (
	"context"
	"sync"
	"time"
)

// MemoryCache keeps first-seen times in process memory. Entries older than
// the retention are swept lazily during Claim.
type MemoryCache struct {
	mu        sync.Mutex
	window    time.Duration
	retention time.Duration
	now       func() time.Time
	entries   map[Key]time.Time
	lastSweep time.Time
}

type Option func(*MemoryCache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *MemoryCache) { c.now = now }
}

func NewMemoryCache(window, retention time.Duration, opts ...Option) *MemoryCache {
	if window <= 0 {
		window = DefaultWindow
	}
	if retention < window {
		retention = DefaultRetention
		if retention < window {
			retention = window
		}
	}

	c := &MemoryCache{
		window:    window,
		retention: retention,
		now:       time.Now,
		entries:   make(map[Key]time.Time),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lastSweep = c.now()
	return c
}

func (c *MemoryCache) Claim(_ context.Context, key Key) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweepLocked(now)

	if seen, ok := c.entries[key]; ok && now.Sub(seen) < c.window {
		return true, nil
	}
	c.entries[key] = now
	return false, nil
}

func (c *MemoryCache) Release(_ context.Context, key Key) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len reports the number of tracked entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) sweepLocked(now time.Time) {
	if now.Sub(c.lastSweep) < c.window {
		return
	}
	for k, seen := range c.entries {
		if now.Sub(seen) >= c.retention {
			delete(c.entries, k)
		}
	}
	c.lastSweep = now
}
