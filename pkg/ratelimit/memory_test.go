package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestMemoryLimiter_RejectsAfterMaxThenRecovers(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(3, time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		require.True(t, d.Allowed, "request %d", i+1)
		assert.Equal(t, 2-i, d.Remaining)
		clock.Advance(time.Second)
	}

	d, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 57*time.Second, d.RetryAfter)

	clock.Advance(57 * time.Second)
	d, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "oldest request left the window")
}

func TestMemoryLimiter_FullWindowElapsed(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(2, 10*time.Second, WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, _ := l.Allow(ctx, "c")
		require.True(t, d.Allowed)
	}
	d, _ := l.Allow(ctx, "c")
	require.False(t, d.Allowed)

	clock.Advance(10 * time.Second)
	d, _ = l.Allow(ctx, "c")
	assert.True(t, d.Allowed)
}

func TestMemoryLimiter_ClientsAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()

	a, _ := l.Allow(ctx, "a")
	b, _ := l.Allow(ctx, "b")
	a2, _ := l.Allow(ctx, "a")

	assert.True(t, a.Allowed)
	assert.True(t, b.Allowed)
	assert.False(t, a2.Allowed)
}

func TestMemoryLimiter_SweepDropsIdleClients(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(5, time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_, _ = l.Allow(ctx, fmt.Sprintf("client-%d", i))
	}
	require.Equal(t, 20, l.Clients())

	clock.Advance(2 * time.Minute)
	_, _ = l.Allow(ctx, "client-new")
	assert.Equal(t, 1, l.Clients())
}

func TestMemoryLimiter_ConcurrentSameClient(t *testing.T) {
	l := NewMemoryLimiter(30, time.Minute)
	ctx := context.Background()

	var allowed int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d, err := l.Allow(ctx, "same"); err == nil && d.Allowed {
				atomic.AddInt32(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(30), allowed)
}
