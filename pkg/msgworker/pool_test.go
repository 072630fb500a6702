package msgworker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_DispatchNonBlocking(t *testing.T) {
	pool := NewPool(2, 10)
	pool.Start(context.Background())
	defer pool.Stop()

	start := time.Now()
	ok := pool.TryDispatch(Job{
		Key: "+905551112233",
		Handler: func(ctx context.Context) error {
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	})
	elapsed := time.Since(start)

	assert.True(t, ok)
	assert.Less(t, elapsed, 10*time.Millisecond, "dispatch must not wait for the handler")
}

func TestPool_SameKeySequential(t *testing.T) {
	pool := NewPool(4, 100)
	pool.Start(context.Background())

	var results []int
	var mu sync.Mutex

	for i := 1; i <= 5; i++ {
		val := i
		pool.Dispatch(Job{
			Key: "Trendyol",
			Handler: func(ctx context.Context) error {
				time.Sleep(5 * time.Millisecond)
				mu.Lock()
				results = append(results, val)
				mu.Unlock()
				return nil
			},
		})
	}

	// Stop waits for every queued job.
	pool.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 2, 3, 4, 5}, results)
}

func TestPool_DifferentKeysRunInParallel(t *testing.T) {
	pool := NewPool(4, 100)
	pool.Start(context.Background())
	defer pool.Stop()

	var active, maxActive int32
	var wg sync.WaitGroup

	keys := distinctShardKeys(pool, 4)
	for _, key := range keys {
		wg.Add(1)
		pool.Dispatch(Job{
			Key: key,
			Handler: func(ctx context.Context) error {
				defer wg.Done()
				cur := atomic.AddInt32(&active, 1)
				for {
					prev := atomic.LoadInt32(&maxActive)
					if cur <= prev || atomic.CompareAndSwapInt32(&maxActive, prev, cur) {
						break
					}
				}
				time.Sleep(50 * time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			},
		})
	}
	wg.Wait()

	assert.GreaterOrEqual(t, atomic.LoadInt32(&maxActive), int32(2))
}

func TestPool_StopDrainsQueuedJobs(t *testing.T) {
	pool := NewPool(1, 10)
	pool.Start(context.Background())

	var completed int32
	for i := 0; i < 5; i++ {
		pool.Dispatch(Job{
			Key: "same",
			Handler: func(ctx context.Context) error {
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&completed, 1)
				return nil
			},
		})
	}
	pool.Stop()

	assert.Equal(t, int32(5), atomic.LoadInt32(&completed))
	assert.Equal(t, int64(5), pool.GetStats().TotalProcessed)
}

func TestPool_DropsWhenFullOrStopped(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Start(context.Background())

	release := make(chan struct{})
	blocker := Job{Key: "k", Handler: func(ctx context.Context) error {
		<-release
		return nil
	}}

	require.True(t, pool.TryDispatch(blocker))
	// Wait until the worker picked up the blocker so the queue slot is free.
	require.Eventually(t, func() bool { return pool.GetStats().ActiveWorkers == 1 }, time.Second, time.Millisecond)

	require.True(t, pool.TryDispatch(Job{Key: "k", Handler: func(ctx context.Context) error { return nil }}))
	assert.False(t, pool.TryDispatch(Job{Key: "k", Handler: func(ctx context.Context) error { return nil }}))

	close(release)
	pool.Stop()

	assert.False(t, pool.TryDispatch(Job{Key: "k", Handler: func(ctx context.Context) error { return nil }}))
	assert.Equal(t, int64(2), pool.GetStats().TotalDropped)
}

func TestPool_NotStartedDrops(t *testing.T) {
	pool := NewPool(1, 1)
	assert.False(t, pool.TryDispatch(Job{Key: "k", Handler: func(ctx context.Context) error { return nil }}))
}

func TestPool_ErrorsAndPanicsAreCounted(t *testing.T) {
	pool := NewPool(1, 10)
	pool.Start(context.Background())

	pool.Dispatch(Job{Key: "a", Handler: func(ctx context.Context) error { return errors.New("boom") }})
	pool.Dispatch(Job{Key: "a", Handler: func(ctx context.Context) error { panic("kaboom") }})
	pool.Dispatch(Job{Key: "a", Handler: func(ctx context.Context) error { return nil }})
	pool.Stop()

	stats := pool.GetStats()
	assert.Equal(t, int64(2), stats.TotalErrors)
	assert.Equal(t, int64(3), stats.TotalProcessed)
}

func TestPool_ConsistentHashing(t *testing.T) {
	pool := NewPool(4, 100)

	first := pool.shardFor("+359888123456")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, pool.shardFor("+359888123456"))
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, 4)
}

func TestPool_FairDistribution(t *testing.T) {
	pool := NewPool(4, 100)

	counts := make(map[int]int)
	for i := 0; i < 400; i++ {
		counts[pool.shardFor(fmt.Sprintf("+90555%07d", i))]++
	}

	for shard, count := range counts {
		assert.Greater(t, count, 60, "worker %d is starved", shard)
		assert.Less(t, count, 140, "worker %d is overloaded", shard)
	}
}

// distinctShardKeys returns n keys that land on n different workers.
func distinctShardKeys(p *Pool, n int) []string {
	seen := make(map[int]bool)
	var keys []string
	for i := 0; len(keys) < n && i < 10000; i++ {
		key := fmt.Sprintf("sender-%d", i)
		if s := p.shardFor(key); !seen[s] {
			seen[s] = true
			keys = append(keys, key)
		}
	}
	return keys
}
