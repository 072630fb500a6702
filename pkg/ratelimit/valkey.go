package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shipliyo/smsgate/infrastructure/valkey"
)

// slidingWindowScript prunes, counts and records in one round trip.
// Returns {allowed, remaining, retry_after_ms}.
const slidingWindowScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  local retry = window
  if oldest[2] then
    retry = tonumber(oldest[2]) + window - now
  end
  return {0, 0, retry}
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, limit - count - 1, 0}
`

// ValkeyLimiter shares windows across gateway replicas using a sorted set per client.
type ValkeyLimiter struct {
	client *valkey.Client
	max    int
	window time.Duration
	now    func() time.Time
}

func NewValkeyLimiter(client *valkey.Client, maxRequests int, window time.Duration) *ValkeyLimiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &ValkeyLimiter{client: client, max: maxRequests, window: window, now: time.Now}
}

func (l *ValkeyLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	inner := l.client.Inner()
	cmd := inner.B().Eval().
		Script(slidingWindowScript).
		Numkeys(1).
		Key(l.client.Key("ratelimit", key)).
		Arg(
			strconv.FormatInt(l.now().UnixMilli(), 10),
			strconv.FormatInt(l.window.Milliseconds(), 10),
			strconv.Itoa(l.max),
			uuid.NewString(),
		).
		Build()

	values, err := inner.Do(ctx, cmd).AsIntSlice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit eval: %w", err)
	}
	if len(values) != 3 {
		return Decision{}, fmt.Errorf("rate limit eval: unexpected reply length %d", len(values))
	}

	return Decision{
		Allowed:    values[0] == 1,
		Remaining:  int(values[1]),
		RetryAfter: time.Duration(values[2]) * time.Millisecond,
	}, nil
}
