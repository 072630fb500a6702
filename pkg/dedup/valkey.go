package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/shipliyo/smsgate/infrastructure/valkey"
)

// ValkeyCache shares the dedup window across gateway replicas. Each claim is a
// single SET NX PX, so the check-and-set is atomic on the server.
type ValkeyCache struct {
	client *valkey.Client
	window time.Duration
}

func NewValkeyCache(client *valkey.Client, window time.Duration) *ValkeyCache {
	if window <= 0 {
		window = DefaultWindow
	}
	return &ValkeyCache{client: client, window: window}
}

func (c *ValkeyCache) key(k Key) string {
	return c.client.Key("dedup", k.Hash())
}

func (c *ValkeyCache) Claim(ctx context.Context, key Key) (bool, error) {
	created, err := c.client.SetNX(ctx, c.key(key), c.window)
	if err != nil {
		return false, fmt.Errorf("dedup claim: %w", err)
	}
	return !created, nil
}

func (c *ValkeyCache) Release(ctx context.Context, key Key) error {
	if err := c.client.Del(ctx, c.key(key)); err != nil {
		return fmt.Errorf("dedup release: %w", err)
	}
	return nil
}
