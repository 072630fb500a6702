// Package valkey wraps valkey-go for the dedup and rate-limit state shared
// between gateway replicas.
package valkey

import (
	"context"
	"fmt"
	"strings"
	"time"

	valkeylib "github.com/valkey-io/valkey-go"
)

const DefaultConnectTimeout = 5 * time.Second

type Config struct {
	Address        string
	Password       string
	DB             int
	KeyPrefix      string
	ConnectTimeout time.Duration
}

// Client holds a connected valkey-go client and the key namespace of this gateway.
type Client struct {
	inner     valkeylib.Client
	keyPrefix string
}

// NewClient dials cfg.Address and fails unless the server answers a PING
// within the connect timeout. The caller owns Close.
func NewClient(cfg Config) (*Client, error) {
	inner, err := valkeylib.NewClient(valkeylib.ClientOption{
		InitAddress: []string{cfg.Address},
		SelectDB:    cfg.DB,
		Password:    cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("valkey %s: %w", cfg.Address, err)
	}

	c := &Client{inner: inner, keyPrefix: normalizePrefix(cfg.KeyPrefix)}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("valkey %s did not answer PING within %v: %w", cfg.Address, timeout, err)
	}
	return c, nil
}

func normalizePrefix(prefix string) string {
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return prefix
}

// Inner exposes the raw client for commands without a helper here.
func (c *Client) Inner() valkeylib.Client {
	return c.inner
}

func (c *Client) Close() {
	if c.inner != nil {
		c.inner.Close()
	}
}

// Key joins parts under the configured prefix: Key("dedup", h) -> "smsgate:dedup:h".
func (c *Client) Key(parts ...string) string {
	if len(parts) == 0 {
		return strings.TrimSuffix(c.keyPrefix, ":")
	}
	return c.keyPrefix + strings.Join(parts, ":")
}

func (c *Client) Ping(ctx context.Context) error {
	return c.inner.Do(ctx, c.inner.B().Ping().Build()).Error()
}

// SetNX stores key with a millisecond TTL unless it exists. It reports
// whether this call created the key.
func (c *Client) SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	err := c.inner.Do(ctx, c.inner.B().Set().Key(key).Value("1").Nx().Px(ttl).Build()).Error()
	switch {
	case err == nil:
		return true, nil
	case IsNil(err):
		return false, nil
	default:
		return false, err
	}
}

func (c *Client) Del(ctx context.Context, key string) error {
	return c.inner.Do(ctx, c.inner.B().Del().Key(key).Build()).Error()
}

// IsNil reports whether err is a nil reply (missing key, failed NX).
func IsNil(err error) bool {
	return valkeylib.IsValkeyNil(err)
}
