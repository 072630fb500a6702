package valkey

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	c := &Client{keyPrefix: normalizePrefix("smsgate")}

	assert.Equal(t, "smsgate:dedup:abc", c.Key("dedup", "abc"))
	assert.Equal(t, "smsgate", c.Key())

	bare := &Client{keyPrefix: normalizePrefix("")}
	assert.Equal(t, "ratelimit:10.0.0.1", bare.Key("ratelimit", "10.0.0.1"))
}

func TestIsNil(t *testing.T) {
	assert.False(t, IsNil(errors.New("boom")))
	assert.False(t, IsNil(nil))
}
