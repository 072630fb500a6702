// Package dedup suppresses repeated deliveries of the same inbound SMS.
//
// A delivery is identified by the literal (sender, body, client timestamp)
// triple. Two deliveries that differ in any field, including only the client
// timestamp, are never duplicates of each other.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	DefaultWindow    = 5 * time.Second
	DefaultRetention = 60 * time.Second
)

type Key struct {
	Sender          string
	Body            string
	ClientTimestamp string
}

// Hash returns a fixed-length digest of the triple, used as a shared-store key.
func (k Key) Hash() string {
	h := sha256.New()
	h.Write([]byte(k.Sender))
	h.Write([]byte{0})
	h.Write([]byte(k.Body))
	h.Write([]byte{0})
	h.Write([]byte(k.ClientTimestamp))
	return hex.EncodeToString(h.Sum(nil))
}

// Cache is a check-and-set store of recently seen deliveries.
type Cache interface {
	// Claim records key and reports whether it was already seen inside the window.
	Claim(ctx context.Context, key Key) (duplicate bool, err error)
	// Release forgets key so a failed delivery can be retried immediately.
	Release(ctx context.Context, key Key) error
}
