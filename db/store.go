// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("key not found")
	ErrUnknownStore    = errors.New("unknown store type")
	ErrStoreURLMissing = errors.New("store URL required")
)

// Store is a last-writer-wins key/value blob store. There is no
// compare-and-swap: a Get followed by a Put can lose a concurrent Put.
type Store interface {
	// Get returns ErrNotFound when the key is absent or expired
	Get(ctx context.Context, key string) ([]byte, error)
	// Put overwrites key. A ttl of zero never expires.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// expiry converts a ttl into an absolute unix-millisecond deadline, 0 for none
func expiry(now time.Time, ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return now.Add(ttl).UnixMilli()
}

func expired(expiresAt int64, now time.Time) bool {
	return expiresAt != 0 && now.UnixMilli() >= expiresAt
}
