// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/hammerboard/db"
)

const lockPrefix = "lock:"

var lockValue = []byte("1")

// Locks records which fingerprints already voted on which lot. Presence
// of the key is the whole record.
//
// HasVoted followed by MarkVoted is not atomic: two requests from the same
// fingerprint racing past HasVoted can both be counted.
type Locks struct {
	kv  db.Store
	ttl time.Duration
}

// NewLocks creates a lock store. A positive ttl lets a voter vote again
// once it has passed; zero keeps locks forever.
func NewLocks(kv db.Store, ttl time.Duration) *Locks {
	return &Locks{kv: kv, ttl: ttl}
}

// LockKey is the namespaced key for one (lot, fingerprint) pair
func LockKey(lot, fingerprint string) string {
	return lockPrefix + lot + ":" + fingerprint
}

func (l *Locks) HasVoted(ctx context.Context, lot, fingerprint string) (bool, error) {
	_, err := l.kv.Get(ctx, LockKey(lot, fingerprint))
	if errors.Is(err, db.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check vote lock: %w", err)
	}
	return true, nil
}

func (l *Locks) MarkVoted(ctx context.Context, lot, fingerprint string) error {
	if err := l.kv.Put(ctx, LockKey(lot, fingerprint), lockValue, l.ttl); err != nil {
		return fmt.Errorf("failed to mark vote lock: %w", err)
	}
	return nil
}
