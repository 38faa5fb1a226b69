// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists the board on top of a db.Store.

# Documents

The whole board is one JSON document under the key "state":

	docs := store.NewDocuments(kv)
	doc, err := docs.Load(ctx)   // empty document if none yet
	aggregate.ApplyVote(doc, v, time.Now())
	err = docs.Save(ctx, doc)    // stamps updatedAt

Load-modify-save is not atomic. Concurrent writers each overwrite the
whole document, so one of two simultaneous votes can vanish. The counts
are a sentiment signal, not a ledger, and this is accepted.

# Locks

One key per (lot, fingerprint), "lock:<lot>:<fingerprint>", value "1":

	locks := store.NewLocks(kv, cfg.LockTTL)
	voted, err := locks.HasVoted(ctx, lot, fp)
	err = locks.MarkVoted(ctx, lot, fp)

The check and the mark are separate round trips, so two racing requests
from one fingerprint can both pass. Locks never get deleted; an optional
TTL lets the backing store forget them.
*/
package store
