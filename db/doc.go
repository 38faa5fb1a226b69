// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db provides the key/value substrate the board is stored in.

# Store

Store is a plain get/put blob store with last-writer-wins semantics and
optional per-key expiry:

	value, err := store.Get(ctx, "state")   // ErrNotFound when absent
	err = store.Put(ctx, "state", value, 0) // 0 = never expires

There is no compare-and-swap. Two writers that read the same value and
both write back will lose one update; callers must accept that.

# Backends

Open picks a backend by type:

	store, err := db.Open(ctx, "sqlite", "./data/board.db")

  - memory: in-process map, for development and tests
  - sqlite: modernc.org/sqlite, WAL mode, single connection
  - postgres: github.com/lib/pq
  - mongo: go.mongodb.org/mongo-driver, collection "kv"

The initial ping is retried with exponential backoff so the server can
start before its database is ready.

# Schema

SQL backends share one table:

	kv(k TEXT PRIMARY KEY, v TEXT, expires_at BIGINT, updated_at BIGINT)

CreateSchema is safe to call multiple times. Expired rows are ignored on
read and overwritten on the next put; nothing sweeps them.
*/
package db
