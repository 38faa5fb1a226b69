// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract runs the behaviour every backend must share
func storeContract(t *testing.T, s Store, setNow func(time.Time)) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "state", []byte(`{"a":1}`), 0))
		got, err := s.Get(ctx, "state")
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":1}`, string(got))
	})

	t.Run("last writer wins", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "k", []byte("first"), 0))
		require.NoError(t, s.Put(ctx, "k", []byte("second"), 0))
		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "second", string(got))
	})

	t.Run("ttl expiry", func(t *testing.T) {
		start := time.Now()
		setNow(start)
		require.NoError(t, s.Put(ctx, "lock:lot1:abc", []byte("1"), time.Minute))

		_, err := s.Get(ctx, "lock:lot1:abc")
		require.NoError(t, err)

		setNow(start.Add(2 * time.Minute))
		_, err = s.Get(ctx, "lock:lot1:abc")
		assert.ErrorIs(t, err, ErrNotFound)

		// Overwriting without ttl revives the key
		require.NoError(t, s.Put(ctx, "lock:lot1:abc", []byte("1"), 0))
		_, err = s.Get(ctx, "lock:lot1:abc")
		assert.NoError(t, err)
	})
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	var mu sync.Mutex
	now := time.Now()
	s.now = func() time.Time { mu.Lock(); defer mu.Unlock(); return now }
	storeContract(t, s, func(t time.Time) { mu.Lock(); now = t; mu.Unlock() })
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	buf := []byte("abc")
	require.NoError(t, s.Put(ctx, "k", buf, 0))
	buf[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemoryStore()
	assert.ErrorIs(t, s.Put(ctx, "k", []byte("v"), 0), context.Canceled)
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "board.db")
	store, err := Open(context.Background(), TypeSQLite, path)
	require.NoError(t, err)
	defer store.Close()

	s := store.(*SQLStore)
	var mu sync.Mutex
	now := time.Now()
	s.now = func() time.Time { mu.Lock(); defer mu.Unlock(); return now }
	storeContract(t, s, func(t time.Time) { mu.Lock(); now = t; mu.Unlock() })
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "board.db")

	first, err := Open(ctx, TypeSQLite, path)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, "state", []byte("persisted"), 0))
	require.NoError(t, first.Close())

	second, err := Open(ctx, TypeSQLite, path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get(ctx, "state")
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(got))
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("TEST_POSTGRES_URL not set")
	}
	store, err := Open(context.Background(), TypePostgres, url)
	require.NoError(t, err)
	defer store.Close()

	s := store.(*SQLStore)
	_, err = s.db.Exec(`DELETE FROM kv`)
	require.NoError(t, err)

	var mu sync.Mutex
	now := time.Now()
	s.now = func() time.Time { mu.Lock(); defer mu.Unlock(); return now }
	storeContract(t, s, func(t time.Time) { mu.Lock(); now = t; mu.Unlock() })
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	store, err := Open(context.Background(), TypeMongo, uri)
	require.NoError(t, err)
	defer store.Close()

	s := store.(*MongoStore)
	require.NoError(t, s.coll.Drop(context.Background()))

	var mu sync.Mutex
	now := time.Now()
	s.now = func() time.Time { mu.Lock(); defer mu.Unlock(); return now }
	storeContract(t, s, func(t time.Time) { mu.Lock(); now = t; mu.Unlock() })
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, TypeMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open(ctx, TypeSQLite, "")
	assert.ErrorIs(t, err, ErrStoreURLMissing)

	_, err = Open(ctx, "redis", "redis://localhost")
	assert.True(t, errors.Is(err, ErrUnknownStore))
}

func TestRebind(t *testing.T) {
	sqlite := &SQLStore{dialect: DialectSQLite}
	assert.Equal(t, "VALUES (?, ?, ?, ?)", sqlite.rebind("VALUES ($1, $2, $3, $4)"))
	assert.Equal(t, "k = ? AND j = ?", sqlite.rebind("k = $1 AND j = $12"))

	pg := &SQLStore{dialect: DialectPostgres}
	assert.Equal(t, "VALUES ($1, $2)", pg.rebind("VALUES ($1, $2)"))
}
