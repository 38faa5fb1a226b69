// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Dialect selects placeholder style
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// SQLStore keeps keys in a single kv table
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// NewSQLStore wraps an open connection. Call CreateSchema first.
func NewSQLStore(conn *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: conn, dialect: dialect, now: time.Now}
}

// CreateSchema creates the kv table.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, conn *sql.DB) error {
	_, err := conn.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    k TEXT PRIMARY KEY,
    v TEXT NOT NULL,
    expires_at BIGINT NOT NULL DEFAULT 0,
    updated_at BIGINT NOT NULL
);
`

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT v, expires_at FROM kv WHERE k = $1
	`), key).Scan(&value, &expiresAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if expired(expiresAt, s.now()) {
		return nil, ErrNotFound
	}
	return []byte(value), nil
}

func (s *SQLStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := s.now()
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO kv (k, v, expires_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (k) DO UPDATE SET
			v = excluded.v,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`), key, string(value), expiry(now, ttl), now.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind rewrites $n placeholders to ? for SQLite
func (s *SQLStore) rebind(query string) string {
	if s.dialect == DialectPostgres {
		return query
	}
	out := make([]byte, 0, len(query))
	for i := 0; i < len(query); i++ {
		if query[i] == '$' {
			out = append(out, '?')
			for i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
				i++
			}
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}
