// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	_ "modernc.org/sqlite"
)

// Store types accepted by Open
const (
	TypeMemory   = "memory"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeMongo    = "mongo"
)

const (
	defaultMaxRetryTimes = 5
	defaultRetryInterval = 500 * time.Millisecond
)

// Open connects to the configured backend, retrying the initial ping with
// exponential backoff, and prepares its schema.
func Open(ctx context.Context, storeType, url string) (Store, error) {
	if storeType == TypeMemory {
		return NewMemoryStore(), nil
	}
	if url == "" {
		return nil, ErrStoreURLMissing
	}

	switch storeType {
	case TypeSQLite:
		return openSQLite(ctx, url)
	case TypePostgres:
		return openPostgres(ctx, url)
	case TypeMongo:
		return openMongo(ctx, url)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownStore, storeType)
}

func openSQLite(ctx context.Context, path string) (Store, error) {
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers

	if err := pingWithRetry(ctx, conn.PingContext); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.ExecContext(ctx, `PRAGMA journal_mode=WAL`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if err := CreateSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return NewSQLStore(conn, DialectSQLite), nil
}

func openPostgres(ctx context.Context, url string) (Store, error) {
	conn, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := pingWithRetry(ctx, conn.PingContext); err != nil {
		conn.Close()
		return nil, err
	}
	if err := CreateSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return NewSQLStore(conn, DialectPostgres), nil
}

func openMongo(ctx context.Context, uri string) (Store, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid mongo URI: %w", err)
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	ping := func(ctx context.Context) error { return client.Ping(ctx, nil) }
	if err := pingWithRetry(ctx, ping); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return NewMongoStore(client, cs.Database), nil
}

func pingWithRetry(ctx context.Context, ping func(context.Context) error) error {
	err := retry.Do(
		func() error { return ping(ctx) },
		retry.Context(ctx),
		retry.Attempts(defaultMaxRetryTimes),
		retry.Delay(defaultRetryInterval),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("store ping failed, retrying",
				"attempt", n+1,
				"max_attempts", defaultMaxRetryTimes,
				"error", err,
			)
		}),
	)
	if err != nil {
		return fmt.Errorf("store ping failed: %w", err)
	}
	return nil
}
