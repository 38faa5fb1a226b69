// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "kv"

type mongoEntry struct {
	Key       string `bson:"_id"`
	Value     []byte `bson:"v"`
	ExpiresAt int64  `bson:"expires_at"`
	UpdatedAt int64  `bson:"updated_at"`
}

// MongoStore keeps one document per key in the kv collection
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// NewMongoStore uses the database named in the connection string, or
// "hammerboard" when the URI has none.
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	if database == "" {
		database = "hammerboard"
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(mongoCollection),
		now:    time.Now,
	}
}

func (m *MongoStore) Get(ctx context.Context, key string) ([]byte, error) {
	var e mongoEntry
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if expired(e.ExpiresAt, m.now()) {
		return nil, ErrNotFound
	}
	return e.Value, nil
}

func (m *MongoStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := m.now()
	e := mongoEntry{
		Key:       key,
		Value:     value,
		ExpiresAt: expiry(now, ttl),
		UpdatedAt: now.UnixMilli(),
	}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": key}, e, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
