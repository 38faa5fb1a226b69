// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/hammerboard/db"
	"github.com/danielhkuo/hammerboard/models"
)

// StateKey is the well-known key of the shared document
const StateKey = "state"

// Documents loads and saves the shared state document. Every call goes to
// the backing store; nothing is cached between requests.
type Documents struct {
	kv  db.Store
	now func() time.Time
}

func NewDocuments(kv db.Store) *Documents {
	return &Documents{kv: kv, now: time.Now}
}

// Load returns the current document, or the canonical empty document if
// none has been written yet.
func (d *Documents) Load(ctx context.Context) (*models.StateDocument, error) {
	raw, err := d.kv.Get(ctx, StateKey)
	if errors.Is(err, db.ErrNotFound) {
		return models.NewStateDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	var doc models.StateDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	doc.Normalize()
	return &doc, nil
}

// Save stamps updatedAt and overwrites the stored document. Whatever was
// written since this request's Load is lost.
func (d *Documents) Save(ctx context.Context, doc *models.StateDocument) error {
	prev := doc.UpdatedAt
	doc.UpdatedAt = d.now().UnixMilli()

	raw, err := json.Marshal(doc)
	if err != nil {
		doc.UpdatedAt = prev
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := d.kv.Put(ctx, StateKey, raw, 0); err != nil {
		doc.UpdatedAt = prev
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}
