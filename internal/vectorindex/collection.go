// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sommelier/internal/metrics"
)

// Match is one query result.
type Match struct {
	ID       string            `json:"id"`
	Distance float64           `json:"distance"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// entry is the persisted form of one vector.
type entry struct {
	Vector   []float32         `json:"vector"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Collection is a named set of equal-length vectors with metadata, searched
// by cosine distance. Writes go to Badger first and are applied to the
// in-memory index only after the transaction commits.
type Collection struct {
	name   string
	dim    int
	db     *badger.DB
	logger zerolog.Logger

	mu      sync.RWMutex
	index   *TieredIndex
	entries map[string]entry
	dropped bool
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Dimension returns the vector length every entry must have.
func (c *Collection) Dimension() int { return c.dim }

// Upsert inserts or replaces the vector and metadata stored under id.
func (c *Collection) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]string) error {
	if id == "" {
		return ErrEmptyID
	}
	if len(vector) != c.dim {
		return fmt.Errorf("%w: collection %s expects %d, got %d", ErrDimensionMismatch, c.name, c.dim, len(vector))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e := entry{Vector: append([]float32(nil), vector...), Metadata: copyMetadata(metadata)}
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode vector %s: %w", id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dropped {
		return fmt.Errorf("%w: %s", ErrCollectionDeleted, c.name)
	}

	if err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(itemKey(c.name, id), raw)
	}); err != nil {
		return fmt.Errorf("persist vector %s/%s: %w", c.name, id, err)
	}

	c.entries[id] = e
	c.index.Add(id, e.Vector)
	metrics.VectorCollectionSize.WithLabelValues(c.name).Set(float64(len(c.entries)))
	return nil
}

// Delete removes id. Deleting an absent id succeeds.
func (c *Collection) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dropped {
		return fmt.Errorf("%w: %s", ErrCollectionDeleted, c.name)
	}
	if _, ok := c.entries[id]; !ok {
		return nil
	}

	if err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(itemKey(c.name, id))
	}); err != nil {
		return fmt.Errorf("delete vector %s/%s: %w", c.name, id, err)
	}

	delete(c.entries, id)
	c.index.Remove(id)
	metrics.VectorCollectionSize.WithLabelValues(c.name).Set(float64(len(c.entries)))
	return nil
}

// Get returns a copy of the vector stored under id, or ErrNotFound.
func (c *Collection) Get(_ context.Context, id string) ([]float32, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	if !ok || c.dropped {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, c.name, id)
	}
	return append([]float32(nil), e.Vector...), nil
}

// Metadata returns a copy of the metadata stored under id.
func (c *Collection) Metadata(id string) (map[string]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	return copyMetadata(e.Metadata), true
}

// Query returns at most k matches ordered by ascending cosine distance.
func (c *Collection) Query(ctx context.Context, vector []float32, k int) ([]Match, error) {
	if len(vector) != c.dim {
		return nil, fmt.Errorf("%w: collection %s expects %d, got %d", ErrDimensionMismatch, c.name, c.dim, len(vector))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []Match{}, nil
	}

	start := time.Now()
	defer func() {
		metrics.VectorQueryDuration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	}()

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.dropped {
		return nil, fmt.Errorf("%w: %s", ErrCollectionDeleted, c.name)
	}

	hits := c.index.Search(vector, k)
	out := make([]Match, 0, len(hits))
	for _, h := range hits {
		out = append(out, Match{
			ID:       h.ID,
			Distance: h.Distance,
			Metadata: copyMetadata(c.entries[h.ID].Metadata),
		})
	}
	return out, nil
}

// Len returns the number of stored vectors.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// IDs returns every stored id in no particular order.
func (c *Collection) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.entries))
	for id := range c.entries {
		out = append(out, id)
	}
	return out
}

// load reads every persisted entry into memory. Entries with the wrong
// dimension are skipped and logged.
func (c *Collection) load() error {
	prefix := itemPrefix(c.name)
	loaded := make(map[string][]float32)

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			id := string(item.Key()[len(prefix):])

			var e entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				c.logger.Warn().Err(err).Str("id", id).Msg("Skipping unreadable vector")
				continue
			}
			if len(e.Vector) != c.dim {
				c.logger.Warn().Str("id", id).Int("dimension", len(e.Vector)).Msg("Skipping vector with wrong dimension")
				continue
			}
			c.entries[id] = e
			loaded[id] = e.Vector
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("load collection %s: %w", c.name, err)
	}

	for id, v := range loaded {
		c.index.Add(id, v)
	}
	metrics.VectorCollectionSize.WithLabelValues(c.name).Set(float64(len(c.entries)))
	return nil
}

// markDropped invalidates the handle after DeleteCollection.
func (c *Collection) markDropped() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropped = true
	c.entries = map[string]entry{}
	c.index = NewTieredIndex(TieredConfig{})
}

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// isNotFound reports whether err is badger's missing-key error.
func isNotFound(err error) bool {
	return errors.Is(err, badger.ErrKeyNotFound)
}
