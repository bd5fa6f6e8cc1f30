// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package vectorindex is a persistent store of named vector collections
// searched by cosine distance.
//
// Vectors and their metadata are stored in Badger under
//
//	vec/<collection>/meta
//	vec/<collection>/item/<id>
//
// and mirrored in memory by a TieredIndex that starts as an exact scan and
// switches to an HNSW graph once a collection grows past the tier threshold.
package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sommelier/internal/database"
	"github.com/tomtom215/sommelier/internal/metrics"
)

// Well-known collection names.
const (
	ProductsCollection    = "products"
	PreferencesCollection = "user_preferences"
)

// MetricCosine is the only supported distance metric.
const MetricCosine = "cosine"

var (
	// ErrNotFound is returned by Get for an absent id.
	ErrNotFound = errors.New("vector not found")

	// ErrDimensionMismatch is returned when a vector's length differs from
	// the collection's dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmptyID is returned when upserting without an id.
	ErrEmptyID = errors.New("vector id is required")

	// ErrInvalidName is returned for collection names that are empty or
	// contain '/'.
	ErrInvalidName = errors.New("invalid collection name")

	// ErrCollectionDeleted is returned when using a handle whose collection
	// has since been deleted.
	ErrCollectionDeleted = errors.New("collection deleted")
)

// CollectionStatus tells GetOrCreateCollection's caller whether the
// collection already existed.
type CollectionStatus int

const (
	// CollectionExisting means the collection was found.
	CollectionExisting CollectionStatus = iota
	// CollectionCreated means the collection was created by this call.
	CollectionCreated
)

// String implements fmt.Stringer.
func (s CollectionStatus) String() string {
	if s == CollectionCreated {
		return "created"
	}
	return "existing"
}

// descriptor is the persisted collection header.
type descriptor struct {
	Name      string    `json:"name"`
	Dimension int       `json:"dimension"`
	Metric    string    `json:"metric"`
	CreatedAt time.Time `json:"created_at"`
}

// Options configures a Store.
type Options struct {
	// Dimension is the vector length of newly created collections.
	Dimension int

	// Tiered configures each collection's in-memory index.
	Tiered TieredConfig
}

// Store hosts named collections in one Badger database.
type Store struct {
	db     *database.DB
	opts   Options
	logger zerolog.Logger

	mu          sync.Mutex
	collections map[string]*Collection
}

// NewStore wraps db. The Store owns db and closes it on Close.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewStore(db *database.DB, opts Options, logger zerolog.Logger) (*Store, error) {
	if opts.Dimension <= 0 {
		return nil, fmt.Errorf("vector dimension must be positive, got %d", opts.Dimension)
	}
	return &Store{
		db:          db,
		opts:        opts,
		logger:      logger.With().Str("component", "vectorindex").Logger(),
		collections: make(map[string]*Collection),
	}, nil
}

// GetOrCreateCollection returns the named collection, loading it from disk
// or creating it as needed. An existing collection whose dimension differs
// from the configured one is an ErrDimensionMismatch; drop it with
// DeleteCollection and recreate.
func (s *Store) GetOrCreateCollection(ctx context.Context, name string) (*Collection, CollectionStatus, error) {
	if name == "" || strings.Contains(name, "/") {
		return nil, 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[name]; ok {
		return c, CollectionExisting, nil
	}

	desc, found, err := s.readDescriptor(name)
	if err != nil {
		return nil, 0, err
	}

	status := CollectionExisting
	if !found {
		desc = descriptor{
			Name:      name,
			Dimension: s.opts.Dimension,
			Metric:    MetricCosine,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.writeDescriptor(desc); err != nil {
			return nil, 0, err
		}
		status = CollectionCreated
	} else if desc.Dimension != s.opts.Dimension {
		return nil, 0, fmt.Errorf("%w: collection %s was built with %d dimensions, embedder produces %d",
			ErrDimensionMismatch, name, desc.Dimension, s.opts.Dimension)
	}

	c := &Collection{
		name:    name,
		dim:     desc.Dimension,
		db:      s.db.DB,
		logger:  s.logger.With().Str("collection", name).Logger(),
		index:   NewTieredIndex(s.opts.Tiered),
		entries: make(map[string]entry),
	}
	if status == CollectionExisting {
		if err := c.load(); err != nil {
			return nil, 0, err
		}
	}
	s.collections[name] = c

	s.logger.Debug().
		Str("collection", name).
		Stringer("status", status).
		Int("vectors", c.Len()).
		Msg("Collection ready")
	return c, status, nil
}

// DeleteCollection drops the collection and all its vectors. Handles
// obtained earlier return ErrCollectionDeleted afterwards. Deleting an
// absent collection succeeds.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DropPrefix(collectionPrefix(name)); err != nil {
		return fmt.Errorf("drop collection %s: %w", name, err)
	}
	if c, ok := s.collections[name]; ok {
		c.markDropped()
		delete(s.collections, name)
	}
	metrics.VectorCollectionSize.DeleteLabelValues(name)
	s.logger.Info().Str("collection", name).Msg("Collection deleted")
	return nil
}

// Collections lists the names of every persisted collection.
func (s *Store) Collections() ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyRoot)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			rest := strings.TrimPrefix(string(it.Item().Key()), keyRoot)
			if name, ok := strings.CutSuffix(rest, "/"+metaSuffix); ok && !strings.Contains(name, "/") {
				names = append(names, name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return names, nil
}

// DB exposes the underlying database for maintenance such as value log GC.
func (s *Store) DB() *database.DB { return s.db }

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) readDescriptor(name string) (descriptor, bool, error) {
	var desc descriptor
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &desc)
		})
	})
	if isNotFound(err) {
		return descriptor{}, false, nil
	}
	if err != nil {
		return descriptor{}, false, fmt.Errorf("read collection %s: %w", name, err)
	}
	return desc, true, nil
}

func (s *Store) writeDescriptor(desc descriptor) error {
	raw, err := json.Marshal(desc)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", desc.Name, err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(metaKey(desc.Name), raw)
	}); err != nil {
		return fmt.Errorf("create collection %s: %w", desc.Name, err)
	}
	return nil
}

const (
	keyRoot    = "vec/"
	metaSuffix = "meta"
)

func collectionPrefix(name string) []byte { return []byte(keyRoot + name + "/") }
func metaKey(name string) []byte          { return []byte(keyRoot + name + "/" + metaSuffix) }
func itemPrefix(name string) []byte       { return []byte(keyRoot + name + "/item/") }
func itemKey(name, id string) []byte      { return []byte(keyRoot + name + "/item/" + id) }
