// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package catalog is the authoritative, ordered collection of products.
//
// The full collection is kept in memory and persisted as one document. Every
// mutation runs inside a write transaction: the change is applied to a copy,
// the copy is persisted, and only then does it replace the live collection.
// A failed persist leaves the store exactly as it was.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sommelier/internal/docstore"
	"github.com/tomtom215/sommelier/internal/metrics"
	"github.com/tomtom215/sommelier/internal/models"
)

var (
	// ErrProductExists is returned when adding a product whose id is taken.
	ErrProductExists = errors.New("product already exists")

	// ErrEmptyName is returned when adding a product without a name.
	ErrEmptyName = errors.New("product name is required")
)

// Store holds the product catalog.
type Store struct {
	mu       sync.RWMutex
	doc      *docstore.Document[[]models.Product]
	products []models.Product
	byID     map[string]int

	now    func() time.Time
	newID  func() string
	logger zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides id generation for products added without one.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// NewStore returns an empty store persisting through backend under docName.
// Call Load before use.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewStore(backend docstore.Backend, docName string, logger zerolog.Logger, opts ...Option) *Store {
	logger = logger.With().Str("component", "catalog").Logger()
	s := &Store{
		doc:    docstore.NewDocument(backend, docName, func() []models.Product { return []models.Product{} }, logger),
		byID:   map[string]int{},
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collection with the persisted one. An absent
// or corrupt document yields an empty catalog.
func (s *Store) Load(ctx context.Context) error {
	products, err := s.doc.Load(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.swap(products)
	s.logger.Debug().Int("products", len(products)).Msg("Catalog loaded")
	return nil
}

// Add stamps p with a creation time, assigns an id when p has none, appends
// it and persists. It returns the stored product.
func (s *Store) Add(ctx context.Context, p models.Product) (models.Product, error) {
	added, err := s.AddBatch(ctx, []models.Product{p})
	if err != nil {
		return models.Product{}, err
	}
	return added[0], nil
}

// AddBatch adds every product in one transaction: either all are persisted
// or none are. Ids must be unique against the catalog and within the batch.
func (s *Store) AddBatch(ctx context.Context, batch []models.Product) ([]models.Product, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	added := make([]models.Product, 0, len(batch))
	seen := make(map[string]struct{}, len(batch))
	for i := range batch {
		p := batch[i].Clone()
		if p.Name == "" {
			return nil, ErrEmptyName
		}
		if p.ID == "" {
			p.ID = s.newID()
		}
		if _, dup := s.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrProductExists, p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: %s (repeated in batch)", ErrProductExists, p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		added = append(added, p)
	}

	err := s.mutate(ctx, func(cur []models.Product) []models.Product {
		return append(cur, added...)
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.Product, len(added))
	for i := range added {
		out[i] = added[i].Clone()
	}
	return out, nil
}

// Delete removes every product with id and persists. Deleting an unknown id
// succeeds without writing. It reports whether anything was removed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	return s.DeleteMany(ctx, []string{id})
}

// DeleteMany removes all products whose id is in ids, in one transaction.
func (s *Store) DeleteMany(ctx context.Context, ids []string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.byID[id]; ok {
			drop[id] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return false, nil
	}

	err := s.mutate(ctx, func(cur []models.Product) []models.Product {
		kept := cur[:0]
		for _, p := range cur {
			if _, gone := drop[p.ID]; !gone {
				kept = append(kept, p)
			}
		}
		return kept
	})
	return err == nil, err
}

// Clear removes every product and persists the empty catalog.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, func([]models.Product) []models.Product {
		return []models.Product{}
	})
}

// All returns a copy of the catalog in insertion order.
func (s *Store) All() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, len(s.products))
	for i := range s.products {
		out[i] = s.products[i].Clone()
	}
	return out
}

// Get returns the product with id.
func (s *Store) Get(id string) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return models.Product{}, false
	}
	return s.products[i].Clone(), true
}

// Contains reports whether id is in the catalog.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok
}

// Len returns the number of products.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// mutate is the write transaction. fn receives a private copy of the
// collection; the result is persisted and swapped in only if the write
// succeeds. Must be called with mu held.
func (s *Store) mutate(ctx context.Context, fn func([]models.Product) []models.Product) error {
	next := fn(append(make([]models.Product, 0, len(s.products)+1), s.products...))
	if err := s.doc.Save(ctx, next); err != nil {
		return fmt.Errorf("persist catalog: %w", err)
	}
	s.swap(next)
	return nil
}

// swap installs products as the live collection. Must be called with mu held.
func (s *Store) swap(products []models.Product) {
	s.products = products
	s.byID = make(map[string]int, len(products))
	for i := range products {
		// First occurrence wins for lookups; documents written by older
		// tools may carry repeated ids.
		if _, ok := s.byID[products[i].ID]; !ok {
			s.byID[products[i].ID] = i
		}
	}
	metrics.CatalogProducts.Set(float64(len(products)))
}
