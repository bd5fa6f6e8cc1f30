// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package vectorindex

import (
	"sync"

	"github.com/tomtom215/sommelier/internal/vecmath"
)

// BruteForceIndex scores every vector on each search. Exact, and fast enough
// for catalogs up to a few thousand wines.
type BruteForceIndex struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewBruteForceIndex creates an empty BruteForceIndex.
func NewBruteForceIndex() *BruteForceIndex {
	return &BruteForceIndex{vectors: make(map[string][]float32)}
}

// Add inserts or replaces the vector for id.
func (b *BruteForceIndex) Add(id string, vector []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.vectors[id] = append([]float32(nil), vector...)
}

// Remove deletes id. No-op if absent.
func (b *BruteForceIndex) Remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.vectors, id)
}

// Search returns up to k neighbors ordered by ascending cosine distance.
func (b *BruteForceIndex) Search(query []float32, k int) []Neighbor {
	if len(query) == 0 || k <= 0 {
		return nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Neighbor, 0, len(b.vectors))
	for id, vec := range b.vectors {
		out = append(out, Neighbor{ID: id, Distance: vecmath.CosineDistance(query, vec)})
	}
	sortNeighbors(out)
	if k < len(out) {
		out = out[:k]
	}
	return out
}

// Len returns the number of vectors held.
func (b *BruteForceIndex) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.vectors)
}

// snapshot copies the vector map. Used on tier promotion.
func (b *BruteForceIndex) snapshot() map[string][]float32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string][]float32, len(b.vectors))
	for id, v := range b.vectors {
		out[id] = v
	}
	return out
}
