// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package vectorindex

import "sync"

// DefaultTierThreshold is the vector count at which a collection promotes
// from brute-force to HNSW.
const DefaultTierThreshold = 1000

// TieredIndex starts exact and promotes itself to HNSW once it holds more
// than Threshold vectors. It never demotes.
type TieredIndex struct {
	mu        sync.RWMutex
	bf        *BruteForceIndex
	hnsw      *HNSWIndex
	hnswCfg   HNSWConfig
	threshold int
	promoted  bool
}

// TieredConfig holds configuration for TieredIndex.
type TieredConfig struct {
	// Threshold is the vector count above which brute-force promotes to
	// HNSW. Default: DefaultTierThreshold.
	Threshold int

	// HNSW holds the graph parameters used after promotion.
	HNSW HNSWConfig
}

// NewTieredIndex creates an empty TieredIndex in brute-force mode.
func NewTieredIndex(cfg TieredConfig) *TieredIndex {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultTierThreshold
	}
	return &TieredIndex{
		bf:        NewBruteForceIndex(),
		hnswCfg:   cfg.HNSW,
		threshold: threshold,
	}
}

// active returns the currently active index. Caller must hold t.mu.
func (t *TieredIndex) active() Index {
	if t.promoted {
		return t.hnsw
	}
	return t.bf
}

// Add inserts or replaces the vector for id, promoting when the count
// crosses the threshold.
func (t *TieredIndex) Add(id string, vector []float32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active().Add(id, vector)
	if !t.promoted && t.bf.Len() > t.threshold {
		t.promote()
	}
}

// Remove deletes id. No-op if absent.
func (t *TieredIndex) Remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active().Remove(id)
}

// Search returns up to k neighbors ordered by ascending distance.
func (t *TieredIndex) Search(query []float32, k int) []Neighbor {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active().Search(query, k)
}

// Len returns the number of vectors held.
func (t *TieredIndex) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active().Len()
}

// Promoted reports whether the index has switched to HNSW.
func (t *TieredIndex) Promoted() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.promoted
}

// promote migrates every vector into a new HNSW graph.
// Caller must hold t.mu.
func (t *TieredIndex) promote() {
	h := NewHNSWIndex(t.hnswCfg)
	h.addBulk(t.bf.snapshot())
	t.hnsw = h
	t.bf = NewBruteForceIndex()
	t.promoted = true
}
