// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package vectorindex

import (
	"sync"

	"github.com/coder/hnsw"

	"github.com/tomtom215/sommelier/internal/vecmath"
)

// HNSWIndex performs approximate nearest neighbor search over a Hierarchical
// Navigable Small World graph.
//
// hnsw.Graph.Delete can leave dangling neighbor pointers that panic during
// Search, so a shadow map of all vectors is kept and the graph is rebuilt
// whenever a node is replaced or removed.
type HNSWIndex struct {
	mu      sync.RWMutex
	cfg     HNSWConfig
	graph   *hnsw.Graph[string]
	vectors map[string][]float32
}

// HNSWConfig holds graph parameters.
type HNSWConfig struct {
	// M is the maximum number of neighbors per node. Default: 16.
	M int

	// EfSearch is the number of candidates considered during search. Default: 100.
	EfSearch int

	// Ml is the level generation factor. Default: 0.25.
	Ml float64
}

func (c HNSWConfig) withDefaults() HNSWConfig {
	if c.M == 0 {
		c.M = 16
	}
	if c.EfSearch == 0 {
		c.EfSearch = 100
	}
	if c.Ml == 0 {
		c.Ml = 0.25
	}
	return c
}

// NewHNSWIndex creates an empty HNSWIndex.
func NewHNSWIndex(cfg HNSWConfig) *HNSWIndex {
	cfg = cfg.withDefaults()
	return &HNSWIndex{
		cfg:     cfg,
		graph:   newGraph(cfg),
		vectors: make(map[string][]float32),
	}
}

func newGraph(cfg HNSWConfig) *hnsw.Graph[string] {
	g := hnsw.NewGraph[string]()
	g.M = cfg.M
	g.EfSearch = cfg.EfSearch
	g.Ml = cfg.Ml
	g.Distance = hnsw.CosineDistance
	return g
}

// rebuild constructs a fresh graph from the shadow map.
// Caller must hold h.mu for writing.
func (h *HNSWIndex) rebuild() {
	g := newGraph(h.cfg)
	if len(h.vectors) > 0 {
		nodes := make([]hnsw.Node[string], 0, len(h.vectors))
		for k, v := range h.vectors {
			nodes = append(nodes, hnsw.MakeNode(k, v))
		}
		g.Add(nodes...)
	}
	h.graph = g
}

// Add inserts or replaces the vector for id.
func (h *HNSWIndex) Add(id string, vector []float32) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cp := append([]float32(nil), vector...)
	_, existed := h.vectors[id]
	h.vectors[id] = cp
	if existed {
		h.rebuild()
		return
	}
	h.graph.Add(hnsw.MakeNode(id, cp))
}

// addBulk inserts vectors that are known to be new in one graph build.
func (h *HNSWIndex) addBulk(vectors map[string][]float32) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, v := range vectors {
		h.vectors[id] = append([]float32(nil), v...)
	}
	h.rebuild()
}

// Remove deletes id. No-op if absent.
func (h *HNSWIndex) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.vectors[id]; !ok {
		return
	}
	delete(h.vectors, id)
	h.rebuild()
}

// Search returns up to k approximate neighbors ordered by ascending cosine
// distance.
func (h *HNSWIndex) Search(query []float32, k int) []Neighbor {
	if len(query) == 0 || k <= 0 {
		return nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.graph.Len() == 0 {
		return nil
	}

	nodes := h.graph.Search(query, k)
	out := make([]Neighbor, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Neighbor{ID: n.Key, Distance: vecmath.CosineDistance(query, n.Value)})
	}
	sortNeighbors(out)
	return out
}

// Len returns the number of vectors held.
func (h *HNSWIndex) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.vectors)
}
