// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package vectorindex

import (
	"sort"
)

// Neighbor is one nearest-neighbor hit from an Index.
type Neighbor struct {
	ID       string
	Distance float64 // cosine distance in [0, 2], lower = more similar
}

// Index is an in-memory nearest neighbor structure over one collection.
// Implementations must be safe for concurrent use.
type Index interface {
	// Add inserts or replaces the vector for id.
	Add(id string, vector []float32)

	// Remove deletes id. No-op if absent.
	Remove(id string)

	// Search returns up to k neighbors ordered by ascending distance.
	Search(query []float32, k int) []Neighbor

	// Len returns the number of vectors held.
	Len() int
}

// sortNeighbors orders by distance, then id, so equal distances are stable
// across runs and index tiers.
func sortNeighbors(ns []Neighbor) {
	sort.Slice(ns, func(i, j int) bool {
		if ns[i].Distance != ns[j].Distance {
			return ns[i].Distance < ns[j].Distance
		}
		return ns[i].ID < ns[j].ID
	})
}
