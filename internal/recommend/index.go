// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package recommend

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// CollectionStats describes one vector collection.
type CollectionStats struct {
	Name    string `json:"name"`
	Vectors int    `json:"vectors"`
}

// OrphanVector is a product vector whose product is no longer in the
// catalog. Name comes from the vector's metadata.
type OrphanVector struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// IndexStats compares the vector index with the catalog.
type IndexStats struct {
	Persisted      []string          `json:"persisted_collections"`
	Collections    []CollectionStats `json:"collections"`
	Products       int               `json:"products"`
	MissingVectors []string          `json:"missing_vectors"`
	Orphans        []OrphanVector    `json:"orphans"`
}

// IndexStats reports collection sizes, catalog products without a vector,
// and vectors without a product.
func (e *Engine) IndexStats(_ context.Context) (IndexStats, error) {
	names, err := e.vectors.Collections()
	if err != nil {
		return IndexStats{}, err
	}
	slices.Sort(names)

	products, prefs := e.productCollection(), e.preferenceCollection()
	stats := IndexStats{
		Persisted: names,
		Collections: []CollectionStats{
			{Name: products.Name(), Vectors: products.Len()},
			{Name: prefs.Name(), Vectors: prefs.Len()},
		},
		Products:       e.products.Len(),
		MissingVectors: []string{},
		Orphans:        e.orphans(),
	}

	indexed := make(map[string]struct{}, products.Len())
	for _, id := range products.IDs() {
		indexed[id] = struct{}{}
	}
	for _, p := range e.products.All() {
		if _, ok := indexed[p.ID]; !ok {
			stats.MissingVectors = append(stats.MissingVectors, p.ID)
		}
	}
	return stats, nil
}

// orphans lists product vectors the catalog does not hold, sorted by id.
func (e *Engine) orphans() []OrphanVector {
	coll := e.productCollection()
	out := []OrphanVector{}
	for _, id := range coll.IDs() {
		if e.products.Contains(id) {
			continue
		}
		o := OrphanVector{ID: id}
		if md, ok := coll.Metadata(id); ok {
			o.Name = md["name"]
		}
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b OrphanVector) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// PruneOrphans deletes product vectors left behind by a delete whose index
// removal failed. It returns the number of vectors removed.
func (e *Engine) PruneOrphans(ctx context.Context) (int, error) {
	e.catalogMu.Lock()
	defer e.catalogMu.Unlock()

	coll := e.productCollection()
	removed := 0
	for _, o := range e.orphans() {
		if err := coll.Delete(ctx, o.ID); err != nil {
			return removed, fmt.Errorf("prune vector %s: %w", o.ID, err)
		}
		removed++
	}
	if removed > 0 {
		e.logger.Info().Int("vectors", removed).Msg("Orphaned product vectors pruned")
	}
	return removed, nil
}
