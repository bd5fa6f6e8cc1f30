// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package recommend

import (
	"context"
	"slices"
	"testing"

	"github.com/tomtom215/sommelier/internal/vectorindex"
)

// driftedEnv returns an engine whose index has one orphan ("ghost") and one
// catalog product without a vector ("b").
func driftedEnv(t *testing.T) *testEnv {
	t.Helper()

	env := newTestEnv(t)
	env.add(t, "a", "Red One", "Red Wine")
	env.add(t, "b", "White One", "White Wine")
	ctx := context.Background()

	coll := env.engine.productCollection()
	vec, err := coll.Get(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if err := coll.Upsert(ctx, "ghost", vec, map[string]string{"name": "Deleted Wine"}); err != nil {
		t.Fatal(err)
	}
	if err := coll.Delete(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	return env
}

func TestIndexStats(t *testing.T) {
	t.Parallel()

	env := driftedEnv(t)
	stats, err := env.engine.IndexStats(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(stats.Persisted, []string{vectorindex.ProductsCollection, vectorindex.PreferencesCollection}) {
		t.Errorf("Persisted = %v", stats.Persisted)
	}
	want := []CollectionStats{
		{Name: vectorindex.ProductsCollection, Vectors: 2},
		{Name: vectorindex.PreferencesCollection, Vectors: 0},
	}
	if !slices.Equal(stats.Collections, want) {
		t.Errorf("Collections = %+v, want %+v", stats.Collections, want)
	}
	if stats.Products != 2 {
		t.Errorf("Products = %d, want 2", stats.Products)
	}
	if !slices.Equal(stats.MissingVectors, []string{"b"}) {
		t.Errorf("MissingVectors = %v, want [b]", stats.MissingVectors)
	}
	if !slices.Equal(stats.Orphans, []OrphanVector{{ID: "ghost", Name: "Deleted Wine"}}) {
		t.Errorf("Orphans = %+v", stats.Orphans)
	}
}

func TestPruneOrphansAndReindexRepairDrift(t *testing.T) {
	t.Parallel()

	env := driftedEnv(t)
	ctx := context.Background()

	removed, err := env.engine.PruneOrphans(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("PruneOrphans() = %d, want 1", removed)
	}
	written, err := env.engine.Reindex(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if written != 1 {
		t.Errorf("Reindex() = %d, want 1", written)
	}

	stats, err := env.engine.IndexStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats.MissingVectors) != 0 || len(stats.Orphans) != 0 {
		t.Errorf("drift remains: missing=%v orphans=%v", stats.MissingVectors, stats.Orphans)
	}

	again, err := env.engine.PruneOrphans(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if again != 0 {
		t.Errorf("second PruneOrphans() = %d, want 0", again)
	}
}
