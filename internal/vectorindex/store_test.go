// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package vectorindex

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sommelier/internal/database"
)

func newMemStore(t *testing.T, dim int) *Store {
	t.Helper()

	db, err := database.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewStore(db, Options{Dimension: dim}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetOrCreateCollectionStatus(t *testing.T) {
	t.Parallel()

	s := newMemStore(t, 8)
	ctx := context.Background()

	c1, status, err := s.GetOrCreateCollection(ctx, ProductsCollection)
	if err != nil || status != CollectionCreated {
		t.Fatalf("first call = %v, %v; want created", status, err)
	}
	c2, status, err := s.GetOrCreateCollection(ctx, ProductsCollection)
	if err != nil || status != CollectionExisting {
		t.Fatalf("second call = %v, %v; want existing", status, err)
	}
	if c1 != c2 {
		t.Error("expected the same handle for the same collection")
	}

	for _, bad := range []string{"", "a/b"} {
		if _, _, err := s.GetOrCreateCollection(ctx, bad); !errors.Is(err, ErrInvalidName) {
			t.Errorf("GetOrCreateCollection(%q) error = %v", bad, err)
		}
	}
}

func TestCollectionOperations(t *testing.T) {
	t.Parallel()

	s := newMemStore(t, 8)
	ctx := context.Background()
	c, _, err := s.GetOrCreateCollection(ctx, ProductsCollection)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Upsert(ctx, "w1", axisVec(0), map[string]string{"name": "Merlot"}); err != nil {
		t.Fatal(err)
	}
	if err := c.Upsert(ctx, "w2", axisVec(1), nil); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		id      string
		vector  []float32
		wantErr error
	}{
		{"short vector", "w3", []float32{1, 2}, ErrDimensionMismatch},
		{"empty id", "", axisVec(2), ErrEmptyID},
	}
	for _, tt := range tests {
		if err := c.Upsert(ctx, tt.id, tt.vector, nil); !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: Upsert error = %v, want %v", tt.name, err, tt.wantErr)
		}
	}

	got, err := c.Get(ctx, "w1")
	if err != nil || !slices.Equal(got, axisVec(0)) {
		t.Errorf("Get(w1) = %v, %v", got, err)
	}
	if _, err := c.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(nope) error = %v, want ErrNotFound", err)
	}

	matches, err := c.Query(ctx, axisVec(0), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 || matches[0].ID != "w1" || matches[0].Metadata["name"] != "Merlot" {
		t.Errorf("Query = %+v", matches)
	}
	if _, err := c.Query(ctx, []float32{1}, 5); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Query with short vector error = %v", err)
	}

	if err := c.Delete(ctx, "w1"); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "w1"); err != nil {
		t.Errorf("second Delete should be a no-op: %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCollectionsAreIsolated(t *testing.T) {
	t.Parallel()

	s := newMemStore(t, 8)
	ctx := context.Background()
	products, _, err := s.GetOrCreateCollection(ctx, ProductsCollection)
	if err != nil {
		t.Fatal(err)
	}
	prefs, _, err := s.GetOrCreateCollection(ctx, PreferencesCollection)
	if err != nil {
		t.Fatal(err)
	}

	if err := products.Upsert(ctx, "same", axisVec(0), nil); err != nil {
		t.Fatal(err)
	}
	if err := prefs.Upsert(ctx, "same", axisVec(1), nil); err != nil {
		t.Fatal(err)
	}

	pv, err := products.Get(ctx, "same")
	if err != nil {
		t.Fatal(err)
	}
	uv, err := prefs.Get(ctx, "same")
	if err != nil {
		t.Fatal(err)
	}
	if slices.Equal(pv, uv) {
		t.Error("collections share storage")
	}

	names, err := s.Collections()
	if err != nil {
		t.Fatal(err)
	}
	slices.Sort(names)
	if !slices.Equal(names, []string{ProductsCollection, PreferencesCollection}) {
		t.Errorf("Collections() = %v", names)
	}
}

func TestDeleteCollection(t *testing.T) {
	t.Parallel()

	s := newMemStore(t, 8)
	ctx := context.Background()
	c, _, _ := s.GetOrCreateCollection(ctx, ProductsCollection)
	_ = c.Upsert(ctx, "w1", axisVec(0), nil)

	if err := s.DeleteCollection(ctx, ProductsCollection); err != nil {
		t.Fatal(err)
	}
	if err := c.Upsert(ctx, "w2", axisVec(1), nil); !errors.Is(err, ErrCollectionDeleted) {
		t.Errorf("Upsert on deleted handle error = %v", err)
	}

	fresh, status, err := s.GetOrCreateCollection(ctx, ProductsCollection)
	if err != nil || status != CollectionCreated {
		t.Fatalf("recreate = %v, %v", status, err)
	}
	if fresh.Len() != 0 {
		t.Errorf("recreated collection has %d vectors", fresh.Len())
	}
	if err := s.DeleteCollection(ctx, "never-existed"); err != nil {
		t.Errorf("deleting absent collection: %v", err)
	}
}

func TestCollectionPersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	open := func(dim int) *Store {
		db, err := database.Open(database.Options{Path: dir})
		if err != nil {
			t.Fatal(err)
		}
		s, err := NewStore(db, Options{Dimension: dim}, zerolog.Nop())
		if err != nil {
			t.Fatal(err)
		}
		return s
	}

	s := open(8)
	c, _, _ := s.GetOrCreateCollection(ctx, ProductsCollection)
	_ = c.Upsert(ctx, "w1", axisVec(3), map[string]string{"price": "9.5"})
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s = open(8)
	c, status, err := s.GetOrCreateCollection(ctx, ProductsCollection)
	if err != nil || status != CollectionExisting {
		t.Fatalf("reopen = %v, %v", status, err)
	}
	matches, _ := c.Query(ctx, axisVec(3), 1)
	if len(matches) != 1 || matches[0].ID != "w1" || matches[0].Metadata["price"] != "9.5" {
		t.Errorf("Query after reopen = %+v", matches)
	}
	_ = s.Close()

	s = open(16)
	defer s.Close()
	if _, _, err := s.GetOrCreateCollection(ctx, ProductsCollection); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("reopen with new dimension error = %v, want ErrDimensionMismatch", err)
	}
}
