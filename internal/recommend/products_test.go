// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package recommend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tomtom215/sommelier/internal/encoder"
	"github.com/tomtom215/sommelier/internal/models"
	"github.com/tomtom215/sommelier/internal/vectorindex"
)

func TestAddProductIsRetrievableFromStoreAndIndex(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, WithIDGenerator(func() string { return "generated-1" }))
	ctx := context.Background()

	p, err := env.engine.AddProduct(ctx, ProductInput{
		Name:     "Malbec",
		Category: "Red Wine",
		Price:    15.5,
		Country:  models.StringPtr("Argentina"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != "generated-1" {
		t.Errorf("ID = %q, want generated-1", p.ID)
	}
	if p.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
	if !env.products.Contains(p.ID) {
		t.Error("product missing from catalog")
	}
	if _, err := env.engine.productCollection().Get(ctx, p.ID); err != nil {
		t.Errorf("product missing from index: %v", err)
	}
	meta, _ := env.engine.productCollection().Metadata(p.ID)
	if meta["name"] != "Malbec" || meta["country"] != "Argentina" || meta["product_id"] != p.ID {
		t.Errorf("index metadata = %v", meta)
	}
}

func TestAddProductRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.add(t, "taken", "Merlot", "Red Wine")

	tests := []struct {
		name    string
		in      ProductInput
		wantErr error
	}{
		{"empty name", ProductInput{Category: "Red Wine"}, ErrInvalidProduct},
		{"blank name", ProductInput{Name: "  "}, ErrInvalidProduct},
		{"negative price", ProductInput{Name: "x", Price: -1}, ErrInvalidProduct},
		{"duplicate id", ProductInput{ID: "taken", Name: "Other"}, ErrProductExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.engine.AddProduct(context.Background(), tt.in); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddProduct() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if env.products.Len() != 1 {
		t.Errorf("catalog has %d products, want 1", env.products.Len())
	}
}

func TestAddProductEmbeddingFailureStoresNothing(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.embedder.fail.Store(true)

	if _, err := env.engine.AddProduct(context.Background(), ProductInput{ID: "a", Name: "Merlot"}); err == nil {
		t.Fatal("AddProduct should fail when embedding fails")
	}
	if env.products.Len() != 0 || env.engine.productCollection().Len() != 0 {
		t.Error("failed add left state behind")
	}
}

func TestAddProductIndexFailureRollsBackCatalog(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	// Invalidate the engine's handle behind its back.
	if err := env.vectors.DeleteCollection(ctx, vectorindex.ProductsCollection); err != nil {
		t.Fatal(err)
	}

	_, err := env.engine.AddProduct(ctx, ProductInput{ID: "a", Name: "Merlot"})
	if !errors.Is(err, vectorindex.ErrCollectionDeleted) {
		t.Fatalf("AddProduct() error = %v, want ErrCollectionDeleted", err)
	}
	if env.products.Contains("a") {
		t.Error("catalog entry should be rolled back after index failure")
	}
}

func TestDeleteProduct(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.add(t, "a", "Merlot", "Red Wine")
	env.add(t, "b", "Riesling", "White Wine")

	if err := env.engine.DeleteProduct(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if env.products.Contains("a") {
		t.Error("a still in catalog")
	}
	if _, err := env.engine.productCollection().Get(ctx, "a"); !errors.Is(err, vectorindex.ErrNotFound) {
		t.Errorf("a still in index: %v", err)
	}

	if err := env.engine.DeleteProduct(ctx, "never-existed"); err != nil {
		t.Errorf("deleting unknown id should succeed: %v", err)
	}
	if got := productIDs(env.engine.Products()); len(got) != 1 || got[0] != "b" {
		t.Errorf("Products() after deletes = %v", got)
	}

	if err := env.engine.DeleteProduct(ctx, ""); !errors.Is(err, ErrEmptyProductID) {
		t.Errorf("DeleteProduct(\"\") error = %v", err)
	}
}

func TestDeleteProductSwallowsIndexFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.add(t, "a", "Merlot", "Red Wine")
	if err := env.vectors.DeleteCollection(ctx, vectorindex.ProductsCollection); err != nil {
		t.Fatal(err)
	}

	if err := env.engine.DeleteProduct(ctx, "a"); err != nil {
		t.Errorf("index failure should not surface: %v", err)
	}
	if env.products.Contains("a") {
		t.Error("catalog delete should still happen")
	}
}

const ingestCSV = `permanent_id,title,description,price,category,subcategory,country,brand,alcohol_content,rating,image_url
1,Old Vine Zin,Jammy,21.00,Wine,Red Wine,USA,Ridge,15,4.5,
2,Sancerre,Flinty,not-a-price,Wine,White Wine,France,Domaine,12.5,4.1,
3,,Untitled,9.99,Wine,Red Wine,Italy,X,13,3,
2,Sancerre again,Repeated id,30,Wine,White Wine,France,Domaine,12.5,4.1,
4,Bad Batch,POISON,10,Wine,Red Wine,Spain,Y,13,2,
5,Cava,Bubbles,12,Wine,Sparkling Wine,Spain,Z,11.5,3.9,
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "wines.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProductsFromCSV(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.add(t, "5", "Existing Cava", "Sparkling Wine")
	ctx := context.Background()

	stats, err := env.engine.LoadProductsFromCSV(ctx, writeCSV(t, ingestCSV))
	if err != nil {
		t.Fatal(err)
	}

	want := struct{ rows, added, skipped, failed int }{6, 2, 3, 1}
	if stats.Rows != want.rows || stats.Added != want.added || stats.Skipped != want.skipped || stats.Failed != want.failed {
		t.Errorf("stats = %+v, want rows=%d added=%d skipped=%d failed=%d",
			stats, want.rows, want.added, want.skipped, want.failed)
	}

	sancerre, ok := env.products.Get("2")
	if !ok {
		t.Fatal("row 2 not ingested")
	}
	if sancerre.Price != 0 {
		t.Errorf("unparseable price = %v, want 0", sancerre.Price)
	}
	if sancerre.Name != "Sancerre" {
		t.Errorf("first occurrence should win, got %q", sancerre.Name)
	}
	if sancerre.Country != nil {
		t.Errorf("Country = %q, want nil for CSV rows", *sancerre.Country)
	}
	if text := encoder.EncodeText(&sancerre); strings.Contains(text, "Country:") {
		t.Errorf("embedded text has a country segment: %q", text)
	}
	meta, ok := env.engine.productCollection().Metadata("2")
	if !ok || meta["country"] != "France" || meta["rating"] != "4.1" || meta["alcohol_content"] != "12.5" {
		t.Errorf("index metadata = %v, want country France, rating 4.1, alcohol 12.5", meta)
	}
	for _, id := range []string{"1", "2"} {
		if _, err := env.engine.productCollection().Get(ctx, id); err != nil {
			t.Errorf("ingested %s missing from index: %v", id, err)
		}
	}
	if env.products.Contains("4") {
		t.Error("row that failed to embed should not be stored")
	}
	if existing, _ := env.products.Get("5"); existing.Name != "Existing Cava" {
		t.Error("existing product was overwritten")
	}
}

func TestLoadProductsFromCSVMissingFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := env.engine.LoadProductsFromCSV(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestBootstrapSeedsSamplesWhenEmpty(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	res, err := env.engine.Bootstrap(context.Background(), BootstrapOptions{
		CSVPath: filepath.Join(t.TempDir(), "missing.csv"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Samples != 3 || res.Products != 3 || res.Ingest != nil {
		t.Errorf("result = %+v", res)
	}

	names := map[string]bool{}
	for _, p := range env.engine.Products() {
		names[p.Name] = true
	}
	for _, want := range []string{"Cabernet Sauvignon", "Chardonnay", "Pinot Noir"} {
		if !names[want] {
			t.Errorf("sample %q missing", want)
		}
	}

	// A second bootstrap leaves the catalog alone.
	res, err = env.engine.Bootstrap(context.Background(), BootstrapOptions{})
	if err != nil || res.Samples != 0 || res.Products != 3 {
		t.Errorf("second bootstrap = %+v, %v", res, err)
	}
}

func TestBootstrapResetAndIngest(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.add(t, "old", "Old Wine", "Red Wine")
	if _, err := env.engine.RecordFeedback(ctx, "u1", "old", "up"); err != nil {
		t.Fatal(err)
	}

	res, err := env.engine.Bootstrap(ctx, BootstrapOptions{Reset: true, CSVPath: writeCSV(t, ingestCSV)})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Reset || res.Ingest == nil || res.Ingest.Added != 3 || res.Samples != 0 {
		t.Errorf("result = %+v ingest=%+v", res, res.Ingest)
	}
	if env.products.Contains("old") {
		t.Error("reset should clear the catalog")
	}
	if _, err := env.engine.productCollection().Get(ctx, "old"); err == nil {
		t.Error("reset should clear product vectors")
	}
	if _, err := env.engine.preferenceCollection().Get(ctx, "u1"); err == nil {
		t.Error("reset should clear preference vectors")
	}
	if uf := env.engine.UserFeedback("u1"); len(uf.Likes) != 1 {
		t.Errorf("feedback should survive reset, got %+v", uf)
	}
}
