// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sommelier/internal/catalog"
	"github.com/tomtom215/sommelier/internal/database"
	"github.com/tomtom215/sommelier/internal/docstore"
	"github.com/tomtom215/sommelier/internal/feedback"
	"github.com/tomtom215/sommelier/internal/models"
	"github.com/tomtom215/sommelier/internal/vectorindex"
)

// keywordEmbedder places text on a few fixed axes by the wine styles it
// mentions, so nearest-neighbor geometry is predictable in tests. Text
// containing "POISON" fails to embed.
type keywordEmbedder struct {
	calls atomic.Int64
	fail  atomic.Bool
}

var keywordAxes = []string{"red", "white", "rose", "sparkling"}

func (k *keywordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	k.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k.fail.Load() || strings.Contains(text, "POISON") {
		return nil, errors.New("embedding provider unavailable")
	}
	lower := strings.ToLower(text)
	v := make([]float32, len(keywordAxes)+1)
	for i, kw := range keywordAxes {
		if strings.Contains(lower, "category: "+kw) {
			v[i] = 1
		}
	}
	// Name length nudges otherwise identical wines apart.
	v[len(keywordAxes)] = 0.01 * float32(len(text)%7+1)
	return v, nil
}

func (k *keywordEmbedder) Dimensions() int { return len(keywordAxes) + 1 }
func (k *keywordEmbedder) Model() string   { return "keyword-test" }

type testEnv struct {
	engine   *Engine
	products *catalog.Store
	feedback *feedback.Store
	vectors  *vectorindex.Store
	embedder *keywordEmbedder
	backend  docstore.Backend
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	ctx := context.Background()
	backend, err := docstore.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	products := catalog.NewStore(backend, "products.json", zerolog.Nop())
	if err := products.Load(ctx); err != nil {
		t.Fatal(err)
	}
	fb := feedback.NewStore(backend, "user_feedback.json", zerolog.Nop())
	if err := fb.Load(ctx); err != nil {
		t.Fatal(err)
	}

	env := &testEnv{products: products, feedback: fb, embedder: &keywordEmbedder{}, backend: backend}
	env.vectors = newVectorStore(t, env.embedder.Dimensions())
	env.engine = env.newEngine(t, opts...)
	return env
}

func newVectorStore(t *testing.T, dim int) *vectorindex.Store {
	t.Helper()

	db, err := database.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	vs, err := vectorindex.NewStore(db, vectorindex.Options{Dimension: dim}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = vs.Close() })
	return vs
}

func (env *testEnv) newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()

	opts = append([]Option{WithRand(rand.New(rand.NewSource(1)))}, opts...) //nolint:gosec // deterministic test RNG
	e, err := NewEngine(context.Background(), Deps{
		Products: env.products,
		Feedback: env.feedback,
		Vectors:  env.vectors,
		Embedder: env.embedder,
	}, nil, zerolog.Nop(), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func (env *testEnv) add(t *testing.T, id, name, category string) models.Product {
	t.Helper()

	p, err := env.engine.AddProduct(context.Background(), ProductInput{
		ID:       id,
		Name:     name,
		Category: category,
		Price:    10,
	})
	if err != nil {
		t.Fatalf("AddProduct(%s): %v", id, err)
	}
	return p
}

// vote records feedback as test setup.
func (env *testEnv) vote(t *testing.T, userID, productID, direction string) {
	t.Helper()

	if _, err := env.engine.RecordFeedback(context.Background(), userID, productID, direction); err != nil {
		t.Fatalf("RecordFeedback(%s, %s, %s): %v", userID, productID, direction, err)
	}
}

func productIDs(ps []models.Product) []string {
	out := make([]string, len(ps))
	for i := range ps {
		out[i] = ps[i].ID
	}
	return out
}

func assertDistinct(t *testing.T, ps []models.Product) {
	t.Helper()

	seen := map[string]bool{}
	for _, p := range ps {
		if seen[p.ID] {
			t.Fatalf("duplicate id %s in %v", p.ID, productIDs(ps))
		}
		seen[p.ID] = true
	}
}

func TestNewEngineRequiresDeps(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(context.Background(), Deps{}, nil, zerolog.Nop())
	if err == nil {
		t.Fatal("NewEngine without deps should fail")
	}
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	cfg := DefaultConfig()
	cfg.EmbedWorkers = 0
	_, err := NewEngine(context.Background(), Deps{
		Products: env.products, Feedback: env.feedback, Vectors: env.vectors, Embedder: env.embedder,
	}, cfg, zerolog.Nop())
	if err == nil {
		t.Fatal("invalid config should be rejected")
	}
}

func TestNewEngineRebuildsMissingProductVectors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.add(t, "a", "Merlot", "Red Wine")
	env.add(t, "b", "Riesling", "White Wine")

	// Same catalog, brand-new empty vector store.
	env.vectors = newVectorStore(t, env.embedder.Dimensions())
	e := env.newEngine(t)

	for _, id := range []string{"a", "b"} {
		if _, err := e.productCollection().Get(context.Background(), id); err != nil {
			t.Errorf("vector for %s not rebuilt: %v", id, err)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative default", func(c *Config) { c.Limits.DefaultResults = -1 }, true},
		{"zero max", func(c *Config) { c.Limits.MaxResults = 0 }, true},
		{"default above max", func(c *Config) { c.Limits.DefaultResults = 200 }, true},
		{"negative dislike weight", func(c *Config) { c.DislikeWeight = -0.1 }, true},
		{"no workers", func(c *Config) { c.EmbedWorkers = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfigResults(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Limits.DefaultResults != 3 {
		t.Errorf("DefaultResults = %d, want 3", cfg.Limits.DefaultResults)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestKeyedMutex(t *testing.T) {
	t.Parallel()

	km := newKeyedMutex()
	var inside atomic.Int32
	var maxInside atomic.Int32
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func() {
			unlock := km.Lock("u1")
			n := inside.Add(1)
			if n > maxInside.Load() {
				maxInside.Store(n)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			unlock()
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	if maxInside.Load() != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxInside.Load())
	}
	if km.size() != 0 {
		t.Errorf("size() = %d after all unlocks, want 0", km.size())
	}

	// Different keys do not block each other.
	u1 := km.Lock("a")
	u2 := km.Lock("b")
	u2()
	u1()
}

func TestUserFeedbackUnknownUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	uf := env.engine.UserFeedback("ghost")
	if !uf.Empty() {
		t.Errorf("UserFeedback(ghost) = %+v", uf)
	}
}

func TestProductsListsCatalog(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.add(t, "a", "Merlot", "Red Wine")
	env.add(t, "b", "Riesling", "White Wine")

	if got := productIDs(env.engine.Products()); fmt.Sprint(got) != "[a b]" {
		t.Errorf("Products() = %v", got)
	}
	if p, ok := env.engine.Product("b"); !ok || p.Name != "Riesling" {
		t.Errorf("Product(b) = %+v, %v", p, ok)
	}
}
