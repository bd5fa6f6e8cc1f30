// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package recommend

import (
	"context"
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/sommelier/internal/metrics"
)

// addFive adds two reds, one white, one rose and one sparkling wine.
func addFive(t *testing.T, env *testEnv) {
	t.Helper()

	env.add(t, "red1", "Merlot", "Red Wine")
	env.add(t, "red2", "Syrah", "Red Wine")
	env.add(t, "white1", "Riesling", "White Wine")
	env.add(t, "rose1", "Provence", "Rose Wine")
	env.add(t, "spark1", "Cava", "Sparkling Wine")
}

func TestRecommendNewUserGetsRandomSample(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	addFive(t, env)

	got, err := env.engine.Recommend(context.Background(), Request{UserID: "newbie", N: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d products, want 3", len(got))
	}
	assertDistinct(t, got)
	for _, p := range got {
		if !env.products.Contains(p.ID) {
			t.Errorf("%s is not in the catalog", p.ID)
		}
	}
}

func TestRecommendAllExcludedReturnsEmpty(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	addFive(t, env)
	ctx := context.Background()
	all := productIDs(env.engine.Products())

	for _, user := range []string{"newbie", "fan"} {
		if user == "fan" {
			env.vote(t, "fan", "red1", "up")
		}
		got, err := env.engine.Recommend(ctx, Request{UserID: user, N: 3, ExcludeIDs: all})
		if err != nil {
			t.Fatalf("%s: %v", user, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("%s: got %v, want empty non-nil list", user, productIDs(got))
		}
	}
}

func TestRecommendCount(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	addFive(t, env)
	ctx := context.Background()

	got, err := env.engine.Recommend(ctx, Request{UserID: "u", N: 0})
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("N=0: %v, %v", got, err)
	}

	if _, err := env.engine.Recommend(ctx, Request{UserID: "u", N: -1}); !errors.Is(err, ErrInvalidCount) {
		t.Errorf("N=-1 error = %v, want ErrInvalidCount", err)
	}

	got, err = env.engine.Recommend(ctx, Request{UserID: "u", N: 50})
	if err != nil || len(got) != 5 {
		t.Errorf("N larger than catalog: %d products, %v", len(got), err)
	}
}

func TestRecommendCapsAtMaxResults(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	addFive(t, env)
	env.engine.config.Limits.MaxResults = 2

	got, err := env.engine.Recommend(context.Background(), Request{UserID: "u", N: 4})
	if err != nil || len(got) != 2 {
		t.Errorf("got %d products, %v; want 2", len(got), err)
	}
}

func TestRecommendRanksByPreference(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	addFive(t, env)
	ctx := context.Background()

	env.vote(t, "u1", "red1", "up")
	env.vote(t, "u1", "white1", "down")

	got, err := env.engine.Recommend(ctx, Request{UserID: "u1", N: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) > 3 {
		t.Fatalf("got %d products, want at most 3", len(got))
	}
	assertDistinct(t, got)

	ids := productIDs(got)
	if !slices.Contains(ids[:2], "red1") || !slices.Contains(ids[:2], "red2") {
		t.Errorf("reds should rank first, got %v", ids)
	}
	if i := slices.Index(ids, "white1"); i >= 0 && i < 2 {
		t.Errorf("disliked white ranked above closer reds: %v", ids)
	}
}

func TestRecommendHonorsExclusions(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	addFive(t, env)
	ctx := context.Background()
	env.vote(t, "u1", "red1", "up")

	got, err := env.engine.Recommend(ctx, Request{UserID: "u1", N: 3, ExcludeIDs: []string{"red1", "red2"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d products, want 3", len(got))
	}
	assertDistinct(t, got)
	for _, p := range got {
		if p.ID == "red1" || p.ID == "red2" {
			t.Errorf("excluded %s returned", p.ID)
		}
	}
}

func TestRecommendBackfillsWhenIndexIsShort(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	addFive(t, env)
	ctx := context.Background()
	env.vote(t, "u1", "red1", "up")

	// Drop two vectors from the index only; the catalog still has them.
	coll := env.engine.productCollection()
	_ = coll.Delete(ctx, "rose1")
	_ = coll.Delete(ctx, "spark1")

	backfillBefore := testutil.ToFloat64(metrics.RecommendationsTotal.WithLabelValues(metrics.PathBackfill))

	got, err := env.engine.Recommend(ctx, Request{UserID: "u1", N: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 5 {
		t.Fatalf("got %v, want all 5 products", productIDs(got))
	}
	assertDistinct(t, got)
	tail := productIDs(got[3:])
	slices.Sort(tail)
	if !slices.Equal(tail, []string{"rose1", "spark1"}) {
		t.Errorf("backfill = %v, want the unindexed wines", tail)
	}
	if after := testutil.ToFloat64(metrics.RecommendationsTotal.WithLabelValues(metrics.PathBackfill)); after < backfillBefore+2 {
		t.Errorf("backfill counter moved from %v to %v, want +2", backfillBefore, after)
	}
}

func TestRecommendSkipsIndexedButDeletedProducts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	addFive(t, env)
	ctx := context.Background()
	env.vote(t, "u1", "red1", "up")

	// Catalog-only delete leaves an orphan vector behind.
	if _, err := env.products.Delete(ctx, "red2"); err != nil {
		t.Fatal(err)
	}

	got, err := env.engine.Recommend(ctx, Request{UserID: "u1", N: 4})
	if err != nil {
		t.Fatal(err)
	}
	if slices.Contains(productIDs(got), "red2") {
		t.Error("orphan vector resolved to a product")
	}
	if len(got) != 4 {
		t.Errorf("got %d products, want 4", len(got))
	}
}

func TestRecommendComputesMissingPreference(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	addFive(t, env)
	ctx := context.Background()
	env.vote(t, "u1", "spark1", "up")

	// Lose the stored vector; feedback remains.
	if err := env.engine.preferenceCollection().Delete(ctx, "u1"); err != nil {
		t.Fatal(err)
	}

	got, err := env.engine.Recommend(ctx, Request{UserID: "u1", N: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "spark1" {
		t.Errorf("got %v, want spark1 first", productIDs(got))
	}
	if _, err := env.engine.preferenceCollection().Get(ctx, "u1"); err != nil {
		t.Errorf("preference should be stored after lazy compute: %v", err)
	}
}

func TestRecommendAnonymousIsRandom(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	addFive(t, env)

	got, err := env.engine.Recommend(context.Background(), Request{N: 2})
	if err != nil || len(got) != 2 {
		t.Errorf("anonymous: %v, %v", productIDs(got), err)
	}
}

func TestRecommendEmptyCatalog(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	got, err := env.engine.Recommend(context.Background(), Request{UserID: "u", N: 3})
	if err != nil || len(got) != 0 {
		t.Errorf("empty catalog: %v, %v", got, err)
	}
}

func TestRecommendRandomPathIsReproducible(t *testing.T) {
	t.Parallel()

	run := func() []string {
		env := newTestEnv(t, WithRand(rand.New(rand.NewSource(99)))) //nolint:gosec // deterministic test RNG
		addFive(t, env)
		var out []string
		for i := 0; i < 3; i++ {
			got, err := env.engine.Recommend(context.Background(), Request{UserID: "u", N: 2})
			if err != nil {
				t.Fatal(err)
			}
			out = append(out, productIDs(got)...)
		}
		return out
	}

	a, b := run(), run()
	if !slices.Equal(a, b) {
		t.Errorf("same seed gave %v and %v", a, b)
	}
}

func TestSampleIsUniformEnough(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	addFive(t, env)

	counts := map[string]int{}
	for i := 0; i < 500; i++ {
		got := env.engine.sample(env.engine.available(nil, nil), 1)
		counts[got[0].ID]++
	}
	for id, c := range counts {
		if c < 50 {
			t.Errorf("%s drawn %d/500 times", id, c)
		}
	}
	if len(counts) != 5 {
		t.Errorf("only %d products ever drawn: %v", len(counts), counts)
	}
}
