// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/sommelier/internal/logging"
	"github.com/tomtom215/sommelier/internal/metrics"
	"github.com/tomtom215/sommelier/internal/models"
	"github.com/tomtom215/sommelier/internal/vectorindex"
)

// Recommend returns up to req.N products for req.UserID, nearest to the
// user's preference first, then a random backfill. Excluded ids never
// appear and no product appears twice. Users without a preference get a
// random sample of the catalog.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) ([]models.Product, error) {
	start := time.Now()

	if req.N < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, req.N)
	}
	if req.N == 0 {
		return []models.Product{}, nil
	}
	n := min(req.N, e.config.Limits.MaxResults)

	logger := logging.WithCorrelation(ctx, e.logger).With().
		Str("user_id", req.UserID).
		Int("n", n).
		Int("excluded", len(req.ExcludeIDs)).
		Logger()

	excluded := toSet(req.ExcludeIDs)

	pref, ok, err := e.preferenceFor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		out := e.sample(e.available(excluded, nil), n)
		metrics.RecordRecommendation(time.Since(start), 0, 0, len(out))
		logger.Debug().Int("returned", len(out)).Msg("No preference; random recommendations")
		return out, nil
	}

	matches, err := e.productCollection().Query(ctx, pref, n+len(excluded))
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}

	out := make([]models.Product, 0, n)
	chosen := make(map[string]struct{}, n)
	for _, m := range matches {
		if len(out) == n {
			break
		}
		if _, skip := excluded[m.ID]; skip {
			continue
		}
		if _, dup := chosen[m.ID]; dup {
			continue
		}
		p, found := e.products.Get(m.ID)
		if !found {
			continue
		}
		chosen[m.ID] = struct{}{}
		out = append(out, p)
	}
	ranked := len(out)

	if len(out) < n {
		out = append(out, e.sample(e.available(excluded, chosen), n-len(out))...)
	}

	metrics.RecordRecommendation(time.Since(start), ranked, len(out)-ranked, 0)
	logger.Debug().
		Int("ranked", ranked).
		Int("backfill", len(out)-ranked).
		Msg("Recommendations ready")
	return out, nil
}

// preferenceFor returns the stored preference vector, computing it on a
// miss. Concurrent misses for one user share a single computation.
func (e *Engine) preferenceFor(ctx context.Context, userID string) ([]float32, bool, error) {
	if userID == "" {
		return nil, false, nil
	}

	vec, err := e.preferenceCollection().Get(ctx, userID)
	if err == nil {
		return vec, true, nil
	}
	if !errors.Is(err, vectorindex.ErrNotFound) {
		return nil, false, fmt.Errorf("load preference for %s: %w", userID, err)
	}

	type result struct {
		vec []float32
		ok  bool
	}
	v, err, _ := e.prefFlight.Do(userID, func() (interface{}, error) {
		unlock := e.userLocks.Lock(userID)
		defer unlock()
		vec, ok, err := e.refreshLocked(ctx, userID)
		return result{vec: vec, ok: ok}, err
	})
	if err != nil {
		return nil, false, err
	}
	r := v.(result) //nolint:errcheck,forcetypeassert // only result is ever stored
	return r.vec, r.ok, nil
}

// available returns catalog products in neither skip set, in catalog order.
func (e *Engine) available(skip, alsoSkip map[string]struct{}) []models.Product {
	all := e.products.All()
	out := all[:0]
	for _, p := range all {
		if _, ok := skip[p.ID]; ok {
			continue
		}
		if _, ok := alsoSkip[p.ID]; ok {
			continue
		}
		out = append(out, p)
	}
	return out
}

// sample returns min(k, len(pool)) distinct products from pool in random
// order. pool is reordered in place.
func (e *Engine) sample(pool []models.Product, k int) []models.Product {
	k = min(k, len(pool))
	if k <= 0 {
		return []models.Product{}
	}

	e.rngMu.Lock()
	for i := 0; i < k; i++ {
		j := i + e.rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	e.rngMu.Unlock()

	out := make([]models.Product, k)
	copy(out, pool[:k])
	return out
}
