// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package encoder

import (
	"context"

	"github.com/cespare/xxhash/v2"

	"github.com/tomtom215/sommelier/internal/cache"
	"github.com/tomtom215/sommelier/internal/metrics"
)

// CachedEmbedder memoises another Embedder. Preference recomputation embeds
// the same liked products on every vote, so most lookups hit.
//
// Keys are the 64-bit xxhash of the text. Returned slices are copies; callers
// may modify them.
type CachedEmbedder struct {
	next  Embedder
	cache *cache.LRU[uint64, []float32]
}

// NewCachedEmbedder wraps next with an LRU cache of size entries.
func NewCachedEmbedder(next Embedder, size int) *CachedEmbedder {
	return &CachedEmbedder{
		next:  next,
		cache: cache.NewLRU[uint64, []float32](size, 0),
	}
}

// Embed implements Embedder. Failures are not cached.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := xxhash.Sum64String(text)
	if v, ok := c.cache.Get(key); ok {
		metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
		return append([]float32(nil), v...), nil
	}
	metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()

	v, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, append([]float32(nil), v...))
	return v, nil
}

// Dimensions implements Embedder.
func (c *CachedEmbedder) Dimensions() int { return c.next.Dimensions() }

// Model implements Embedder.
func (c *CachedEmbedder) Model() string { return c.next.Model() }

// Stats exposes the cache hit and miss counts.
func (c *CachedEmbedder) Stats() (hits, misses int64, size int) {
	return c.cache.Stats()
}
