// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package encoder turns products into text and text into vectors.
//
// EncodeText is pure and deterministic. Embedder implementations map text to
// a vector of a dimension fixed for the life of the process; the index and
// the preference aggregator rely on every vector sharing that dimension.
package encoder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sommelier/internal/config"
	"github.com/tomtom215/sommelier/internal/metrics"
)

// ErrDimensionMismatch is returned when a provider answers with a vector of
// the wrong length.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Embedder maps text to a fixed-dimension vector.
type Embedder interface {
	// Embed returns the vector for text. Errors are returned to the caller
	// unchanged in kind and are not retried.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions is the length of every vector Embed returns.
	Dimensions() int

	// Model names the embedding model, for logs.
	Model() string
}

// New builds the embedder described by cfg: the configured provider wrapped
// with latency metrics and, when cfg.CacheSize > 0, an LRU cache.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(cfg config.EmbeddingConfig, logger zerolog.Logger) (Embedder, error) {
	var base Embedder
	switch cfg.Provider {
	case config.ProviderHashing, "":
		h, err := NewHashingEmbedder(cfg.Dimensions)
		if err != nil {
			return nil, err
		}
		base = h
	case config.ProviderHTTP:
		h, err := NewHTTPEmbedder(HTTPConfig{
			Endpoint:    cfg.Endpoint,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Dimensions:  cfg.Dimensions,
			Timeout:     cfg.Timeout,
			RateLimit:   cfg.RateLimit,
			RateBurst:   cfg.RateBurst,
			MaxFailures: cfg.Breaker.MaxFailures,
			OpenTimeout: cfg.Breaker.OpenTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		base = h
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	var e Embedder = &observed{next: base, provider: cfg.Provider}
	if cfg.CacheSize > 0 {
		e = NewCachedEmbedder(e, cfg.CacheSize)
	}

	logger.Debug().
		Str("component", "encoder").
		Str("provider", cfg.Provider).
		Str("model", e.Model()).
		Int("dimensions", e.Dimensions()).
		Int("cache_size", cfg.CacheSize).
		Msg("Embedder ready")
	return e, nil
}

// observed records latency and failures of the wrapped embedder.
type observed struct {
	next     Embedder
	provider string
}

func (o *observed) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	v, err := o.next.Embed(ctx, text)
	metrics.RecordEmbedding(o.provider, time.Since(start), err)
	return v, err
}

func (o *observed) Dimensions() int { return o.next.Dimensions() }
func (o *observed) Model() string   { return o.next.Model() }
