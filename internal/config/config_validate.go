// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package config

import (
	"fmt"
	"strings"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateData(); err != nil {
		return err
	}
	if err := c.validateIndex(); err != nil {
		return err
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateData() error {
	switch c.Data.Backend {
	case BackendFile, BackendBadger:
		if c.Data.Dir == "" {
			return fmt.Errorf("data.dir is required for the %s backend", c.Data.Backend)
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("data.backend must be one of file, badger, redis (got %q)", c.Data.Backend)
	}
	if c.Data.ProductsDoc == "" || c.Data.FeedbackDoc == "" {
		return fmt.Errorf("data.products_doc and data.feedback_doc are required")
	}
	if c.Data.ProductsDoc == c.Data.FeedbackDoc {
		return fmt.Errorf("data.products_doc and data.feedback_doc must differ")
	}
	return nil
}

func (c *Config) validateIndex() error {
	if c.Index.TierThreshold < 0 {
		return fmt.Errorf("index.tier_threshold must be >= 0 (got %d)", c.Index.TierThreshold)
	}
	if c.Index.HNSW.M < 2 {
		return fmt.Errorf("index.hnsw.m must be >= 2 (got %d)", c.Index.HNSW.M)
	}
	if c.Index.HNSW.EfSearch < 1 {
		return fmt.Errorf("index.hnsw.ef_search must be >= 1 (got %d)", c.Index.HNSW.EfSearch)
	}
	if c.Index.GCDiscardRatio <= 0 || c.Index.GCDiscardRatio >= 1 {
		return fmt.Errorf("index.gc_discard_ratio must be in (0, 1) (got %v)", c.Index.GCDiscardRatio)
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive (got %d)", c.Embedding.Dimensions)
	}
	if c.Embedding.CacheSize < 0 {
		return fmt.Errorf("embedding.cache_size must be >= 0")
	}
	switch c.Embedding.Provider {
	case ProviderHashing:
		return nil
	case ProviderHTTP:
		if c.Embedding.Endpoint == "" {
			return fmt.Errorf("embedding.endpoint is required for the http provider")
		}
		if c.Embedding.Timeout <= 0 {
			return fmt.Errorf("embedding.timeout must be positive")
		}
		if c.Embedding.RateLimit < 0 {
			return fmt.Errorf("embedding.rate_limit must be >= 0")
		}
		return nil
	default:
		return fmt.Errorf("embedding.provider must be hashing or http (got %q)", c.Embedding.Provider)
	}
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.MaxResults <= 0 {
		return fmt.Errorf("recommend.max_results must be positive (got %d)", r.MaxResults)
	}
	if r.DefaultResults < 0 || r.DefaultResults > r.MaxResults {
		return fmt.Errorf("recommend.default_results must be in [0, %d] (got %d)", r.MaxResults, r.DefaultResults)
	}
	if r.DislikeWeight < 0 {
		return fmt.Errorf("recommend.dislike_weight must be >= 0 (got %v)", r.DislikeWeight)
	}
	if r.EmbedWorkers <= 0 {
		return fmt.Errorf("recommend.embed_workers must be positive (got %d)", r.EmbedWorkers)
	}
	if r.RefreshInterval < 0 {
		return fmt.Errorf("recommend.refresh_interval must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error (got %q)", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be json or console (got %q)", c.Logging.Format)
	}
	return nil
}
