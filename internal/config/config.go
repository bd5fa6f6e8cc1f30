// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package config loads Sommelier configuration.
//
// Loading order (Koanf v2), later layers override earlier ones:
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables (SOMMELIER_*)
package config

import "time"

// Storage backends for the product and feedback documents.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// Embedding providers.
const (
	ProviderHashing = "hashing"
	ProviderHTTP    = "http"
)

// Config holds all application configuration.
type Config struct {
	Data      DataConfig      `koanf:"data"`
	Redis     RedisConfig     `koanf:"redis"`
	Index     IndexConfig     `koanf:"index"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Recommend RecommendConfig `koanf:"recommend"`
	Logging   LoggingConfig   `koanf:"logging"`
	Server    ServerConfig    `koanf:"server"`
}

// DataConfig controls where the product and feedback documents live.
type DataConfig struct {
	// Dir is the base directory for file and badger backends.
	// Default: ./data
	Dir string `koanf:"dir"`

	// Backend selects the document store: file, badger or redis.
	// Default: file
	Backend string `koanf:"backend"`

	// ProductsDoc is the document name for the product catalog.
	// With the file backend this is a file name under Dir.
	// Default: products.json
	ProductsDoc string `koanf:"products_doc"`

	// FeedbackDoc is the document name for user feedback.
	// Default: user_feedback.json
	FeedbackDoc string `koanf:"feedback_doc"`
}

// RedisConfig configures the redis document backend.
type RedisConfig struct {
	Addr      string `koanf:"addr"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"key_prefix"`
}

// IndexConfig configures the vector index.
type IndexConfig struct {
	// Dir is the badger directory for persisted vectors.
	// Empty keeps the index in memory only.
	// Default: ./data/index
	Dir string `koanf:"dir"`

	// TierThreshold is the collection size at which exact search is
	// replaced by an HNSW graph. Default: 1000
	TierThreshold int `koanf:"tier_threshold"`

	HNSW HNSWConfig `koanf:"hnsw"`

	// GCInterval is how often the serve command runs value log GC.
	// Default: 10m
	GCInterval time.Duration `koanf:"gc_interval"`

	// GCDiscardRatio is passed to badger's RunValueLogGC. Default: 0.5
	GCDiscardRatio float64 `koanf:"gc_discard_ratio"`
}

// HNSWConfig holds graph parameters.
type HNSWConfig struct {
	M        int `koanf:"m"`
	EfSearch int `koanf:"ef_search"`
}

// EmbeddingConfig configures the text embedder.
type EmbeddingConfig struct {
	// Provider is hashing (local, deterministic) or http (OpenAI-compatible).
	// Default: hashing
	Provider string `koanf:"provider"`

	// Dimensions is the fixed vector dimension. Default: 384
	Dimensions int `koanf:"dimensions"`

	// Model is the model name sent to the http provider.
	// Default: all-MiniLM-L6-v2
	Model string `koanf:"model"`

	// Endpoint is the base URL of the http provider.
	Endpoint string `koanf:"endpoint"`

	APIKey string `koanf:"api_key"`

	// Timeout bounds each embedding request. Default: 30s
	Timeout time.Duration `koanf:"timeout"`

	// RateLimit is requests per second to the http provider; 0 disables.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// CacheSize is the number of embeddings kept in the LRU cache; 0 disables.
	// Default: 4096
	CacheSize int `koanf:"cache_size"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig configures the circuit breaker around the http provider.
type BreakerConfig struct {
	// MaxFailures is the consecutive failure count that opens the breaker.
	// Default: 5
	MaxFailures uint32 `koanf:"max_failures"`

	// OpenTimeout is how long the breaker stays open. Default: 30s
	OpenTimeout time.Duration `koanf:"open_timeout"`
}

// RecommendConfig configures the recommendation engine.
type RecommendConfig struct {
	// DefaultResults is used when a request does not specify a count.
	// Default: 5
	DefaultResults int `koanf:"default_results"`

	// MaxResults caps the number of results per request. Default: 100
	MaxResults int `koanf:"max_results"`

	// DislikeWeight scales the disliked centroid. Default: 0.5
	DislikeWeight float64 `koanf:"dislike_weight"`

	// Seed for the random source used by fallback and backfill.
	// 0 seeds from the clock.
	Seed int64 `koanf:"seed"`

	// EmbedWorkers bounds concurrent embedding during preference
	// computation. Default: 4
	EmbedWorkers int `koanf:"embed_workers"`

	// RefreshInterval is how often serve rebuilds every stored preference.
	// 0 disables. Default: 1h
	RefreshInterval time.Duration `koanf:"refresh_interval"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	// MetricsAddr is the listen address for /metrics and /healthz.
	// Default: :9464
	MetricsAddr string `koanf:"metrics_addr"`

	// ShutdownTimeout bounds graceful shutdown. Default: 10s
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}
