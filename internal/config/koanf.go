// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"sommelier.yaml",
	"sommelier.yml",
	"/etc/sommelier/config.yaml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "SOMMELIER_CONFIG"

const envPrefix = "SOMMELIER_"

func defaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:         "./data",
			Backend:     BackendFile,
			ProductsDoc: "products.json",
			FeedbackDoc: "user_feedback.json",
		},
		Redis: RedisConfig{
			Addr:      "127.0.0.1:6379",
			KeyPrefix: "sommelier:",
		},
		Index: IndexConfig{
			Dir:            "./data/index",
			TierThreshold:  1000,
			HNSW:           HNSWConfig{M: 16, EfSearch: 100},
			GCInterval:     10 * time.Minute,
			GCDiscardRatio: 0.5,
		},
		Embedding: EmbeddingConfig{
			Provider:   ProviderHashing,
			Dimensions: 384,
			Model:      "all-MiniLM-L6-v2",
			Timeout:    30 * time.Second,
			RateBurst:  1,
			CacheSize:  4096,
			Breaker: BreakerConfig{
				MaxFailures: 5,
				OpenTimeout: 30 * time.Second,
			},
		},
		Recommend: RecommendConfig{
			DefaultResults:  3,
			MaxResults:      100,
			DislikeWeight:   0.5,
			EmbedWorkers:    4,
			RefreshInterval: time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			MetricsAddr:     ":9464",
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Default returns the built-in configuration without reading any file or
// environment variable.
func Default() *Config {
	return defaultConfig()
}

// LoadWithKoanf loads configuration from defaults, then the config file,
// then SOMMELIER_* environment variables, and validates the result.
// A non-empty path must exist; an empty path searches SOMMELIER_CONFIG and
// DefaultConfigPaths and tolerates finding nothing.
func LoadWithKoanf(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envMappings maps lower-cased variable names, prefix stripped, to config paths.
var envMappings = map[string]string{
	"data_dir":     "data.dir",
	"data_backend": "data.backend",
	"products_doc": "data.products_doc",
	"feedback_doc": "data.feedback_doc",

	"redis_addr":       "redis.addr",
	"redis_password":   "redis.password",
	"redis_db":         "redis.db",
	"redis_key_prefix": "redis.key_prefix",

	"index_dir":         "index.dir",
	"index_tier_size":   "index.tier_threshold",
	"hnsw_m":            "index.hnsw.m",
	"hnsw_ef_search":    "index.hnsw.ef_search",
	"index_gc_interval": "index.gc_interval",

	"embedding_provider":   "embedding.provider",
	"embedding_dimensions": "embedding.dimensions",
	"embedding_model":      "embedding.model",
	"embedding_endpoint":   "embedding.endpoint",
	"embedding_api_key":    "embedding.api_key",
	"embedding_timeout":    "embedding.timeout",
	"embedding_rate_limit": "embedding.rate_limit",
	"embedding_rate_burst": "embedding.rate_burst",
	"embedding_cache_size": "embedding.cache_size",
	"breaker_max_failures": "embedding.breaker.max_failures",
	"breaker_open_timeout": "embedding.breaker.open_timeout",

	"default_results":  "recommend.default_results",
	"max_results":      "recommend.max_results",
	"dislike_weight":   "recommend.dislike_weight",
	"seed":             "recommend.seed",
	"embed_workers":    "recommend.embed_workers",
	"refresh_interval": "recommend.refresh_interval",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"metrics_addr":     "server.metrics_addr",
	"shutdown_timeout": "server.shutdown_timeout",
}

// envTransformFunc maps SOMMELIER_* variables to config paths. Unmapped
// variables return "" and are ignored, so only documented names take effect.
//
// Examples:
//   - SOMMELIER_DATA_BACKEND -> data.backend
//   - SOMMELIER_HNSW_EF_SEARCH -> index.hnsw.ef_search
//   - SOMMELIER_LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return envMappings[key]
}
