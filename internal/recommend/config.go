// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package recommend

import (
	"errors"
	"fmt"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// DislikeWeight scales the disliked centroid subtracted from the liked
	// centroid.
	DislikeWeight float64 `json:"dislike_weight"`

	// EmbedWorkers bounds concurrent embedding calls during preference
	// computation and ingestion.
	EmbedWorkers int `json:"embed_workers"`

	// Seed seeds the sampling RNG. Zero seeds from the clock.
	Seed int64 `json:"seed"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultResults is used by callers that do not specify a count.
	DefaultResults int `json:"default_results"`

	// MaxResults caps the count of a single request.
	MaxResults int `json:"max_results"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Limits: LimitsConfig{
			DefaultResults: 3,
			MaxResults:     100,
		},
		DislikeWeight: 0.5,
		EmbedWorkers:  4,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Limits.DefaultResults < 0 {
		errs = append(errs, fmt.Errorf("limits.default_results must be >= 0, got %d", c.Limits.DefaultResults))
	}
	if c.Limits.MaxResults < 1 {
		errs = append(errs, fmt.Errorf("limits.max_results must be >= 1, got %d", c.Limits.MaxResults))
	}
	if c.Limits.DefaultResults > c.Limits.MaxResults {
		errs = append(errs, fmt.Errorf("limits.default_results (%d) exceeds limits.max_results (%d)",
			c.Limits.DefaultResults, c.Limits.MaxResults))
	}
	if c.DislikeWeight < 0 {
		errs = append(errs, fmt.Errorf("dislike_weight must be >= 0, got %v", c.DislikeWeight))
	}
	if c.EmbedWorkers < 1 {
		errs = append(errs, fmt.Errorf("embed_workers must be >= 1, got %d", c.EmbedWorkers))
	}

	return errors.Join(errs...)
}
