// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sommelier/internal/recommend"
)

// PreferenceRebuilder recomputes every stored preference vector.
//
// Satisfied by *recommend.Engine.
type PreferenceRebuilder interface {
	RebuildPreferences(ctx context.Context) (recommend.RebuildStats, error)
}

// PreferenceRefreshConfig holds configuration for PreferenceRefreshService.
type PreferenceRefreshConfig struct {
	// RefreshOnStartup rebuilds once before the first tick.
	RefreshOnStartup bool

	// Interval between rebuilds. Default: 1h
	Interval time.Duration

	// Timeout bounds a single rebuild. Default: 30m
	Timeout time.Duration
}

// PreferenceRefreshService periodically rebuilds user preference vectors so
// that products deleted since the last feedback stop influencing them.
type PreferenceRefreshService struct {
	engine PreferenceRebuilder
	config PreferenceRefreshConfig
	logger zerolog.Logger
}

// NewPreferenceRefreshService creates the refresh loop.
//
//nolint:gocritic // zerolog.Logger is passed by value throughout
func NewPreferenceRefreshService(engine PreferenceRebuilder, cfg PreferenceRefreshConfig, logger zerolog.Logger) *PreferenceRefreshService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	return &PreferenceRefreshService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "preference-refresh").Logger(),
	}
}

// Serve implements suture.Service. A failed rebuild is logged and retried
// on the next tick.
func (s *PreferenceRefreshService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("refresh_on_startup", s.config.RefreshOnStartup).
		Dur("interval", s.config.Interval).
		Msg("preference refresh service starting")

	if s.config.RefreshOnStartup {
		s.refresh(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *PreferenceRefreshService) refresh(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	stats, err := s.engine.RebuildPreferences(runCtx)
	if err != nil {
		s.logger.Warn().Err(err).
			Int("users", stats.Users).
			Int("failed", stats.Failed).
			Msg("preference rebuild failed")
		return
	}
	s.logger.Debug().
		Int("users", stats.Users).
		Dur("duration", time.Since(start)).
		Msg("preference rebuild complete")
}

// String implements fmt.Stringer.
func (s *PreferenceRefreshService) String() string {
	return "preference-refresh"
}
