// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sommelier/internal/metrics"
)

// GarbageCollector compacts a value log.
//
// Satisfied by *database.DB.
type GarbageCollector interface {
	RunGC(discardRatio float64) (int, error)
}

// IndexGCService runs value log GC on the vector index store at a fixed
// interval. GC errors are logged and counted; they never stop the service.
type IndexGCService struct {
	db           GarbageCollector
	interval     time.Duration
	discardRatio float64
	logger       zerolog.Logger
}

// NewIndexGCService creates the GC loop. A non-positive interval defaults
// to ten minutes.
//
//nolint:gocritic // zerolog.Logger is passed by value throughout
func NewIndexGCService(db GarbageCollector, interval time.Duration, discardRatio float64, logger zerolog.Logger) *IndexGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &IndexGCService{
		db:           db,
		interval:     interval,
		discardRatio: discardRatio,
		logger:       logger.With().Str("service", "index-gc").Logger(),
	}
}

// Serve implements suture.Service.
func (s *IndexGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *IndexGCService) runOnce() {
	start := time.Now()
	rewrites, err := s.db.RunGC(s.discardRatio)
	switch {
	case err != nil:
		metrics.IndexGCRuns.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Int("rewrites", rewrites).Msg("index GC failed")
	case rewrites == 0:
		metrics.IndexGCRuns.WithLabelValues("noop").Inc()
		s.logger.Debug().Msg("index GC: nothing to rewrite")
	default:
		metrics.IndexGCRuns.WithLabelValues("rewritten").Inc()
		s.logger.Info().
			Int("rewrites", rewrites).
			Dur("duration", time.Since(start)).
			Msg("index GC complete")
	}
}

// String implements fmt.Stringer.
func (s *IndexGCService) String() string {
	return "index-gc"
}
