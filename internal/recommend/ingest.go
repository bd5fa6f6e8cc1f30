// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package recommend

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/sommelier/internal/ingest"
	"github.com/tomtom215/sommelier/internal/metrics"
	"github.com/tomtom215/sommelier/internal/models"
)

// LoadProductsFromCSV ingests a catalog export. Rows without a title or
// whose id is already in the catalog are skipped; rows that fail to parse,
// embed or index are logged and counted as failed. Neither stops the run.
//
// Accepted rows are committed to the catalog in one write at the end. If
// that write fails the rows' vectors are removed again and the error is
// returned.
func (e *Engine) LoadProductsFromCSV(ctx context.Context, path string) (ingest.Stats, error) {
	var (
		stats   ingest.Stats
		pending []models.Product
		metas   []map[string]string
		lines   []int
		seen    = make(map[string]struct{})
	)
	logger := e.logger.With().Str("path", path).Logger()

	e.catalogMu.Lock()
	defer e.catalogMu.Unlock()

	readErr := ingest.ReadFile(ctx, path, func(row ingest.Row) error {
		stats.Rows++
		p, err := ingest.MapRow(row, e.newID)
		if errors.Is(err, ingest.ErrEmptyName) {
			stats.Skipped++
			return nil
		}
		if err != nil {
			stats.Failed++
			logger.Warn().Err(err).Int("row", row.Line).Msg("Skipping unmappable row")
			return nil
		}
		if _, dup := seen[p.ID]; dup || e.products.Contains(p.ID) {
			stats.Skipped++
			logger.Debug().Int("row", row.Line).Str("product_id", p.ID).Msg("Skipping duplicate product")
			return nil
		}
		seen[p.ID] = struct{}{}
		pending = append(pending, p)
		metas = append(metas, ingest.IndexMetadata(row, &p))
		lines = append(lines, row.Line)
		return nil
	}, func(line int, err error) {
		stats.Rows++
		stats.Failed++
		logger.Warn().Err(err).Int("row", line).Msg("Skipping malformed row")
	})
	if readErr != nil && len(pending) == 0 {
		return stats, fmt.Errorf("read %s: %w", path, readErr)
	}

	vecs, embedErrs := e.embedAll(ctx, pending)

	coll := e.productCollection()
	accepted := make([]models.Product, 0, len(pending))
	for i := range pending {
		p := &pending[i]
		if embedErrs[i] != nil {
			stats.Failed++
			logger.Warn().Err(embedErrs[i]).Int("row", lines[i]).Str("product_id", p.ID).Msg("Skipping row: embedding failed")
			continue
		}
		if err := coll.Upsert(ctx, p.ID, vecs[i], metas[i]); err != nil {
			stats.Failed++
			logger.Warn().Err(err).Int("row", lines[i]).Str("product_id", p.ID).Msg("Skipping row: indexing failed")
			continue
		}
		accepted = append(accepted, *p)
	}

	if len(accepted) > 0 {
		if _, err := e.products.AddBatch(ctx, accepted); err != nil {
			cleanup := context.WithoutCancel(ctx)
			for i := range accepted {
				if delErr := coll.Delete(cleanup, accepted[i].ID); delErr != nil {
					metrics.ConsistencyDriftTotal.WithLabelValues("ingest").Inc()
					logger.Error().Err(delErr).Str("product_id", accepted[i].ID).Msg("Failed to remove vector after catalog write failure")
				}
			}
			stats.Failed += len(accepted)
			metrics.RecordIngest(stats.Added, stats.Skipped, stats.Failed)
			return stats, fmt.Errorf("store ingested products: %w", err)
		}
	}
	stats.Added = len(accepted)
	metrics.RecordIngest(stats.Added, stats.Skipped, stats.Failed)

	logger.Info().
		Int("rows", stats.Rows).
		Int("added", stats.Added).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Msg("CSV ingestion complete")

	if readErr != nil {
		return stats, fmt.Errorf("read %s: %w", path, readErr)
	}
	return stats, nil
}

// embedAll embeds products with at most EmbedWorkers calls in flight.
// Results and per-product errors are positional; one failure does not
// cancel the others. A cancelled ctx surfaces as each remaining error.
func (e *Engine) embedAll(ctx context.Context, products []models.Product) ([][]float32, []error) {
	vecs := make([][]float32, len(products))
	errs := make([]error, len(products))

	var g errgroup.Group
	g.SetLimit(e.config.EmbedWorkers)
	for i := range products {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			vecs[i], errs[i] = e.embedProduct(ctx, &products[i])
			return nil
		})
	}
	_ = g.Wait()
	return vecs, errs
}
