// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package recommend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tomtom215/sommelier/internal/metrics"
	"github.com/tomtom215/sommelier/internal/models"
	"github.com/tomtom215/sommelier/internal/validation"
	"github.com/tomtom215/sommelier/internal/vectorindex"
)

// AddProduct validates in, embeds it, stores it and indexes it. The stored
// product, with id and creation time assigned, is returned. If indexing
// fails the product is removed from the catalog again.
//
//nolint:gocritic // hugeParam: in passed by value for immutability
func (e *Engine) AddProduct(ctx context.Context, in ProductInput) (models.Product, error) {
	if verr := validation.ValidateStruct(&in); verr != nil {
		return models.Product{}, fmt.Errorf("%w: %s", ErrInvalidProduct, verr.Error())
	}

	p := in.product()
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		p.ID = e.newID()
	}

	e.catalogMu.Lock()
	defer e.catalogMu.Unlock()

	if e.products.Contains(p.ID) {
		return models.Product{}, fmt.Errorf("%w: %s", ErrProductExists, p.ID)
	}

	vec, err := e.embedProduct(ctx, &p)
	if err != nil {
		return models.Product{}, err
	}

	added, err := e.products.Add(ctx, p)
	if err != nil {
		return models.Product{}, fmt.Errorf("store product: %w", err)
	}

	if err := e.productCollection().Upsert(ctx, added.ID, vec, added.Metadata()); err != nil {
		if _, rbErr := e.products.Delete(context.WithoutCancel(ctx), added.ID); rbErr != nil {
			metrics.ConsistencyDriftTotal.WithLabelValues("add").Inc()
			e.logger.Error().Err(rbErr).Str("product_id", added.ID).
				Msg("Failed to roll back catalog entry after index failure")
		}
		return models.Product{}, fmt.Errorf("index product %s: %w", added.ID, err)
	}

	e.logger.Info().
		Str("product_id", added.ID).
		Str("name", added.Name).
		Msg("Product added")
	return added, nil
}

// DeleteProduct removes id from the catalog and the products collection.
// Unknown ids succeed. An index failure is logged and counted but not
// returned; only a failure to persist the catalog is an error.
func (e *Engine) DeleteProduct(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyProductID
	}

	e.catalogMu.Lock()
	defer e.catalogMu.Unlock()

	removed, err := e.products.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}

	if err := e.productCollection().Delete(ctx, id); err != nil {
		metrics.ConsistencyDriftTotal.WithLabelValues("delete").Inc()
		e.logger.Warn().Err(err).Str("product_id", id).
			Msg("Product removed from catalog but not from index")
	}

	e.logger.Info().
		Str("product_id", id).
		Bool("existed", removed).
		Msg("Product deleted")
	return nil
}

// Reindex embeds and indexes every catalog product that has no vector.
// It returns the number of vectors written.
func (e *Engine) Reindex(ctx context.Context) (int, error) {
	coll := e.productCollection()
	var missing []models.Product
	for _, p := range e.products.All() {
		if _, err := coll.Get(ctx, p.ID); err != nil {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	vecs, errs := e.embedAll(ctx, missing)
	written := 0
	for i := range missing {
		if errs[i] != nil {
			return written, errs[i]
		}
		if err := coll.Upsert(ctx, missing[i].ID, vecs[i], missing[i].Metadata()); err != nil {
			return written, fmt.Errorf("index product %s: %w", missing[i].ID, err)
		}
		written++
	}

	e.logger.Info().Int("vectors", written).Msg("Product vectors rebuilt")
	return written, nil
}

// Reset drops both vector collections, recreates them empty and clears the
// catalog. Feedback is kept; preferences are recomputed lazily.
func (e *Engine) Reset(ctx context.Context) error {
	e.catalogMu.Lock()
	defer e.catalogMu.Unlock()

	for _, name := range []string{vectorindex.ProductsCollection, vectorindex.PreferencesCollection} {
		if err := e.vectors.DeleteCollection(ctx, name); err != nil {
			return fmt.Errorf("reset %s collection: %w", name, err)
		}
	}
	if _, err := e.openCollections(ctx); err != nil {
		return err
	}
	if err := e.products.Clear(ctx); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}

	e.logger.Info().Msg("Catalog and vector collections reset")
	return nil
}

// Bootstrap prepares a fresh installation: optional reset, optional CSV
// ingestion, then the sample wines if the catalog is still empty.
//
//nolint:gocritic // hugeParam: opts passed by value for immutability
func (e *Engine) Bootstrap(ctx context.Context, opts BootstrapOptions) (BootstrapResult, error) {
	res := BootstrapResult{Reset: opts.Reset}

	if opts.Reset {
		if err := e.Reset(ctx); err != nil {
			return res, err
		}
	}

	if opts.CSVPath != "" {
		stats, err := e.LoadProductsFromCSV(ctx, opts.CSVPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			e.logger.Warn().Str("path", opts.CSVPath).Msg("CSV file not found, skipping ingestion")
		case err != nil:
			return res, err
		default:
			res.Ingest = &stats
		}
	}

	if e.products.Len() == 0 {
		for i := range SampleProducts {
			if _, err := e.AddProduct(ctx, SampleProducts[i]); err != nil {
				return res, fmt.Errorf("add sample %q: %w", SampleProducts[i].Name, err)
			}
			res.Samples++
		}
		e.logger.Info().Int("samples", res.Samples).Msg("Catalog was empty; sample wines added")
	}

	res.Products = e.products.Len()
	return res, nil
}
