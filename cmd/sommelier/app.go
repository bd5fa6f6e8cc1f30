// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package main

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tomtom215/sommelier/internal/catalog"
	"github.com/tomtom215/sommelier/internal/config"
	"github.com/tomtom215/sommelier/internal/database"
	"github.com/tomtom215/sommelier/internal/docstore"
	"github.com/tomtom215/sommelier/internal/encoder"
	"github.com/tomtom215/sommelier/internal/feedback"
	"github.com/tomtom215/sommelier/internal/logging"
	"github.com/tomtom215/sommelier/internal/recommend"
	"github.com/tomtom215/sommelier/internal/vectorindex"
)

// app holds everything a command needs. Resources are opened in dependency
// order by openApp and released in reverse by Close.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	backend  docstore.Backend
	catalog  *catalog.Store
	feedback *feedback.Store
	indexDB  *database.DB
	vectors  *vectorindex.Store
	engine   *recommend.Engine
}

// loadConfig reads --config and applies --log-level, then configures the
// global logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWithKoanf(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		if !logging.ValidLevel(level) {
			return nil, fmt.Errorf("invalid --log-level %q", level)
		}
		cfg.Logging.Level = level
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    cmd.ErrOrStderr(),
	})
	return cfg, nil
}

func openApp(ctx context.Context, cmd *cobra.Command) (a *app, err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	a = &app{cfg: cfg, logger: logging.Logger()}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	a.backend, err = docstore.OpenBackend(ctx, cfg)
	if err != nil {
		return a, fmt.Errorf("open %s document store: %w", cfg.Data.Backend, err)
	}

	a.catalog = catalog.NewStore(a.backend, cfg.Data.ProductsDoc, a.logger)
	if err = a.catalog.Load(ctx); err != nil {
		return a, err
	}
	a.feedback = feedback.NewStore(a.backend, cfg.Data.FeedbackDoc, a.logger)
	if err = a.feedback.Load(ctx); err != nil {
		return a, err
	}

	a.indexDB, err = database.Open(database.Options{
		Path:       cfg.Index.Dir,
		InMemory:   cfg.Index.Dir == "",
		SyncWrites: true,
	})
	if err != nil {
		return a, fmt.Errorf("open vector index: %w", err)
	}

	embedder, err := encoder.New(cfg.Embedding, a.logger)
	if err != nil {
		return a, err
	}

	a.vectors, err = vectorindex.NewStore(a.indexDB, vectorindex.Options{
		Dimension: embedder.Dimensions(),
		Tiered: vectorindex.TieredConfig{
			Threshold: cfg.Index.TierThreshold,
			HNSW: vectorindex.HNSWConfig{
				M:        cfg.Index.HNSW.M,
				EfSearch: cfg.Index.HNSW.EfSearch,
			},
		},
	}, a.logger)
	if err != nil {
		return a, err
	}

	a.engine, err = recommend.NewEngine(ctx, recommend.Deps{
		Products: a.catalog,
		Feedback: a.feedback,
		Vectors:  a.vectors,
		Embedder: embedder,
	}, engineConfig(&cfg.Recommend), a.logger)
	if err != nil {
		return a, err
	}
	return a, nil
}

func engineConfig(rc *config.RecommendConfig) *recommend.Config {
	return &recommend.Config{
		Limits: recommend.LimitsConfig{
			DefaultResults: rc.DefaultResults,
			MaxResults:     rc.MaxResults,
		},
		DislikeWeight: rc.DislikeWeight,
		EmbedWorkers:  rc.EmbedWorkers,
		Seed:          rc.Seed,
	}
}

// Close releases the index and the document backend. The vector store owns
// indexDB, so indexDB is only closed directly when the store never opened.
func (a *app) Close() {
	switch {
	case a.vectors != nil:
		database.CloseWithLog(a.vectors, a.logger, "vector index")
	case a.indexDB != nil:
		database.CloseWithLog(a.indexDB, a.logger, "vector index")
	}
	if a.backend != nil {
		database.CloseWithLog(a.backend, a.logger, "document store")
	}
}

// withApp opens the app for the duration of fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// writeJSON prints v as indented JSON on the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
