// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package docstore

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/tomtom215/sommelier/internal/config"
	"github.com/tomtom215/sommelier/internal/database"
)

// OpenBackend builds the backend selected by cfg.Data.Backend.
func OpenBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.Data.Backend {
	case config.BackendFile:
		return NewFileBackend(cfg.Data.Dir)
	case config.BackendBadger:
		db, err := database.Open(database.Options{
			Path:       filepath.Join(cfg.Data.Dir, "documents"),
			SyncWrites: true,
		})
		if err != nil {
			return nil, err
		}
		return NewOwnedBadgerBackend(db.DB), nil
	case config.BackendRedis:
		return NewRedisBackend(ctx, RedisOptions{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown document backend %q", cfg.Data.Backend)
	}
}
