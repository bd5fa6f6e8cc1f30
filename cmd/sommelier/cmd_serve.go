// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/sommelier/internal/logging"
	"github.com/tomtom215/sommelier/internal/supervisor"
	"github.com/tomtom215/sommelier/internal/supervisor/services"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the metrics endpoint and background maintenance",
		Long: `Run until SIGINT or SIGTERM under a supervisor tree:

  - metrics server: /metrics (Prometheus) and /healthz
  - preference refresher: rebuilds every user's preference vector each
    recommend.refresh_interval (disabled when 0)
  - index GC: badger value log GC each index.gc_interval (on-disk index only)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withApp(cmd, func(_ context.Context, a *app) error {
				if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
					a.cfg.Server.MetricsAddr = addr
				}
				tree, err := buildTree(a)
				if err != nil {
					return err
				}

				a.logger.Info().
					Str("metrics_addr", a.cfg.Server.MetricsAddr).
					Int("products", a.catalog.Len()).
					Msg("Starting Sommelier with supervisor tree")

				err = tree.Serve(ctx)
				if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
					a.logger.Warn().Int("count", len(report)).Msg("Services did not stop within the shutdown timeout")
				}
				if err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				a.logger.Info().Msg("Shutdown complete")
				return nil
			})
		},
	}

	cmd.Flags().String("addr", "", "Override server.metrics_addr")
	return cmd
}

// buildTree wires the serve services into a supervisor tree.
func buildTree(a *app) (*supervisor.SupervisorTree, error) {
	cfg := a.cfg

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(a.logger), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Recommend.RefreshInterval > 0 {
		tree.AddMaintenanceService(services.NewPreferenceRefreshService(a.engine, services.PreferenceRefreshConfig{
			RefreshOnStartup: true,
			Interval:         cfg.Recommend.RefreshInterval,
		}, a.logger))
	}
	if cfg.Index.Dir != "" {
		tree.AddMaintenanceService(services.NewIndexGCService(a.indexDB, cfg.Index.GCInterval, cfg.Index.GCDiscardRatio, a.logger))
	}

	srv := &http.Server{
		Addr:              cfg.Server.MetricsAddr,
		Handler:           services.NewMetricsRouter(a.catalog, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService("metrics-server", srv, cfg.Server.ShutdownTimeout, a.logger))

	return tree, nil
}
