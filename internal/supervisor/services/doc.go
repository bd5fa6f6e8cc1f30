// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

/*
Package services provides suture.Service wrappers for the serve command.

Each wrapper implements suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

and fmt.Stringer so supervisor events name the service.

# Available Services

HTTPServerService wraps an *http.Server. NewMetricsRouter builds the
handler it usually serves: Prometheus metrics on /metrics and a JSON
liveness body on /healthz.

IndexGCService runs badger value log GC on the vector index store every
Index.GCInterval. Results are counted in sommelier_index_gc_runs_total.

PreferenceRefreshService calls Engine.RebuildPreferences every
Recommend.RefreshInterval so preferences built from since-deleted products
are repaired.

# Usage

	tree, _ := supervisor.NewSupervisorTree(slogger, supervisor.DefaultTreeConfig())
	tree.AddMaintenanceService(services.NewIndexGCService(indexDB, cfg.Index.GCInterval, 0.5, logger))
	tree.AddMaintenanceService(services.NewPreferenceRefreshService(engine, refreshCfg, logger))
	srv := &http.Server{Addr: cfg.Server.MetricsAddr, Handler: services.NewMetricsRouter(products, logger)}
	tree.AddAPIService(services.NewHTTPServerService("metrics-server", srv, cfg.Server.ShutdownTimeout, logger))
	err := tree.Serve(ctx)
*/
package services
