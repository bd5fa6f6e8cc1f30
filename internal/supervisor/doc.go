// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

/*
Package supervisor runs the long-lived services of `sommelier serve` under a
suture v4 supervisor tree.

# Overview

	RootSupervisor ("sommelier")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   ├── PreferenceRefreshService (if recommend.refresh_interval > 0)
	│   └── IndexGCService (if the index is on disk)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (/metrics, /healthz)

Crashed services are restarted with suture's backoff. Each layer counts
failures independently, so a maintenance job stuck in backoff does not stop
the metrics endpoint.

# Logging

Supervisor events are written through sutureslog. Callers pass a
*slog.Logger; logging.NewSlogLogger bridges it to the zerolog logger used
everywhere else.

# Shutdown

Cancel the context passed to Serve. Services get TreeConfig.ShutdownTimeout
to return; UnstoppedServiceReport lists any that did not.
*/
package supervisor
