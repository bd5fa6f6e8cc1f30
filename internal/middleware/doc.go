// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

/*
Package middleware provides HTTP middleware for the serve command's router.

PrometheusMetrics counts requests by method, chi route pattern and status,
observes latency, and tracks in-flight requests:

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Handle("/metrics", promhttp.Handler())

Labels use the route pattern (for example /items/{id}), never the raw
path. Requests that match no route are labelled "unmatched".
*/
package middleware
