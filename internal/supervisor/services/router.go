// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package services

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sommelier/internal/middleware"
)

// CatalogSizer reports the number of products in the catalog.
//
// Satisfied by *catalog.Store.
type CatalogSizer interface {
	Len() int
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status   string  `json:"status"`
	Products int     `json:"products"`
	Uptime   float64 `json:"uptime_seconds"`
}

// NewMetricsRouter serves /metrics (Prometheus) and /healthz. Its own
// requests are counted in sommelier_http_requests_total.
//
//nolint:gocritic // zerolog.Logger is passed by value throughout
func NewMetricsRouter(catalog CatalogSizer, logger zerolog.Logger) http.Handler {
	start := time.Now()

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		body := HealthResponse{
			Status:   "ok",
			Products: catalog.Len(),
			Uptime:   time.Since(start).Seconds(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logger.Warn().Err(err).
				Str("request_id", chimiddleware.GetReqID(req.Context())).
				Msg("write health response")
		}
	})

	return r
}
