// Sommelier - Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/sommelier/internal/metrics"
)

func TestPrometheusMetrics(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/ok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	r.Post("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.WriteHeader(http.StatusOK) // ignored by net/http; must not relabel
	})

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantRoute  string
	}{
		{"implicit 200", http.MethodGet, "/ok", http.StatusOK, "/ok"},
		{"route pattern not raw path", http.MethodPost, "/items/42", http.StatusCreated, "/items/{id}"},
		{"first status wins", http.MethodGet, "/boom", http.StatusInternalServerError, "/boom"},
		{"not found", http.MethodGet, "/nope/123", http.StatusNotFound, unmatchedRoute},
	}

	// Subtests share counters, so they run one after another.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := strconv.Itoa(tt.wantStatus)
			counter := metrics.HTTPRequestsTotal.WithLabelValues(tt.method, tt.wantRoute, status)
			before := testutil.ToFloat64(counter)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("requests{%s,%s,%s} delta = %v, want 1", tt.method, tt.wantRoute, status, got)
			}
		})
	}

	if got := testutil.ToFloat64(metrics.HTTPActiveRequests); got != 0 {
		t.Errorf("active requests = %v after all requests finished, want 0", got)
	}
}

func TestPrometheusMetrics_WithoutRouter(t *testing.T) {
	handler := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodPut, unmatchedRoute, "202")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/anything", nil))

	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("counter delta = %v, want 1", got)
	}
}
