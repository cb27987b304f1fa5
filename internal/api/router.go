// Chronolog - Audit Event Logging and Retrieval Engine
// Copyright 2026 Chronolog contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chronologhq/chronolog

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chronologhq/chronolog/internal/engine"
	"github.com/chronologhq/chronolog/internal/logging"
	"github.com/chronologhq/chronolog/internal/metrics"
)

// RouterConfig holds HTTP-surface tunables.
type RouterConfig struct {
	// CaptureRateLimit is the per-IP request budget per minute on the
	// capture endpoint. Zero disables rate limiting.
	CaptureRateLimit int

	// CORSOrigins lists the browser origins allowed to call the API; the
	// query surface is consumed by polling browser clients. Empty disables
	// CORS handling.
	CORSOrigins []string
}

// NewRouter builds the chi router with middleware and all routes.
func NewRouter(e *engine.Engine, cfg RouterConfig) http.Handler {
	h := NewHandler(e)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}
	r.Use(requestIDMiddleware)
	r.Use(metricsMiddleware)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			if cfg.CaptureRateLimit > 0 {
				r.With(httprate.LimitByIP(cfg.CaptureRateLimit, time.Minute)).Post("/", h.CaptureEvent)
			} else {
				r.Post("/", h.CaptureEvent)
			}

			r.Get("/", h.ListEvents)
			r.Get("/count-newer", h.CountNewer)
			r.Get("/{id}", h.GetEvent)
		})
		r.Get("/loggers", h.ListLoggers)
		r.Get("/stats", h.Stats)
	})

	return r
}

// requestIDMiddleware assigns each request an id, propagated via context
// and the X-Request-ID response header.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = logging.GenerateRequestID()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
	})
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// metricsMiddleware records per-route request counts and latency.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		endpoint := chi.RouteContext(r.Context()).RoutePattern()
		if endpoint == "" {
			endpoint = r.URL.Path
		}
		metrics.RecordAPIRequest(r.Method, endpoint, strconv.Itoa(rec.status), time.Since(start))
	})
}
