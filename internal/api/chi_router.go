// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/mediamirror/internal/middleware"
)

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil mw uses the default middleware config.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// chiMiddleware adapts http.HandlerFunc middleware to chi's signature.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi builds the HTTP handler.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(chiMiddleware(middleware.AccessLog))
	r.Use(chiMiddleware(middleware.PrometheusMetrics))

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	// Player-facing endpoints.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())

		r.Get("/video", router.handler.Video)
		r.Head("/video", router.handler.Video)

		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware(middleware.Compression))
			r.Get("/metadata", router.handler.Metadata)
			r.Head("/metadata", router.handler.Metadata)
			r.Get("/videos-list", router.handler.VideosList)
			r.Get("/default-video-name", router.handler.DefaultVideoName)
		})
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1/sync", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.With(router.chiMiddleware.RateLimit()).Get("/status", router.handler.SyncStatus)
		r.With(router.chiMiddleware.RateLimitSync()).Post("/", router.handler.SyncTrigger)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
