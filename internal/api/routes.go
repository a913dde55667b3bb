// SPDX-License-Identifier: MIT

package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/pendel/internal/api/middleware"
)

// routes assembles the full handler: middleware stack, public endpoints,
// pack endpoints, and token-guarded operator endpoints.
func (s *Server) routes() chi.Router {
	r := s.newRouter()
	s.registerPublicRoutes(r)
	s.registerPackRoutes(r)
	s.registerOperatorRoutes(r)
	return r
}

func (s *Server) newRouter() *chi.Mux {
	cfg := s.currentConfig()
	return middleware.NewRouter(middleware.StackConfig{
		EnableCORS: true,

		EnableSecurityHeaders: true,
		CSP:                   middleware.DefaultCSP,

		EnableMetrics:  true,
		TracingService: "pendel-api",
		EnableLogging:  true,

		EnableRateLimit:   true,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
	})
}

func (s *Server) registerPublicRoutes(r chi.Router) {
	if s.health != nil {
		r.Get("/healthz", s.health.ServeHealth)
		r.Get("/readyz", s.health.ServeReady)
	}
	r.Handle("/metrics", promhttp.Handler())
}

func (s *Server) registerPackRoutes(r chi.Router) {
	r.Get("/api/playlist", s.handlePlaylist)
	r.Post("/api/v1/recommend", s.handleRecommend)
	r.Post("/api/v1/wizard/playlist", s.handleWizard)
	r.Get("/api/v1/topics/suggest", s.handleTopicsSuggest)
	r.Get("/api/v1/packs/latest", s.handlePacksLatest)
}

func (s *Server) registerOperatorRoutes(r chi.Router) {
	rAuth := r.With(s.authMiddleware)
	rAuth.Post("/api/v1/history/watched", s.handleHistoryWatched)
	rAuth.Post("/api/v1/config/reload", s.handleConfigReload)
}
