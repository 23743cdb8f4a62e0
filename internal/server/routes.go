package server

import (
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/foxholm/foxholm/internal/observability"
	"github.com/foxholm/foxholm/internal/server/handlers"
	servermw "github.com/foxholm/foxholm/internal/server/middleware"
)

func (s *Server) registerRoutes() {
	tools := &handlers.Tools{Registry: s.site.Registry}
	process := &handlers.Process{Processor: s.opts.Processor}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/tools", tools.List)
		r.Get("/subdomains", tools.LegacyList)
		r.Get("/tool-config", tools.Config)
		r.With(servermw.MaxBody(s.opts.MaxBodyBytes)).Post("/process-image", process.Submit)
		r.Get("/health", s.opts.Health.APIHealthHandler)
	})

	s.router.Get("/health", s.opts.Health.HealthHandler)
	s.router.Get("/health/live", handlers.LivenessHandler)
	s.router.Get("/health/ready", s.opts.Health.Probe("readiness", 2*time.Second))

	s.router.Get("/version", handlers.VersionHandler)
	s.router.Get("/metrics", MetricsHandler)

	s.router.Get("/sitemap.xml", s.sitemap)
	s.router.Get("/", s.landing)

	s.registerAdminEndpoint()
}

// registerAdminEndpoint exposes signal delivery over HTTP when a token is
// configured.
func (s *Server) registerAdminEndpoint() {
	logger := observability.ServerLogger
	if s.opts.AdminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no admin token set)")
		}
		return
	}

	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: s.opts.AdminToken,
		RateLimit: 10,
		RateBurst: 5,
		Manager:   nil,
	})
	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoint enabled - ensure this server is not exposed to public internet")
	}
}
