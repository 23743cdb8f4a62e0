package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	apperrors "github.com/foxholm/foxholm/internal/errors"
	"github.com/foxholm/foxholm/internal/observability"
	"github.com/foxholm/foxholm/internal/processing"
	"github.com/foxholm/foxholm/internal/seo"
	"github.com/foxholm/foxholm/internal/server/handlers"
	servermw "github.com/foxholm/foxholm/internal/server/middleware"
)

// Options configures a Server.
type Options struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// MaxBodyBytes caps POST bodies. Zero disables the cap.
	MaxBodyBytes int64

	Domain     string
	Production bool

	AllowedOrigins []string
	CORSMaxAge     int

	// AdminToken enables POST /admin/signal when set.
	AdminToken string

	Processor *processing.Processor
	Health    *handlers.HealthManager
}

// Server represents the HTTP server.
type Server struct {
	router *chi.Mux
	server *http.Server
	opts   Options
	site   seo.Site
}

// New creates a server with every route registered.
func New(opts Options) *Server {
	if opts.Health == nil {
		opts.Health = handlers.NewHealthManager(handlers.AppVersion, "")
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RealIP)

	// RequestID runs first so every later layer can correlate.
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestMetrics)
	r.Use(servermw.Recovery)
	r.Use(cors.Handler(corsOptions(opts)))
	r.Use(servermw.HostTool(opts.Domain))
	r.Use(servermw.Locale)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewNotFoundError("The requested resource was not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource"))
	})

	s := &Server{
		router: r,
		opts:   opts,
		site: seo.Site{
			Domain:     opts.Domain,
			Production: opts.Production,
			Registry:   opts.Processor.Registry(),
		},
	}

	handlers.SetHTTPErrorResponder(HandleError)

	s.registerRoutes()

	return s
}

// corsOptions allows GET, POST and OPTIONS with credentials. A wildcard
// origin list echoes the caller's origin, since browsers reject "*" on
// credentialed requests.
func corsOptions(opts Options) cors.Options {
	c := cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Accept-Language", servermw.RequestIDHeader},
		ExposedHeaders:   []string{servermw.RequestIDHeader, "Content-Language"},
		AllowCredentials: true,
		MaxAge:           opts.CORSMaxAge,
	}
	for _, origin := range opts.AllowedOrigins {
		if origin == "*" {
			c.AllowOriginFunc = func(*http.Request, string) bool { return true }
			return c
		}
	}
	c.AllowedOrigins = opts.AllowedOrigins
	return c
}

// Start listens and serves until Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  orDefault(s.opts.ReadTimeout, 30*time.Second),
		WriteTimeout: orDefault(s.opts.WriteTimeout, 150*time.Second),
		IdleTimeout:  orDefault(s.opts.IdleTimeout, 120*time.Second),
	}

	observability.ServerLogger.Info("Starting HTTP server",
		zap.String("host", s.opts.Host),
		zap.Int("port", s.opts.Port),
		zap.String("addr", addr),
		zap.String("domain", s.opts.Domain),
		zap.String("provider", s.opts.Processor.Provider()))

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	observability.ServerLogger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.opts.Port
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
