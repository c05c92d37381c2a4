package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/infra/web"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const (
	requestTimeout = 30 * time.Second
	// broadcasts through the admin API run for as long as the fan-out takes
	adminTimeout = 30 * time.Minute
)

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Storage Pinger
	// Webhook is nil in polling mode.
	Webhook http.Handler
	// Admin is nil when no admin API secret is configured.
	Admin *web.Server
}

// NewRouter builds the public HTTP surface.
func NewRouter(deps Deps, logger *zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(logger), Recover(logger))

	r.Group(func(r chi.Router) {
		r.Use(Timeout(requestTimeout))
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte("EpicLootBot webhook is running"))
		})
		r.Get("/health", healthHandler(deps.Storage))
		r.Handle("/metrics", promhttp.Handler())
		if deps.Webhook != nil {
			r.Post("/webhook/{secret}", deps.Webhook.ServeHTTP)
		}
	})

	if deps.Admin != nil {
		r.Group(func(r chi.Router) {
			r.Use(Timeout(adminTimeout))
			deps.Admin.RegisterRoutes(r)
		})
	}
	return r
}

func healthHandler(storage Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if storage != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()
			if err := storage.Ping(ctx); err != nil {
				http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		_, _ = w.Write([]byte("OK"))
	}
}

// routePath keeps the webhook secret out of logs.
func routePath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	if strings.HasPrefix(r.URL.Path, "/webhook/") {
		return "/webhook/{secret}"
	}
	return r.URL.Path
}

// metricRoute bounds label cardinality to registered patterns.
func metricRoute(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

type Server struct {
	srv *http.Server
	log *zerolog.Logger
}

func NewServer(port int, handler http.Handler, logger *zerolog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: logger,
	}
}

// Start blocks until the server stops; a clean Shutdown returns nil.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("HTTP server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
