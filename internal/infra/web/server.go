package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/scmsohel/epic-loot-bot/internal/domain/model"
	"github.com/scmsohel/epic-loot-bot/internal/infra/logging"
	"github.com/scmsohel/epic-loot-bot/internal/infra/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type StatsUseCase interface {
	Counts(ctx context.Context) (model.Stats, error)
}

type BroadcastUseCase interface {
	Broadcast(ctx context.Context, text string) (model.BroadcastResult, error)
}

// Server is the JWT-protected admin API.
type Server struct {
	statsUC     StatsUseCase
	broadcastUC BroadcastUseCase
	auth        *AuthManager
	log         *zerolog.Logger
}

func NewServer(statsUC StatsUseCase, broadcastUC BroadcastUseCase, auth *AuthManager, logger *zerolog.Logger) *Server {
	return &Server{statsUC: statsUC, broadcastUC: broadcastUC, auth: auth, log: logger}
}

// RegisterRoutes mounts /api/v1 on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/stats", statsHandler(s.statsUC))
		r.Post("/broadcast", broadcastHandler(s.broadcastUC))
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			metrics.IncAdminAPIAuth("disabled")
			logging.With(r.Context(), s.log).Error().Msg("admin API secret is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		claims, err := s.auth.ParseFromRequest(r)
		switch {
		case errors.Is(err, ErrMissingToken):
			metrics.IncAdminAPIAuth("missing")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		case err != nil:
			metrics.IncAdminAPIAuth("invalid")
			logging.With(r.Context(), s.log).Warn().Err(err).Msg("admin API auth rejected")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		metrics.IncAdminAPIAuth("ok")
		logging.With(r.Context(), s.log).Debug().Str("sub", claims.Subject).Str("path", r.URL.Path).Msg("admin API call")
		next.ServeHTTP(w, r)
	})
}
