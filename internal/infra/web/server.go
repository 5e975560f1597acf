package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"groq-chat-relay/internal/config"
	"groq-chat-relay/internal/usecase"
)

// Server is the HTTP face of the relay gateway.
type Server struct {
	relay   usecase.RelayUseCase
	maxBody int64
	log     *zerolog.Logger
	server  *http.Server
}

func NewServer(cfg *config.ServerConfig, relay usecase.RelayUseCase, logger *zerolog.Logger) *Server {
	s := &Server{
		relay:   relay,
		maxBody: cfg.MaxBodyBytes,
		log:     logger,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: cfg.ReadTimeout,
	}
	return s
}

// Router builds the chi router; split out so tests can mount it directly.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestID)
	r.Use(requestLogger(s.log))

	r.Post("/api/chat", s.handleChat)
	r.Get("/api/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("http server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
