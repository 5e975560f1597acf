// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"groq-chat-relay/internal/config"
	"groq-chat-relay/internal/domain/ports/adapter"
	aiAdapters "groq-chat-relay/internal/infra/adapters/ai"
	"groq-chat-relay/internal/infra/logging"
	"groq-chat-relay/internal/infra/metrics"
	"groq-chat-relay/internal/infra/web"
	"groq-chat-relay/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Relay ----
	var opener adapter.StreamOpener
	configured := cfg.AI.GroqKey != ""
	if configured {
		groq, err := aiAdapters.NewGroqAdapter(cfg.AI.GroqKey, cfg.AI.BaseURL, cfg.AI.Temperature)
		if err != nil {
			log.Fatalf("groq adapter: %v", err)
		}
		opener = aiAdapters.NewFallbackAdapter(cfg.AI.Models, groq, logger)
		logger.Info().Strs("models", cfg.AI.Models).Msg("relay: live upstream")
	} else {
		logger.Warn().Msg("relay: no groq key configured; serving synthetic replies")
	}
	relayUC := usecase.NewRelayUseCase(opener, configured, logger)

	// ---- HTTP ----
	srv := web.NewServer(&cfg.Server, relayUC, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
