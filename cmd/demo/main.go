// File: cmd/demo/main.go
// Terminal chat client: hosts the session state machine against either a
// running relay server (-remote) or an in-process relay built from config.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"groq-chat-relay/internal/config"
	"groq-chat-relay/internal/domain"
	"groq-chat-relay/internal/domain/ports/adapter"
	"groq-chat-relay/internal/domain/ports/repository"
	aiAdapters "groq-chat-relay/internal/infra/adapters/ai"
	relayAdapters "groq-chat-relay/internal/infra/adapters/relay"
	pg "groq-chat-relay/internal/infra/db/postgres"
	filestore "groq-chat-relay/internal/infra/file"
	"groq-chat-relay/internal/infra/logging"
	red "groq-chat-relay/internal/infra/redis"
	"groq-chat-relay/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	remote := flag.String("remote", "", "relay server base URL (empty: run the relay in-process)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	store, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer cleanup()

	var relay usecase.RelayUseCase
	if *remote != "" {
		relay = relayAdapters.NewHTTPRelay(*remote)
	} else {
		var opener adapter.StreamOpener
		configured := cfg.AI.GroqKey != ""
		if configured {
			groq, err := aiAdapters.NewGroqAdapter(cfg.AI.GroqKey, cfg.AI.BaseURL, cfg.AI.Temperature)
			if err != nil {
				log.Fatalf("groq adapter: %v", err)
			}
			opener = aiAdapters.NewFallbackAdapter(cfg.AI.Models, groq, logger)
		}
		relay = usecase.NewRelayUseCase(opener, configured, logger)
	}

	sessions, err := usecase.NewSessionUseCase(ctx, store, relay, logger)
	if err != nil {
		log.Fatalf("sessions: %v", err)
	}

	fmt.Println("commands: /new /list /switch <id> /delete <id> /quit; anything else is sent as a message")
	printActive(sessions)

	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			return
		}
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "/quit":
			return
		case line == "/new":
			if _, err := sessions.NewChat(ctx); err != nil {
				fmt.Println("error:", err)
			}
			printActive(sessions)
		case line == "/list":
			for _, s := range sessions.List() {
				marker := " "
				if s.ID == sessions.Active().ID {
					marker = "*"
				}
				fmt.Printf("%s %s  %s (%d messages)\n", marker, s.ID, s.Title, len(s.Messages))
			}
		case strings.HasPrefix(line, "/switch "):
			if err := sessions.SetActive(strings.TrimSpace(strings.TrimPrefix(line, "/switch "))); err != nil {
				fmt.Println("error:", err)
			}
			printActive(sessions)
		case strings.HasPrefix(line, "/delete "):
			if err := sessions.DeleteChat(ctx, strings.TrimSpace(strings.TrimPrefix(line, "/delete "))); err != nil {
				fmt.Println("error:", err)
			}
			printActive(sessions)
		default:
			err := sessions.SendMessage(ctx, line, func(chunk string) {
				fmt.Print(chunk)
			})
			if errors.Is(err, domain.ErrBusy) {
				fmt.Println("still waiting for the previous reply")
				continue
			}
			fmt.Println()
		}
	}
}

func buildStore(ctx context.Context, cfg *config.Config) (repository.SessionStore, func(), error) {
	switch cfg.Storage.Backend {
	case "file":
		return filestore.NewSessionStore(cfg.Storage.FilePath), func() {}, nil
	case "redis":
		client, err := red.NewClient(ctx, &cfg.Storage.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		return red.NewSessionStore(client), func() { _ = client.Close() }, nil
	case "postgres":
		pool, err := pg.NewPgxPool(ctx, cfg.Storage.Postgres.URL, 4)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		store := pg.NewSessionStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func printActive(sessions usecase.SessionUseCase) {
	s := sessions.Active()
	fmt.Printf("active: %s  %s\n", s.ID, s.Title)
}
