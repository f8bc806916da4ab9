package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"gentle/internal/config"
	"gentle/internal/handler"
	"gentle/internal/hub"
	"gentle/internal/repository/sqlite"
	"gentle/internal/service"
	"gentle/internal/watcher"
)

// janitorInterval is how often idle sessions are evicted from memory
const janitorInterval = time.Minute

func main() {
	// Command line flags override the config file
	configPath := flag.String("config", "", "config file path (default: search standard locations)")
	addr := flag.String("addr", "", "HTTP listen address")
	dbPath := flag.String("db", "", "SQLite database path")
	debug := flag.Bool("debug", false, "panic on invariant violations")
	logLevel := flag.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flag.Parse()

	cfg, path, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("failed to load config")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *debug {
		cfg.Debug = true
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	cfg.Log.SetupLogging()
	log.Info().Str("config", path).Msg("starting gentle server")
	log.Info().Msg(cfg.Summary())

	if err := run(cfg, path); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func run(cfg *config.Config, configPath string) error {
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer repo.Close()
	log.Info().Str("path", cfg.Database.Path).Msg("database opened")

	eventBus := service.NewEventBus()
	sseHub := hub.New()

	svc := service.NewSessionService(repo, eventBus, service.Options{
		MaxAlters:       cfg.Elicitation.MaxAlters,
		RespondentLabel: cfg.Elicitation.RespondentLabel,
		Palette:         cfg.Palette(),
		Strict:          cfg.Debug,
		PseudonymKey:    []byte(cfg.Export.PseudonymKey),
		IdleTimeout:     cfg.Sessions.IdleTimeout.Duration(),
	})

	mux := http.NewServeMux()
	handler.NewSessionHandler(svc).RegisterRoutes(mux)
	mux.Handle("GET /events", sseHub)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler.Chain(mux, handler.Recover, handler.CORS, handler.Logger),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sseHub.Run(ctx)
	})

	// Connect event bus to SSE hub
	g.Go(func() error {
		events := make(chan service.Event, 100)
		eventBus.Subscribe(events)
		for {
			select {
			case event := <-events:
				sseHub.Broadcast(event.SessionID, event)
			case <-ctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		return svc.RunJanitor(ctx, janitorInterval)
	})

	if configPath != "" {
		g.Go(func() error {
			err := watcher.WatchConfig(ctx, configPath, func(next *config.Config) {
				svc.ReloadPalette(next.Palette())
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				// a broken watcher must not take the server down
				log.Warn().Err(err).Msg("config watcher stopped")
			}
			return nil
		})
	}

	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
