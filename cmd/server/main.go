package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/readhive/liveroom/internal/adapters/http"
	"github.com/readhive/liveroom/internal/app"
	"github.com/readhive/liveroom/internal/auth"
	"github.com/readhive/liveroom/internal/config"
	"github.com/readhive/liveroom/internal/core"
	"github.com/readhive/liveroom/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	comments, err := openCommentStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open comment store")
	}
	defer comments.Close()

	verifier := auth.NewJWTVerifier(cfg.TokenSecret)
	registry := app.NewRegistry(verifier)
	rooms := core.NewRoomIndex()
	typing := core.NewTypingTracker(cfg.TypingTimeout)
	dispatcher := app.NewDispatcher(registry, rooms)
	presence := app.NewPresenceTracker(dispatcher)

	coord := &app.Coordinator{
		Registry:       registry,
		Rooms:          rooms,
		Presence:       presence,
		Typing:         typing,
		Comments:       comments,
		Bcast:          dispatcher,
		CommentTimeout: cfg.CommentTimeout,
		SweepInterval:  cfg.TypingSweepInterval,
	}
	go coord.Run(ctx)

	r := router.SetupRouter(ctx, cfg, coord)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("liveroom server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

func openCommentStore(ctx context.Context, cfg *config.Config) (store.CommentStore, error) {
	switch cfg.Store {
	case "sqlite":
		return store.NewSQLiteStore(ctx, cfg.SQLitePath)
	default:
		return store.NewMemoryStore(), nil
	}
}
