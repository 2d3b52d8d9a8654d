package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwise1/eventbuzz/config"
	deps "github.com/bwise1/eventbuzz/internal/debs"
	api "github.com/bwise1/eventbuzz/internal/http/rest"
	"github.com/rs/zerolog"
)

const (
	allowConnectionsAfterShutdown = 1 * time.Second
	startupTimeout                = 15 * time.Second
)

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.IsProduction() {
		logger = zerolog.New(os.Stdout)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return logger.Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()
}

func main() {
	cfg, err := config.New()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	d, err := deps.New(startCtx, cfg, logger)
	if err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("failed to initialise dependencies")
	}
	if err := d.DB.Migrate(startCtx); err != nil {
		cancel()
		d.Close()
		logger.Fatal().Err(err).Msg("failed to apply migrations")
	}
	cancel()

	go func() {
		indexed, err := d.RebuildTitleIndex(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("title index rebuild failed, suggestions may be incomplete")
			return
		}
		if indexed > 0 {
			logger.Info().Int("titles", indexed).Msg("title index rebuilt")
		}
	}()
	go d.WebSocket.Run(ctx)

	a := api.New(cfg, d, logger)
	serveErr := make(chan error, 1)
	go func() {
		if err := a.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error().Err(err).Msg("server stopped unexpectedly")
		}
	case <-ctx.Done():
		logger.Info().Dur("grace", allowConnectionsAfterShutdown).Msg("shutdown requested")
		time.Sleep(allowConnectionsAfterShutdown)
	}

	logger.Info().Msg("shutting down server")
	if err := a.Shutdown(context.Background()); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}

	d.Close()
	logger.Info().Msg("dependencies closed")
}
