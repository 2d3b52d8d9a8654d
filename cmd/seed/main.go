package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/bwise1/eventbuzz/config"
	deps "github.com/bwise1/eventbuzz/internal/debs"
	"github.com/bwise1/eventbuzz/internal/events"
	"github.com/rs/zerolog"
)

func main() {
	seed := flag.Uint64("seed", 42, "random seed for sample event generation")
	withEvents := flag.Bool("events", true, "create sample events after the categories")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall time limit")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("cmd", "seed").Logger()

	cfg, err := config.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	d, err := deps.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise dependencies")
	}
	defer d.Close()

	if err := d.DB.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply migrations")
	}

	added, err := d.Events.SeedCategories(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to seed categories")
	}
	logger.Info().Int("added", added).Msg("categories seeded")

	if !*withEvents {
		return
	}

	created, err := d.Events.SeedEvents(ctx, events.NewYork, *seed)
	if err != nil {
		logger.Fatal().Err(err).Int("created", created).Msg("failed to seed events")
	}
	logger.Info().Int("created", created).Uint64("seed", *seed).Msg("events seeded")

	if created > 0 {
		indexed, err := d.RebuildTitleIndex(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to rebuild title index")
		}
		logger.Info().Int("titles", indexed).Msg("title index rebuilt")
	}
}
