package deps

import (
	"context"

	"github.com/bwise1/eventbuzz/config"
	"github.com/bwise1/eventbuzz/internal/broker"
	"github.com/bwise1/eventbuzz/internal/cache"
	"github.com/bwise1/eventbuzz/internal/db"
	"github.com/bwise1/eventbuzz/internal/events"
	stadiamaps "github.com/bwise1/eventbuzz/internal/http/stadia_maps"
	"github.com/bwise1/eventbuzz/util/storage"
	"github.com/bwise1/eventbuzz/util/websockets"
	"github.com/rs/zerolog"
)

type Dependencies struct {
	DB         *db.DB
	Events     *events.Repo
	Cache      *cache.Redis
	Broker     broker.Publisher
	Cloudinary *storage.Cloudinary
	Geocoder   *stadiamaps.Client
	WebSocket  *websockets.WebSocketManager
}

// New connects to the database and every configured optional service.
// Redis, RabbitMQ, Cloudinary and Stadia Maps are skipped when their settings are empty;
// a configured service that cannot be reached is an error.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Dependencies, error) {
	database, err := db.New(cfg.Dsn, db.Options{MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns}, logger)
	if err != nil {
		return nil, err
	}
	d := &Dependencies{DB: database, Broker: broker.Nop{}}

	if cfg.RedisURL != "" {
		d.Cache, err = cache.NewRedis(ctx, cfg.RedisURL, cfg.CategoryCacheTTL, logger)
		if err != nil {
			d.Close()
			return nil, err
		}
	} else {
		logger.Info().Msg("REDIS_URL not set, category cache and title suggestions use the database")
	}

	if cfg.RabbitURL != "" {
		rabbit, err := broker.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange, logger)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.Broker = rabbit
	}

	d.Cloudinary, err = storage.NewCloudinary(cfg)
	if err != nil {
		d.Close()
		return nil, err
	}

	if cfg.StadiaAPIKey != "" {
		d.Geocoder, err = stadiamaps.NewClient(cfg.StadiaAPIKey, cfg.StadiaBaseURL)
		if err != nil {
			d.Close()
			return nil, err
		}
	}

	opts := events.Options{BubbleLimit: cfg.BubbleLimit}
	if d.Cache != nil {
		opts.Cache = d.Cache
	}
	d.Events = events.NewRepo(database, opts, logger)
	d.WebSocket = websockets.NewWebSocketManager(logger)

	return d, nil
}

func (d *Dependencies) Close() {
	if d.Broker != nil {
		d.Broker.Close()
	}
	if d.Cache != nil {
		_ = d.Cache.Close()
	}
	if d.DB != nil {
		d.DB.Close()
	}
}

// RebuildTitleIndex loads every active title into the suggestion index. It
// is a no-op without Redis.
func (d *Dependencies) RebuildTitleIndex(ctx context.Context) (int, error) {
	if d.Cache == nil {
		return 0, nil
	}
	titles, err := d.Events.Titles(ctx)
	if err != nil {
		return 0, err
	}
	for _, t := range titles {
		d.Cache.IndexTitle(ctx, t)
	}
	return len(titles), nil
}
