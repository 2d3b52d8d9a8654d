package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwise1/eventbuzz/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	categoriesKey = "eventbuzz:categories:all"
	titlesKey     = "eventbuzz:autocomplete:titles"
)

// Redis caches the category list and keeps a lexicographic index of event
// titles for prefix suggestions. Failures are logged and treated as misses.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedis connects using a redis:// URL and verifies the connection.
func NewRedis(ctx context.Context, url string, ttl time.Duration, logger zerolog.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client, ttl, logger), nil
}

func New(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
		log:    logger.With().Str("component", "cache").Logger(),
	}
}

func (r *Redis) GetCategories(ctx context.Context) ([]model.Category, bool) {
	raw, err := r.client.Get(ctx, categoriesKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn().Err(err).Msg("read categories from cache")
		}
		return nil, false
	}
	var categories []model.Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		r.log.Warn().Err(err).Msg("decode cached categories")
		return nil, false
	}
	return categories, true
}

func (r *Redis) SetCategories(ctx context.Context, categories []model.Category) {
	raw, err := json.Marshal(categories)
	if err != nil {
		r.log.Warn().Err(err).Msg("encode categories for cache")
		return
	}
	if err := r.client.Set(ctx, categoriesKey, raw, r.ttl).Err(); err != nil {
		r.log.Warn().Err(err).Msg("write categories to cache")
	}
}

func (r *Redis) InvalidateCategories(ctx context.Context) {
	if err := r.client.Del(ctx, categoriesKey).Err(); err != nil {
		r.log.Warn().Err(err).Msg("invalidate category cache")
	}
}

// titleMember stores the lowercased title for matching followed by the
// original spelling for display.
func titleMember(title string) string {
	return strings.ToLower(title) + "\x00" + title
}

// IndexTitle adds a title to the suggestion index.
func (r *Redis) IndexTitle(ctx context.Context, title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	if err := r.client.ZAdd(ctx, titlesKey, redis.Z{Score: 0, Member: titleMember(title)}).Err(); err != nil {
		r.log.Warn().Err(err).Str("title", title).Msg("index title")
	}
}

// RemoveTitle drops a title from the suggestion index.
func (r *Redis) RemoveTitle(ctx context.Context, title string) {
	if err := r.client.ZRem(ctx, titlesKey, titleMember(strings.TrimSpace(title))).Err(); err != nil {
		r.log.Warn().Err(err).Str("title", title).Msg("remove title")
	}
}

// SuggestTitles returns up to limit indexed titles starting with prefix,
// ignoring case, in lexical order.
func (r *Redis) SuggestTitles(ctx context.Context, prefix string, limit int) ([]string, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	members, err := r.client.ZRangeByLex(ctx, titlesKey, &redis.ZRangeBy{
		Min:   "[" + prefix,
		Max:   "[" + prefix + "\xff",
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("suggest titles: %w", err)
	}

	titles := make([]string, 0, len(members))
	for _, m := range members {
		if i := strings.IndexByte(m, 0); i >= 0 {
			m = m[i+1:]
		}
		titles = append(titles, m)
	}
	return titles, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
