package events

import (
	"context"
	"fmt"

	"github.com/bwise1/eventbuzz/internal/db"
	"github.com/bwise1/eventbuzz/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// CategoryCache stores the category list between reads. Implementations
// must be safe for concurrent use; a nil cache disables caching.
type CategoryCache interface {
	GetCategories(ctx context.Context) ([]model.Category, bool)
	SetCategories(ctx context.Context, categories []model.Category)
	InvalidateCategories(ctx context.Context)
}

// Repo is the PostGIS-backed event store.
type Repo struct {
	db          *db.DB
	cache       CategoryCache
	bubbleLimit int
	log         zerolog.Logger
}

type Options struct {
	Cache CategoryCache
	// BubbleLimit caps bubble results, nearest first. Zero means unbounded.
	BubbleLimit int
}

func NewRepo(database *db.DB, opts Options, logger zerolog.Logger) *Repo {
	return &Repo{
		db:          database,
		cache:       opts.Cache,
		bubbleLimit: opts.BubbleLimit,
		log:         logger.With().Str("component", "events").Logger(),
	}
}

// FindNearby returns a page of events within the radius of the center,
// nearest first, and the total number of matches.
func (r *Repo) FindNearby(ctx context.Context, p model.NearbyParams) ([]model.EventListItem, int, error) {
	pageQ, countQ := nearbyQueries(p)

	var total int
	if err := r.db.Pool().QueryRow(ctx, countQ.SQL, countQ.Args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count nearby events: %w", err)
	}

	rows, err := r.db.Pool().Query(ctx, pageQ.SQL, pageQ.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query nearby events: %w", err)
	}
	items, err := scanListItems(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("scan nearby events: %w", err)
	}
	return items, total, nil
}

// GetBubbles returns every active event within the radius as a map marker.
func (r *Repo) GetBubbles(ctx context.Context, p model.BubbleParams) ([]model.EventBubble, error) {
	q := bubbleQuery(p, r.bubbleLimit)
	rows, err := r.db.Pool().Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("query bubbles: %w", err)
	}
	bubbles, err := scanBubbles(rows)
	if err != nil {
		return nil, fmt.Errorf("scan bubbles: %w", err)
	}
	return bubbles, nil
}

// Search matches active events whose title or description contains the
// query text, ordered by start date.
func (r *Repo) Search(ctx context.Context, p model.SearchParams) ([]model.EventListItem, int, error) {
	pageQ, countQ := searchQueries(p)

	var total int
	if err := r.db.Pool().QueryRow(ctx, countQ.SQL, countQ.Args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count search results: %w", err)
	}

	rows, err := r.db.Pool().Query(ctx, pageQ.SQL, pageQ.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query search results: %w", err)
	}
	items, err := scanListItems(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("scan search results: %w", err)
	}
	return items, total, nil
}

// GetByID returns the full event regardless of status. Soft-deleted events
// stay readable by id.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (model.EventDetail, error) {
	return loadDetail(ctx, r.db.Pool(), id)
}

// Titles returns the distinct titles of active events, used to rebuild the
// suggestion index.
func (r *Repo) Titles(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool().Query(ctx, `SELECT DISTINCT title FROM events WHERE status = $1 ORDER BY title`, model.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("query titles: %w", err)
	}
	titles, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan titles: %w", err)
	}
	return titles, nil
}

// CountActiveByTitle returns how many active events carry exactly title.
func (r *Repo) CountActiveByTitle(ctx context.Context, title string) (int, error) {
	var n int
	err := r.db.Pool().QueryRow(ctx,
		`SELECT COUNT(*) FROM events WHERE status = $1 AND title = $2`, model.StatusActive, title,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active titles: %w", err)
	}
	return n, nil
}
