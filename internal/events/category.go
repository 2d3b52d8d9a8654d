package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwise1/eventbuzz/internal/db"
	"github.com/bwise1/eventbuzz/internal/model"
	"github.com/jackc/pgx/v5"
)

// ListCategories returns all categories ordered by name, served from the
// cache when it holds a copy.
func (r *Repo) ListCategories(ctx context.Context) ([]model.Category, error) {
	if r.cache != nil {
		if cached, ok := r.cache.GetCategories(ctx); ok {
			return cached, nil
		}
	}

	rows, err := r.db.Pool().Query(ctx,
		`SELECT id, name, slug, color_hex, icon_name, created_at FROM categories ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ColorHex, &c.IconName, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if r.cache != nil {
		r.cache.SetCategories(ctx, categories)
	}
	return categories, nil
}

func (r *Repo) GetCategory(ctx context.Context, id int) (model.Category, error) {
	return getCategory(ctx, r.db.Pool(), id)
}

func getCategory(ctx context.Context, q db.Querier, id int) (model.Category, error) {
	var c model.Category
	err := q.QueryRow(ctx,
		`SELECT id, name, slug, color_hex, icon_name, created_at FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.ColorHex, &c.IconName, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Category{}, ErrCategoryNotFound
	}
	return c, err
}

// ensureCategory checks the category exists, consulting the cached list
// before the store.
func (r *Repo) ensureCategory(ctx context.Context, q db.Querier, id int) error {
	if r.cache != nil {
		if cached, ok := r.cache.GetCategories(ctx); ok {
			for _, c := range cached {
				if c.ID == id {
					return nil
				}
			}
		}
	}
	_, err := getCategory(ctx, q, id)
	return err
}
