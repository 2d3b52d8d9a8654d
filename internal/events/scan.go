package events

import (
	"context"
	"errors"

	"github.com/bwise1/eventbuzz/internal/db"
	"github.com/bwise1/eventbuzz/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func listItemDest(it *model.EventListItem) []any {
	return []any{
		&it.ID, &it.Title, &it.Description,
		&it.Category.ID, &it.Category.Name, &it.Category.Slug, &it.Category.ColorHex,
		&it.Category.IconName, &it.Category.CreatedAt,
		&it.Latitude, &it.Longitude,
		&it.Address, &it.City, &it.Country, &it.StartDate, &it.EndDate, &it.ImageURL,
		&it.PriceMin, &it.PriceMax, &it.Currency, &it.Status,
	}
}

func detailDest(d *model.EventDetail) []any {
	return append(listItemDest(&d.EventListItem),
		&d.TicketURL, &d.Source, &d.ExternalID, &d.CreatedBy, &d.Metadata, &d.CreatedAt, &d.UpdatedAt,
	)
}

// scanListItems reads rows produced by listColumns followed by a distance
// column.
func scanListItems(rows pgx.Rows) ([]model.EventListItem, error) {
	defer rows.Close()

	items := []model.EventListItem{}
	for rows.Next() {
		var it model.EventListItem
		if err := rows.Scan(append(listItemDest(&it), &it.DistanceMeters)...); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanBubbles(rows pgx.Rows) ([]model.EventBubble, error) {
	defer rows.Close()

	bubbles := []model.EventBubble{}
	for rows.Next() {
		var b model.EventBubble
		if err := rows.Scan(&b.ID, &b.Title, &b.Latitude, &b.Longitude, &b.CategoryID, &b.ColorHex, &b.StartDate); err != nil {
			return nil, err
		}
		bubbles = append(bubbles, b)
	}
	return bubbles, rows.Err()
}

// loadDetail reads one event regardless of status and attaches its tags and
// images.
func loadDetail(ctx context.Context, q db.Querier, id uuid.UUID) (model.EventDetail, error) {
	var d model.EventDetail
	query := `SELECT ` + detailColumns + `
	FROM events e
	JOIN categories c ON c.id = e.category_id
	WHERE e.id = $1`
	if err := q.QueryRow(ctx, query, id).Scan(detailDest(&d)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.EventDetail{}, ErrEventNotFound
		}
		return model.EventDetail{}, err
	}
	if d.Metadata == nil {
		d.Metadata = map[string]any{}
	}

	details := []*model.EventDetail{&d}
	if err := attachChildren(ctx, q, details); err != nil {
		return model.EventDetail{}, err
	}
	return d, nil
}

// attachChildren fetches tags and images for all given events with one
// query each.
func attachChildren(ctx context.Context, q db.Querier, details []*model.EventDetail) error {
	if len(details) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(details))
	byID := make(map[uuid.UUID]*model.EventDetail, len(details))
	for i, d := range details {
		ids[i] = d.ID
		byID[d.ID] = d
		d.Tags = []model.EventTag{}
		d.Images = []model.EventImage{}
	}

	rows, err := q.Query(ctx, `SELECT event_id, tag FROM event_tags WHERE event_id = ANY($1::uuid[]) ORDER BY event_id, tag`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var eventID uuid.UUID
		var tag model.EventTag
		if err := rows.Scan(&eventID, &tag.Tag); err != nil {
			rows.Close()
			return err
		}
		byID[eventID].Tags = append(byID[eventID].Tags, tag)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = q.Query(ctx, `SELECT event_id, id, image_url, display_order FROM event_images
	WHERE event_id = ANY($1::uuid[]) ORDER BY event_id, display_order, id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var eventID uuid.UUID
		var img model.EventImage
		if err := rows.Scan(&eventID, &img.ID, &img.ImageURL, &img.DisplayOrder); err != nil {
			return err
		}
		byID[eventID].Images = append(byID[eventID].Images, img)
	}
	return rows.Err()
}
