package events

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwise1/eventbuzz/internal/db"
	"github.com/bwise1/eventbuzz/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Create inserts the event with its tags and images in one transaction and
// returns the stored detail. createdBy is recorded only when it refers to a
// known user.
func (r *Repo) Create(ctx context.Context, req model.CreateEventRequest, createdBy *uuid.UUID) (model.EventDetail, error) {
	req.Normalize()
	if err := req.Check(); err != nil {
		return model.EventDetail{}, err
	}
	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	var detail model.EventDetail
	err := r.db.RunInTx(ctx, func(tx pgx.Tx) error {
		if err := r.ensureCategory(ctx, tx, req.CategoryID); err != nil {
			return err
		}

		var id uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO events (title, description, category_id, location, address, city, country,
				start_date, end_date, image_url, ticket_url, price_min, price_max, currency, status,
				source, external_id, created_by, metadata)
			VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography, $6, $7, $8,
				$9, $10, $11, $12, $13, $14, $15, $16,
				$17, $18, (SELECT id FROM users WHERE id = $19), $20)
			RETURNING id`,
			req.Title, req.Description, req.CategoryID, *req.Longitude, *req.Latitude, req.Address, req.City, req.Country,
			req.StartDate, req.EndDate, req.ImageURL, req.TicketURL, req.PriceMin, req.PriceMax, req.Currency, model.StatusActive,
			req.Source, req.ExternalID, createdBy, metadata,
		).Scan(&id)
		if err != nil {
			return translate(err)
		}

		if err := insertTags(ctx, tx, id, req.Tags); err != nil {
			return err
		}
		if len(req.Images) > 0 {
			_, err = tx.Exec(ctx, `
				INSERT INTO event_images (event_id, image_url, display_order)
				SELECT $1, u.url, (u.ord - 1)::int
				FROM unnest($2::text[]) WITH ORDINALITY AS u(url, ord)`, id, req.Images)
			if err != nil {
				return fmt.Errorf("insert images: %w", err)
			}
		}

		detail, err = loadDetail(ctx, tx, id)
		return err
	})
	if err != nil {
		r.log.Debug().Err(err).Str("title", req.Title).Msg("create event failed")
		return model.EventDetail{}, err
	}

	r.log.Info().Str("event_id", detail.ID.String()).Msg("event created")
	return detail, nil
}

// Update applies the fields present in req. A null nullable field is
// cleared, an absent field is untouched. Tags, when present, replace the
// existing set. Status is written as given; updating a deleted event does
// not restore it unless the payload says so.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, req model.UpdateEventRequest) (model.EventDetail, error) {
	if err := req.Check(); err != nil {
		return model.EventDetail{}, err
	}

	var detail model.EventDetail
	err := r.db.RunInTx(ctx, func(tx pgx.Tx) error {
		if err := lockEvent(ctx, tx, id); err != nil {
			return err
		}
		if req.CategoryID.Present() {
			if err := r.ensureCategory(ctx, tx, *req.CategoryID.Value); err != nil {
				return err
			}
		}

		query, args := buildUpdate(id, req)
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return translate(err)
		}

		if req.Tags.Present() {
			if _, err := tx.Exec(ctx, `DELETE FROM event_tags WHERE event_id = $1`, id); err != nil {
				return fmt.Errorf("clear tags: %w", err)
			}
			if err := insertTags(ctx, tx, id, model.NormalizeTags(*req.Tags.Value)); err != nil {
				return err
			}
		}

		var err error
		detail, err = loadDetail(ctx, tx, id)
		return err
	})
	if err != nil {
		return model.EventDetail{}, err
	}

	r.log.Info().Str("event_id", id.String()).Msg("event updated")
	return detail, nil
}

// SoftDelete marks the event deleted. It reports false when no event has
// the id. Tags and images stay attached.
func (r *Repo) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Pool().Exec(ctx,
		`UPDATE events SET status = $2, updated_at = NOW() WHERE id = $1`, id, model.StatusDeleted)
	if err != nil {
		return false, fmt.Errorf("soft delete event: %w", err)
	}
	found := tag.RowsAffected() > 0
	if found {
		r.log.Info().Str("event_id", id.String()).Msg("event soft-deleted")
	}
	return found, nil
}

// AddImage appends an image to the event. Without an explicit order the
// image goes after the current last one.
func (r *Repo) AddImage(ctx context.Context, eventID uuid.UUID, req model.AddImageRequest) (model.EventImage, error) {
	var img model.EventImage
	err := r.db.RunInTx(ctx, func(tx pgx.Tx) error {
		if err := lockEvent(ctx, tx, eventID); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			INSERT INTO event_images (event_id, image_url, display_order)
			VALUES ($1, $2, COALESCE($3::int, (SELECT COALESCE(MAX(display_order) + 1, 0) FROM event_images WHERE event_id = $1)))
			RETURNING id, image_url, display_order`,
			eventID, req.ImageURL, req.DisplayOrder,
		).Scan(&img.ID, &img.ImageURL, &img.DisplayOrder)
	})
	if err != nil {
		return model.EventImage{}, err
	}
	return img, nil
}

func lockEvent(ctx context.Context, q db.Querier, id uuid.UUID) error {
	var locked uuid.UUID
	err := q.QueryRow(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrEventNotFound
	}
	return err
}

func insertTags(ctx context.Context, q db.Querier, eventID uuid.UUID, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	_, err := q.Exec(ctx, `
		INSERT INTO event_tags (event_id, tag)
		SELECT $1, t FROM unnest($2::text[]) AS t
		ON CONFLICT DO NOTHING`, eventID, tags)
	if err != nil {
		return fmt.Errorf("insert tags: %w", err)
	}
	return nil
}

// assignments accumulates SET clauses for a partial update.
type assignments struct {
	sets []string
	args []any
}

func (a *assignments) add(column string, value any) {
	a.args = append(a.args, value)
	a.sets = append(a.sets, fmt.Sprintf("%s = $%d", column, len(a.args)))
}

func assign[T any](a *assignments, column string, o model.Optional[T]) {
	if !o.Set {
		return
	}
	if o.Value == nil {
		a.add(column, nil)
		return
	}
	a.add(column, *o.Value)
}

// buildUpdate renders the UPDATE statement for the present fields. The
// event id is always $1 and updated_at is always refreshed.
func buildUpdate(id uuid.UUID, req model.UpdateEventRequest) (string, []any) {
	a := &assignments{args: []any{id}}

	assign(a, "title", req.Title)
	assign(a, "description", req.Description)
	assign(a, "category_id", req.CategoryID)
	assign(a, "address", req.Address)
	assign(a, "city", req.City)
	assign(a, "country", req.Country)
	assign(a, "start_date", req.StartDate)
	assign(a, "end_date", req.EndDate)
	assign(a, "image_url", req.ImageURL)
	assign(a, "ticket_url", req.TicketURL)
	assign(a, "price_min", req.PriceMin)
	assign(a, "price_max", req.PriceMax)
	if req.Currency.Present() {
		a.add("currency", strings.ToUpper(*req.Currency.Value))
	}
	assign(a, "status", req.Status)
	assign(a, "external_id", req.ExternalID)
	if req.Metadata.Set {
		metadata := map[string]any{}
		if req.Metadata.Value != nil {
			metadata = *req.Metadata.Value
		}
		a.add("metadata", metadata)
	}

	if req.HasLocation() {
		a.args = append(a.args, *req.Longitude.Value, *req.Latitude.Value)
		a.sets = append(a.sets, fmt.Sprintf("location = ST_SetSRID(ST_MakePoint($%d, $%d), 4326)::geography",
			len(a.args)-1, len(a.args)))
	}

	a.sets = append(a.sets, "updated_at = NOW()")
	return fmt.Sprintf("UPDATE events SET %s WHERE id = $1", strings.Join(a.sets, ", ")), a.args
}
