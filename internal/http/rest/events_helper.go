package rest

import (
	"context"
	"errors"
	"time"

	"github.com/bwise1/eventbuzz/internal/broker"
	"github.com/bwise1/eventbuzz/internal/events"
	"github.com/bwise1/eventbuzz/internal/model"
	"github.com/bwise1/eventbuzz/util/tracing"
	"github.com/bwise1/eventbuzz/util/values"
	"github.com/google/uuid"
)

const (
	notifyTimeout  = 3 * time.Second
	geocodeTimeout = 2 * time.Second
)

// eventErrorStatus maps repository errors to a response status and message.
func eventErrorStatus(err error, fallback string) (string, string) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		return values.Unprocessable, ve.Error()
	case errors.Is(err, events.ErrEventNotFound):
		return values.NotFound, "event not found"
	case errors.Is(err, events.ErrCategoryNotFound):
		return values.Unprocessable, "category_id: category does not exist"
	case errors.Is(err, events.ErrDuplicateExternalID):
		return values.Conflict, err.Error()
	default:
		return values.Error, fallback
	}
}

func (api *API) FindNearbyHelper(ctx context.Context, p model.NearbyParams) (model.Page[model.EventListItem], string, string, error) {
	items, total, err := api.Events.FindNearby(ctx, p)
	if err != nil {
		return model.Page[model.EventListItem]{}, values.Error, "Failed to fetch nearby events", err
	}
	return model.NewPage(items, total, p.Page, p.PageSize), values.Success, "Nearby events fetched successfully", nil
}

func (api *API) GetBubblesHelper(ctx context.Context, p model.BubbleParams) ([]model.EventBubble, string, string, error) {
	bubbles, err := api.Events.GetBubbles(ctx, p)
	if err != nil {
		return nil, values.Error, "Failed to fetch event bubbles", err
	}
	return bubbles, values.Success, "Event bubbles fetched successfully", nil
}

func (api *API) SearchEventsHelper(ctx context.Context, p model.SearchParams) (model.Page[model.EventListItem], string, string, error) {
	items, total, err := api.Events.Search(ctx, p)
	if err != nil {
		return model.Page[model.EventListItem]{}, values.Error, "Failed to search events", err
	}
	return model.NewPage(items, total, p.Page, p.PageSize), values.Success, "Search completed successfully", nil
}

// SuggestTitlesHelper serves prefix suggestions from the title index, or
// from a substring search when no index is configured.
func (api *API) SuggestTitlesHelper(ctx context.Context, prefix string, limit int) ([]string, string, string, error) {
	if api.Titles != nil {
		titles, err := api.Titles.SuggestTitles(ctx, prefix, limit)
		if err != nil {
			return nil, values.Error, "Failed to fetch suggestions", err
		}
		return titles, values.Success, "Suggestions fetched successfully", nil
	}

	items, _, err := api.Events.Search(ctx, model.SearchParams{Query: prefix, Page: 1, PageSize: limit})
	if err != nil {
		return nil, values.Error, "Failed to fetch suggestions", err
	}
	seen := make(map[string]bool, len(items))
	titles := make([]string, 0, len(items))
	for _, it := range items {
		if !seen[it.Title] {
			seen[it.Title] = true
			titles = append(titles, it.Title)
		}
	}
	return titles, values.Success, "Suggestions fetched successfully", nil
}

func (api *API) GetEventHelper(ctx context.Context, id uuid.UUID) (model.EventDetail, string, string, error) {
	detail, err := api.Events.GetByID(ctx, id)
	if err != nil {
		status, message := eventErrorStatus(err, "Failed to fetch event")
		return model.EventDetail{}, status, message, err
	}
	return detail, values.Success, "Event fetched successfully", nil
}

func (api *API) CreateEventHelper(ctx context.Context, req model.CreateEventRequest, principal model.Principal) (model.EventDetail, string, string, error) {
	api.fillAddress(ctx, &req)

	detail, err := api.Events.Create(ctx, req, principal.UserID())
	if err != nil {
		status, message := eventErrorStatus(err, "Failed to create event")
		return model.EventDetail{}, status, message, err
	}

	api.syncTitle(ctx, "", detail)
	api.notifyChange(ctx, broker.EventCreated, detail.ID, &detail)
	return detail, values.Created, "Event created successfully", nil
}

func (api *API) UpdateEventHelper(ctx context.Context, id uuid.UUID, req model.UpdateEventRequest) (model.EventDetail, string, string, error) {
	var previousTitle string
	if api.Titles != nil && req.Title.Present() {
		if prev, err := api.Events.GetByID(ctx, id); err == nil {
			previousTitle = prev.Title
		}
	}

	detail, err := api.Events.Update(ctx, id, req)
	if err != nil {
		status, message := eventErrorStatus(err, "Failed to update event")
		return model.EventDetail{}, status, message, err
	}

	api.syncTitle(ctx, previousTitle, detail)
	api.notifyChange(ctx, broker.EventUpdated, detail.ID, &detail)
	return detail, values.Success, "Event updated successfully", nil
}

func (api *API) DeleteEventHelper(ctx context.Context, id uuid.UUID) (string, string, error) {
	found, err := api.Events.SoftDelete(ctx, id)
	if err != nil {
		return values.Error, "Failed to delete event", err
	}
	if !found {
		return values.NotFound, "event not found", events.ErrEventNotFound
	}

	var deleted *model.EventDetail
	if detail, err := api.Events.GetByID(ctx, id); err == nil {
		deleted = &detail
		api.releaseTitle(ctx, detail.Title)
	}
	api.notifyChange(ctx, broker.EventDeleted, id, deleted)
	return values.Deleted, "Event deleted successfully", nil
}

// AddEventImageHelper stores a new gallery image, re-hosting it first when
// an image store is configured.
func (api *API) AddEventImageHelper(ctx context.Context, id uuid.UUID, req model.AddImageRequest) (model.EventImage, string, string, error) {
	if api.Images != nil {
		hosted, err := api.Images.UploadImage(ctx, req.ImageURL)
		if err != nil {
			return model.EventImage{}, values.Error, "Failed to upload image", err
		}
		req.ImageURL = hosted
	}

	img, err := api.Events.AddImage(ctx, id, req)
	if err != nil {
		status, message := eventErrorStatus(err, "Failed to add image")
		return model.EventImage{}, status, message, err
	}
	return img, values.Created, "Image added successfully", nil
}

func (api *API) ListCategoriesHelper(ctx context.Context) ([]model.Category, string, string, error) {
	categories, err := api.Events.ListCategories(ctx)
	if err != nil {
		return nil, values.Error, "Failed to fetch categories", err
	}
	return categories, values.Success, "Categories fetched successfully", nil
}

// fillAddress completes missing address fields from the event coordinates.
// Lookup failures leave the request unchanged.
func (api *API) fillAddress(ctx context.Context, req *model.CreateEventRequest) {
	if api.Geo == nil || req.Latitude == nil || req.Longitude == nil {
		return
	}
	if req.Address != nil && req.City != nil && req.Country != nil {
		return
	}

	geoCtx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()
	place, err := api.Geo.ReverseGeocode(geoCtx, *req.Latitude, *req.Longitude)
	if err != nil {
		tc := tracing.FromContext(ctx)
		tc.Logger.Warn().Err(err).Msg("reverse geocoding failed")
		return
	}

	fill := func(field **string, value string) {
		if *field == nil && value != "" {
			v := value
			*field = &v
		}
	}
	fill(&req.Address, place.Address)
	fill(&req.City, place.City)
	fill(&req.Country, place.Country)
}

// syncTitle keeps the suggestion index in step with a committed event: the
// title is indexed while the event is active, and a title the event no
// longer holds is released.
func (api *API) syncTitle(ctx context.Context, previous string, detail model.EventDetail) {
	if api.Titles == nil {
		return
	}
	if previous != "" && previous != detail.Title {
		api.releaseTitle(ctx, previous)
	}
	if detail.Status == model.StatusActive {
		api.Titles.IndexTitle(ctx, detail.Title)
		return
	}
	api.releaseTitle(ctx, detail.Title)
}

// releaseTitle drops title from the index once no active event carries it.
func (api *API) releaseTitle(ctx context.Context, title string) {
	if api.Titles == nil {
		return
	}
	n, err := api.Events.CountActiveByTitle(ctx, title)
	if err != nil {
		tc := tracing.FromContext(ctx)
		tc.Logger.Warn().Err(err).Str("title", title).Msg("failed to count active titles")
		return
	}
	if n == 0 {
		api.Titles.RemoveTitle(ctx, title)
	}
}

// notifyChange pushes a committed change to the live feed and the broker.
// Failures are logged; the mutation has already succeeded.
func (api *API) notifyChange(ctx context.Context, kind string, id uuid.UUID, detail *model.EventDetail) {
	change := broker.EventChange{
		Type:       kind,
		EventID:    id,
		OccurredAt: time.Now().UTC(),
		Event:      detail,
	}
	if kind == broker.EventDeleted {
		change.Event = nil
	}

	if api.Live != nil {
		if detail != nil {
			api.Live.PublishChange(change, true, detail.Latitude, detail.Longitude)
		} else {
			api.Live.PublishChange(change, false, 0, 0)
		}
	}

	if api.Broker != nil {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := api.Broker.Publish(pubCtx, change); err != nil {
			tc := tracing.FromContext(ctx)
			tc.Logger.Error().Err(err).
				Str("event_id", id.String()).Str("type", kind).Msg("failed to publish event change")
		}
	}
}
