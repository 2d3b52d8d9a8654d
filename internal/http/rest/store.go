package rest

import (
	"context"
	"net/http"

	stadiamaps "github.com/bwise1/eventbuzz/internal/http/stadia_maps"
	"github.com/bwise1/eventbuzz/internal/model"
	"github.com/google/uuid"
)

// EventStore is the event repository as seen by the handlers.
type EventStore interface {
	FindNearby(ctx context.Context, p model.NearbyParams) ([]model.EventListItem, int, error)
	GetBubbles(ctx context.Context, p model.BubbleParams) ([]model.EventBubble, error)
	Search(ctx context.Context, p model.SearchParams) ([]model.EventListItem, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.EventDetail, error)
	Create(ctx context.Context, req model.CreateEventRequest, createdBy *uuid.UUID) (model.EventDetail, error)
	Update(ctx context.Context, id uuid.UUID, req model.UpdateEventRequest) (model.EventDetail, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
	AddImage(ctx context.Context, eventID uuid.UUID, req model.AddImageRequest) (model.EventImage, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	CountActiveByTitle(ctx context.Context, title string) (int, error)
}

// TitleIndex serves title suggestions. It is optional.
type TitleIndex interface {
	IndexTitle(ctx context.Context, title string)
	RemoveTitle(ctx context.Context, title string)
	SuggestTitles(ctx context.Context, prefix string, limit int) ([]string, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// LiveFeed receives committed changes for connected map clients.
type LiveFeed interface {
	PublishChange(data any, located bool, lat, lng float64)
	HandleConnections(w http.ResponseWriter, r *http.Request)
}

// Geocoder resolves a coordinate to a postal address. It is optional.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (stadiamaps.Place, error)
}
