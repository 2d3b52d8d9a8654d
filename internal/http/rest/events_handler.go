package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/bwise1/eventbuzz/internal/model"
	"github.com/bwise1/eventbuzz/util"
	"github.com/bwise1/eventbuzz/util/tracing"
	"github.com/bwise1/eventbuzz/util/values"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	defaultRadius   = 5000
	defaultPage     = 1
	defaultPageSize = 20
	defaultSuggest  = 10
)

func (api *API) EventRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Group(func(r chi.Router) {
		r.Use(api.RateLimit)
		r.Method(http.MethodGet, "/nearby", Handler(api.GetNearbyEvents))
		r.Method(http.MethodGet, "/bubbles", Handler(api.GetEventBubbles))
		r.Method(http.MethodGet, "/search", Handler(api.SearchEvents))
		r.Method(http.MethodGet, "/suggest", Handler(api.SuggestEventTitles))
		r.Method(http.MethodGet, "/{id}", Handler(api.GetEvent))
	})

	if api.Live != nil {
		mux.Get("/live", api.Live.HandleConnections)
	}

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireAdmin)
		r.Method(http.MethodPost, "/", Handler(api.CreateEvent))
		r.Method(http.MethodPut, "/{id}", Handler(api.UpdateEvent))
		r.Method(http.MethodPatch, "/{id}", Handler(api.UpdateEvent))
		r.Method(http.MethodDelete, "/{id}", Handler(api.DeleteEvent))
		r.Method(http.MethodPost, "/{id}/images", Handler(api.AddEventImage))
	})

	return mux
}

type nearbyQuery struct {
	Latitude   *float64   `schema:"lat" validate:"required,latitude"`
	Longitude  *float64   `schema:"lng" validate:"required,longitude"`
	Radius     float64    `schema:"radius" validate:"gte=100,lte=50000"`
	CategoryID *int       `schema:"category_id" validate:"omitempty,gt=0"`
	Status     string     `schema:"status" validate:"max=20"`
	DateFrom   *time.Time `schema:"date_from"`
	DateTo     *time.Time `schema:"date_to"`
	Page       int        `schema:"page" validate:"gte=1"`
	PageSize   int        `schema:"page_size" validate:"gte=1,lte=100"`
}

type bubbleQuery struct {
	Latitude   *float64 `schema:"lat" validate:"required,latitude"`
	Longitude  *float64 `schema:"lng" validate:"required,longitude"`
	Radius     float64  `schema:"radius" validate:"gte=100,lte=50000"`
	CategoryID *int     `schema:"category_id" validate:"omitempty,gt=0"`
}

type searchQuery struct {
	Query      string `schema:"q" validate:"required,min=1,max=200"`
	CategoryID *int   `schema:"category_id" validate:"omitempty,gt=0"`
	Page       int    `schema:"page" validate:"gte=1"`
	PageSize   int    `schema:"page_size" validate:"gte=1,lte=100"`
}

type suggestQuery struct {
	Query string `schema:"q" validate:"required,min=1,max=100"`
	Limit int    `schema:"limit" validate:"gte=1,lte=25"`
}

// decodeQuery fills target from the query string and validates it. A
// non-nil response is the error to return.
func decodeQuery(r *http.Request, tc tracing.Context, target interface{}) *ServerResponse {
	if err := util.DecodeQuery(r.URL.Query(), target); err != nil {
		return respondWithError(err, "invalid query parameters", values.BadRequestBody, tc)
	}
	if err := util.ValidateStruct(target); err != nil {
		return respondWithError(err, util.ValidationMessage(err), values.Unprocessable, tc)
	}
	return nil
}

func eventIDParam(r *http.Request, tc tracing.Context) (uuid.UUID, *ServerResponse) {
	id, err := util.StringToUUID(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, respondWithError(err, "invalid event id", values.BadRequestBody, tc)
	}
	return id, nil
}

func (api *API) GetNearbyEvents(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	q := nearbyQuery{Radius: defaultRadius, Status: model.StatusActive, Page: defaultPage, PageSize: defaultPageSize}
	if resp := decodeQuery(r, tc, &q); resp != nil {
		return resp
	}
	if q.DateFrom != nil && q.DateTo != nil && q.DateTo.Before(*q.DateFrom) {
		return respondWithError(errors.New("date_to before date_from"), "date_to must not be before date_from", values.Unprocessable, tc)
	}

	page, status, message, err := api.FindNearbyHelper(r.Context(), model.NearbyParams{
		Center:     model.Point{Latitude: *q.Latitude, Longitude: *q.Longitude},
		Radius:     q.Radius,
		CategoryID: q.CategoryID,
		Status:     q.Status,
		DateFrom:   q.DateFrom,
		DateTo:     q.DateTo,
		Page:       q.Page,
		PageSize:   q.PageSize,
	})
	if err != nil {
		return respondWithError(err, message, status, tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       page,
	}
}

func (api *API) GetEventBubbles(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	q := bubbleQuery{Radius: defaultRadius}
	if resp := decodeQuery(r, tc, &q); resp != nil {
		return resp
	}

	bubbles, status, message, err := api.GetBubblesHelper(r.Context(), model.BubbleParams{
		Center:     model.Point{Latitude: *q.Latitude, Longitude: *q.Longitude},
		Radius:     q.Radius,
		CategoryID: q.CategoryID,
	})
	if err != nil {
		return respondWithError(err, message, status, tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       bubbles,
	}
}

func (api *API) SearchEvents(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	q := searchQuery{Page: defaultPage, PageSize: defaultPageSize}
	if resp := decodeQuery(r, tc, &q); resp != nil {
		return resp
	}

	page, status, message, err := api.SearchEventsHelper(r.Context(), model.SearchParams{
		Query:      q.Query,
		CategoryID: q.CategoryID,
		Page:       q.Page,
		PageSize:   q.PageSize,
	})
	if err != nil {
		return respondWithError(err, message, status, tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       page,
	}
}

func (api *API) SuggestEventTitles(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	q := suggestQuery{Limit: defaultSuggest}
	if resp := decodeQuery(r, tc, &q); resp != nil {
		return resp
	}

	titles, status, message, err := api.SuggestTitlesHelper(r.Context(), q.Query, q.Limit)
	if err != nil {
		return respondWithError(err, message, status, tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       titles,
	}
}

func (api *API) GetEvent(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, resp := eventIDParam(r, tc)
	if resp != nil {
		return resp
	}

	detail, status, message, err := api.GetEventHelper(r.Context(), id)
	if err != nil {
		return respondWithError(err, message, status, tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       detail,
	}
}

func (api *API) CreateEvent(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	var req model.CreateEventRequest
	if decodeErr := util.DecodeJSONBody(tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, util.ValidationMessage(err), values.Unprocessable, tc)
	}

	principal, err := util.GetPrincipalFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get principal from context", values.NotAuthorised, tc)
	}

	detail, status, message, err := api.CreateEventHelper(r.Context(), req, principal)
	if err != nil {
		return respondWithError(err, message, status, tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       detail,
	}
}

func (api *API) UpdateEvent(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, resp := eventIDParam(r, tc)
	if resp != nil {
		return resp
	}

	var req model.UpdateEventRequest
	if decodeErr := util.DecodeJSONBody(tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, tc)
	}

	detail, status, message, err := api.UpdateEventHelper(r.Context(), id, req)
	if err != nil {
		return respondWithError(err, message, status, tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       detail,
	}
}

func (api *API) DeleteEvent(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, resp := eventIDParam(r, tc)
	if resp != nil {
		return resp
	}

	status, message, err := api.DeleteEventHelper(r.Context(), id)
	if err != nil {
		return respondWithError(err, message, status, tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
	}
}

func (api *API) AddEventImage(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, resp := eventIDParam(r, tc)
	if resp != nil {
		return resp
	}

	var req model.AddImageRequest
	if decodeErr := util.DecodeJSONBody(tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, util.ValidationMessage(err), values.Unprocessable, tc)
	}

	img, status, message, err := api.AddEventImageHelper(r.Context(), id, req)
	if err != nil {
		return respondWithError(err, message, status, tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       img,
	}
}
