package rest

import (
	"net/http"

	"github.com/bwise1/eventbuzz/util"
	"github.com/bwise1/eventbuzz/util/tracing"
	"github.com/go-chi/chi/v5"
)

func (api *API) CategoryRoutes() chi.Router {
	mux := chi.NewRouter()
	mux.Method(http.MethodGet, "/", Handler(api.ListCategories))
	return mux
}

func (api *API) ListCategories(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	categories, status, message, err := api.ListCategoriesHelper(r.Context())
	if err != nil {
		return respondWithError(err, message, status, tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       categories,
	}
}
