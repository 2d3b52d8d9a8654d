package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/bwise1/eventbuzz/util/tracing"
	"github.com/bwise1/eventbuzz/util/values"
	"github.com/go-chi/chi/v5"
)

const readinessTimeout = 2 * time.Second

func (api *API) HealthRoutes() chi.Router {
	mux := chi.NewRouter()
	mux.Method(http.MethodGet, "/", Handler(api.Health))
	mux.Method(http.MethodGet, "/ready", Handler(api.Ready))
	return mux
}

func (api *API) Health(_ http.ResponseWriter, _ *http.Request) *ServerResponse {
	return ok("ok", map[string]string{
		"name":        api.Config.AppName,
		"version":     api.Config.AppVersion,
		"environment": api.Config.Environment,
	})
}

// Ready reports whether the database answers within readinessTimeout.
func (api *API) Ready(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := api.DB.Ping(ctx); err != nil {
		return respondWithError(err, "database unavailable", values.Unavailable, tc)
	}
	return ok("ready", map[string]string{"database": "ok"})
}
