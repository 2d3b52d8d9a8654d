package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bwise1/eventbuzz/config"
	"github.com/bwise1/eventbuzz/internal/broker"
	deps "github.com/bwise1/eventbuzz/internal/debs"
	"github.com/bwise1/eventbuzz/util/storage"
	"github.com/bwise1/eventbuzz/util/values"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

const (
	defaultIdleTimeout    = time.Minute
	defaultReadTimeout    = 5 * time.Second
	defaultWriteTimeout   = 10 * time.Second
	defaultShutdownPeriod = 30 * time.Second
)

type Handler func(w http.ResponseWriter, r *http.Request) *ServerResponse

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := h(w, r)
	respByte, err := json.Marshal(resp)
	if err != nil {
		writeErrorResponse(w, err, values.Error, "unable to marshal server response")
		return
	}
	writeJSONResponse(w, respByte, resp.StatusCode)
}

type API struct {
	Server *http.Server
	Config *config.Config
	Events EventStore
	Titles TitleIndex
	Images storage.ImageStore
	Geo    Geocoder
	Broker broker.Publisher
	Live   LiveFeed
	DB     Pinger
	Log    zerolog.Logger

	limiter *ipRateLimiter
}

// New wires the API onto its dependencies. Optional collaborators left nil
// in d stay disabled.
func New(cfg *config.Config, d *deps.Dependencies, logger zerolog.Logger) *API {
	api := &API{
		Config: cfg,
		Events: d.Events,
		Broker: d.Broker,
		Live:   d.WebSocket,
		DB:     d.DB,
		Log:    logger,
	}
	if d.Cache != nil {
		api.Titles = d.Cache
	}
	if d.Cloudinary != nil {
		api.Images = d.Cloudinary
	}
	if d.Geocoder != nil {
		api.Geo = d.Geocoder
	}
	return api
}

func (api *API) Serve() error {
	api.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", api.Config.Port),
		IdleTimeout:  defaultIdleTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		Handler:      api.setUpServerHandler(),
	}
	api.Log.Info().Str("addr", api.Server.Addr).Str("env", api.Config.Environment).Msg("starting server")
	return api.Server.ListenAndServe()
}

func (api *API) setUpServerHandler() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)
	mux.Use(api.RequestTracing)

	api.limiter = newIPRateLimiter(api.Config.RateLimitRPS, api.Config.RateLimitBurst)

	mux.Route("/api/v1", func(r chi.Router) {
		r.Mount("/health", api.HealthRoutes())
		r.Mount("/categories", api.CategoryRoutes())
		r.Mount("/events", api.EventRoutes())
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   api.Config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", values.HeaderRequestID, values.HeaderRequestSource},
		ExposedHeaders:   []string{values.HeaderRequestID},
		AllowCredentials: true,
	})
	return c.Handler(mux)
}

// Shutdown drains in-flight requests, waiting at most defaultShutdownPeriod.
func (api *API) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultShutdownPeriod)
	defer cancel()

	if api.Server == nil {
		return nil
	}
	return api.Server.Shutdown(ctx)
}
