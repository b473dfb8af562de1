// Package api wires the HTTP surface: routing, middleware and handlers.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/podcastgen/internal/api/handlers"
	"github.com/nikhilbhutani/podcastgen/internal/api/middleware"
	"github.com/nikhilbhutani/podcastgen/internal/auth"
	"github.com/nikhilbhutani/podcastgen/internal/config"
	"github.com/nikhilbhutani/podcastgen/internal/jobs"
	"github.com/nikhilbhutani/podcastgen/internal/queue"
	"github.com/nikhilbhutani/podcastgen/internal/voices"
)

// Deps are the collaborators the router needs; main builds them.
type Deps struct {
	Jobs     *jobs.Store
	Queue    queue.Enqueuer
	Catalog  *voices.Catalog
	Checks   []handlers.Check
	Interval time.Duration // websocket poll interval
}

type Router struct {
	mux  *chi.Mux
	cfg  *config.Config
	deps Deps
	auth *auth.Authenticator
	rl   *middleware.RateLimiter
}

func NewRouter(cfg *config.Config, deps Deps) *Router {
	keys := auth.NewAPIKeys(cfg.Auth.APIKeyHeader, cfg.Auth.APIKeys)
	return &Router{
		mux:  chi.NewRouter(),
		cfg:  cfg,
		deps: deps,
		auth: auth.NewAuthenticator(cfg.Auth.JWTSecret, keys),
		rl:   middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
	}
}

// Close stops background work started by the router.
func (rt *Router) Close() {
	rt.rl.Stop()
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.Server.CORSOrigins, rt.cfg.Auth.APIKeyHeader))
	r.Use(rt.rl.Limit)

	health := handlers.NewHealthHandler(rt.deps.Checks...)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	podcastH := handlers.NewPodcastHandler(rt.deps.Jobs, rt.deps.Queue)
	batchH := handlers.NewBatchHandler(rt.deps.Jobs, rt.deps.Queue)
	eventsH := handlers.NewEventsHandler(rt.deps.Jobs, rt.deps.Interval)
	catalogH := handlers.NewCatalogHandler(rt.deps.Catalog)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.auth.Authenticate)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireScope(auth.ScopePodcastsRead))
			r.Get("/podcasts/{id}", podcastH.Get)
			r.Get("/podcasts/{id}/events", eventsH.Stream)
			r.Get("/batches/{id}", batchH.Get)
			r.Get("/voices", catalogH.Voices)
			r.Get("/scenes", catalogH.Scenes)
			r.Get("/estimate", catalogH.Estimate)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireScope(auth.ScopePodcastsWrite))
			r.Post("/podcasts", podcastH.Create)
			r.Post("/batches", batchH.Create)
		})
	})

	return r
}
