package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the cross-cutting HTTP settings.
type RouterConfig struct {
	AllowedOrigins     []string
	RateLimitPerSecond int
	RateLimitBurst     int
	RequestTimeout     time.Duration
}

// Routes mounts every endpoint on a chi router.
func (h *Handler) Routes(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitPerSecond > 0 {
			r.Use(h.RateLimitMiddleware(NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)))
		}

		// Streams outlive the request timeout.
		r.Get("/simulations/{id}/stream", h.StreamSimulation)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(cfg.RequestTimeout))

			r.Post("/simulations", h.CreateSimulation)
			r.Get("/simulations/{id}", h.GetSimulation)

			r.Get("/seasons/{season}/ratings", h.GetSeasonRatings)
			r.Get("/seasons/{season}/matchups/{team}/{opp}", h.GetMatchup)
		})
	})

	return r
}
