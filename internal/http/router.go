package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/jc230285/s42-dashboard/internal/api"
	"github.com/jc230285/s42-dashboard/internal/auth"
	"github.com/jc230285/s42-dashboard/internal/calendar"
	"github.com/jc230285/s42-dashboard/internal/config"
	"github.com/jc230285/s42-dashboard/internal/http/csrf"
	"github.com/jc230285/s42-dashboard/internal/http/ratelimit"
	"github.com/jc230285/s42-dashboard/internal/metrics"
	"github.com/jc230285/s42-dashboard/internal/store"
)

// NewRouter wires all HTTP routes for auth and the JSON API.
func NewRouter(cfg *config.Config, store *store.Store, authService *auth.Service, aggregator *calendar.Aggregator) http.Handler {
	r := chi.NewRouter()

	// Auth endpoints: 5 requests per second, burst of 10
	authRateLimiter := ratelimit.NewIPRateLimiter(rate.Limit(5), 10, 5*time.Minute, cfg.TrustedProxies)
	// API endpoints: 20 requests per second, burst of 50 (calendar views poll)
	apiRateLimiter := ratelimit.NewIPRateLimiter(rate.Limit(20), 50, 5*time.Minute, cfg.TrustedProxies)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.HealthCheck(ctx); err != nil {
			http.Error(w, "unready", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.PrometheusEnabled {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			metrics.Handler().ServeHTTP(w, r)
		})
	}

	apiHandler := api.NewHandler(cfg, store, authService, aggregator)

	r.Route("/auth", func(r chi.Router) {
		r.Use(authRateLimiter.Middleware())
		r.Get("/login", authService.BeginOAuth)
		r.Get("/callback", authService.HandleOAuthCallback)
	})

	r.With(authService.RequireSession, csrf.Middleware(cfg)).Post("/auth/logout", authService.Logout)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiRateLimiter.Middleware())
		r.Use(authService.RequireAPIAuth)

		r.Post("/calendar/events", apiHandler.AggregateCalendar)
		r.Get("/calendar/events", apiHandler.AggregateSavedCalendar)

		r.Get("/sources", apiHandler.ListSources)
		r.Post("/sources", apiHandler.CreateSource)
		r.Delete("/sources/{id}", apiHandler.DeleteSource)

		r.Get("/pages", apiHandler.Pages)

		r.Get("/tokens", apiHandler.ListTokens)
		r.Post("/tokens", apiHandler.CreateToken)
		r.Post("/tokens/{id}/revoke", apiHandler.RevokeToken)

		r.Get("/sessions", apiHandler.Sessions)
		r.Post("/sessions/{id}/revoke", apiHandler.RevokeSession)
		r.Post("/sessions/revoke-all", apiHandler.RevokeAllSessions)
	})

	return r
}
