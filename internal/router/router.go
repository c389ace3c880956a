package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cinema-api/internal/config"
	"cinema-api/internal/handler"
	"cinema-api/internal/metrics"
	"cinema-api/internal/middleware"
)

type Handlers struct {
	Auth        *handler.AuthHandler
	Movie       *handler.MovieHandler
	Reservation *handler.ReservationHandler
	Audit       *handler.AuditHandler
	Health      *handler.HealthHandler
	Images      http.Handler
}

// New builds the HTTP surface. Every route passes through the access guard,
// which reads its rule from RoutePolicy.
func New(cfg *config.Config, auth middleware.Authenticator, m *metrics.Metrics, h Handlers) (http.Handler, error) {
	guard, err := middleware.NewGuard(auth, RoutePolicy(), m)
	if err != nil {
		return nil, fmt.Errorf("build access guard: %w", err)
	}

	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging(m))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(guard.Middleware(r))

	r.Get("/health", h.Health.Health)
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Method(http.MethodGet, "/images/*", h.Images)
	r.Method(http.MethodHead, "/images/*", h.Images)

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Post("/api/users/register", h.Auth.Register)
		api.Post("/api/users/login", h.Auth.Login)
		api.Get("/api/users/me", h.Auth.Me)
		api.Get("/api/audit", h.Audit.List)

		api.Group(func(catalog chi.Router) {
			catalog.Use(rateLimitMiddleware.Handler)

			catalog.Get("/api/movies", h.Movie.List)
			catalog.Get("/api/movies/search", h.Movie.Search)
			catalog.Get("/api/movies/{id}", h.Movie.Get)
			catalog.Post("/api/movies", h.Movie.Create)
			catalog.Put("/api/movies/{id}", h.Movie.Update)
			catalog.Delete("/api/movies/{id}", h.Movie.Delete)

			catalog.Get("/api/reservations", h.Reservation.List)
			catalog.Get("/api/reservations/{id}", h.Reservation.Get)
			catalog.Post("/api/reservations", h.Reservation.Create)
			catalog.Delete("/api/reservations/{id}", h.Reservation.Delete)
		})
	})

	return r, nil
}
