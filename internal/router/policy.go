package router

import (
	"net/http"

	"cinema-api/internal/middleware"
	"cinema-api/internal/model"
)

// RoutePolicy is the single table of access rules. Routes not listed here
// require an authenticated caller.
func RoutePolicy() middleware.Policy {
	admin := middleware.RequireRoles(model.RoleAdmin)
	key := middleware.PolicyKey

	return middleware.Policy{
		key(http.MethodGet, "/health"):                   middleware.Public(),
		key(http.MethodGet, "/metrics"):                  middleware.Public(),
		key(http.MethodGet, "/images/*"):                 middleware.Public(),
		key(http.MethodHead, "/images/*"):                middleware.Public(),
		key(http.MethodPost, "/api/users/register"):      middleware.Public(),
		key(http.MethodPost, "/api/users/login"):         middleware.Public(),
		key(http.MethodGet, "/api/users/me"):             middleware.Authenticated(),
		key(http.MethodGet, "/api/movies"):               middleware.Authenticated(),
		key(http.MethodGet, "/api/movies/search"):        middleware.Authenticated(),
		key(http.MethodGet, "/api/movies/{id}"):          middleware.Authenticated(),
		key(http.MethodPost, "/api/movies"):              admin,
		key(http.MethodPut, "/api/movies/{id}"):          admin,
		key(http.MethodDelete, "/api/movies/{id}"):       admin,
		key(http.MethodGet, "/api/reservations"):         admin,
		key(http.MethodGet, "/api/reservations/{id}"):    admin,
		key(http.MethodPost, "/api/reservations"):        admin,
		key(http.MethodDelete, "/api/reservations/{id}"): admin,
		key(http.MethodGet, "/api/audit"):                admin,
	}
}
