package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"cityevents/internal/delivery/http/controllers"
	"cityevents/internal/delivery/http/middleware"
	"cityevents/internal/domain"
)

// Controllers bundles the handlers the router wires up.
type Controllers struct {
	Events     *controllers.EventController
	Requests   *controllers.RequestController
	Categories *controllers.CategoryController
	Users      *controllers.UserController
	Auth       *controllers.AuthController
}

// NewRouter initializes the HTTP router with all application routes.
// Admin routes (except login) require a Bearer token.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	admin := middleware.RequireAuth(verifier, logger)

	// Public surface
	mux.HandleFunc("GET /events", c.Events.PublicSearch)
	mux.HandleFunc("GET /events/{id}", c.Events.PublicGet)
	mux.HandleFunc("GET /categories", c.Categories.List)
	mux.HandleFunc("GET /categories/{catId}", c.Categories.Get)

	// Initiator surface
	mux.HandleFunc("POST /users/{userId}/events", c.Events.Create)
	mux.HandleFunc("GET /users/{userId}/events", c.Events.ListByUser)
	mux.HandleFunc("GET /users/{userId}/events/{eventId}", c.Events.GetByUser)
	mux.HandleFunc("PATCH /users/{userId}/events/{eventId}", c.Events.UpdateByUser)
	mux.HandleFunc("GET /users/{userId}/events/{eventId}/requests", c.Requests.ListByEvent)
	mux.HandleFunc("PATCH /users/{userId}/events/{eventId}/requests", c.Requests.UpdateStatus)

	// Requester surface
	mux.HandleFunc("POST /users/{userId}/requests", c.Requests.Create)
	mux.HandleFunc("GET /users/{userId}/requests", c.Requests.ListByUser)
	mux.HandleFunc("PATCH /users/{userId}/requests/{requestId}/cancel", c.Requests.Cancel)

	// Auth
	mux.HandleFunc("POST /admin/auth/login", c.Auth.Login)

	// Admin surface
	mux.HandleFunc("GET /admin/events", admin(c.Events.AdminSearch))
	mux.HandleFunc("PATCH /admin/events/{eventId}", admin(c.Events.AdminUpdate))
	mux.HandleFunc("POST /admin/categories", admin(c.Categories.Create))
	mux.HandleFunc("PATCH /admin/categories/{catId}", admin(c.Categories.Update))
	mux.HandleFunc("DELETE /admin/categories/{catId}", admin(c.Categories.Delete))
	mux.HandleFunc("POST /admin/users", admin(c.Users.Create))
	mux.HandleFunc("GET /admin/users", admin(c.Users.List))
	mux.HandleFunc("DELETE /admin/users/{userId}", admin(c.Users.Delete))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
