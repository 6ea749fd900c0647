package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tyagiab3/user-service/internal/api/http/handlers"
	"github.com/tyagiab3/user-service/internal/auth"
	"github.com/tyagiab3/user-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Roles          *handlers.RolesHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. The interceptor runs on every request;
// role requirements compose explicitly per route.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	api.Post("/users/register", cfg.Users.Register)
	api.Post("/users/login", cfg.Users.Login)
	api.Get("/users/me", auth.RequireAuthenticated(), cfg.Users.Me)

	api.Post("/roles", auth.RequireRole(domain.RoleAdmin), cfg.Roles.Create)
	api.Post("/users/:id/roles", auth.RequireRole(domain.RoleAdmin), cfg.Roles.Assign)
	api.Delete("/users/:id/roles/:role", auth.RequireRole(domain.RoleAdmin), cfg.Roles.Remove)

	api.Get("/admin/stats", auth.RequireRole(domain.RoleAdmin), cfg.Admin.Stats)
}
