package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tyagiab3/user-service/pkg/util"
)

// RequireRole guards a route with a declarative role requirement. An empty
// security context is rejected as unauthenticated (401), distinct from a
// populated context lacking the role (403). All-or-nothing per route.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sc, ok := ContextFromRequest(c)
		if !ok {
			return util.NewUnauthenticated("Authentication required")
		}
		if !sc.HasRole(role) {
			return util.NewAccessDenied("Access denied")
		}
		return c.Next()
	}
}

// RequireAuthenticated guards a route that any verified caller may use.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := ContextFromRequest(c); !ok {
			return util.NewUnauthenticated("Authentication required")
		}
		return c.Next()
	}
}
