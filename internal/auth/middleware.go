package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/tyagiab3/user-service/internal/repository"
	"github.com/tyagiab3/user-service/pkg/util"
)

// Middleware validates bearer tokens and populates the security context.
// Requests without a bearer token pass through anonymous; many routes are
// public.
type Middleware struct {
	codec  *TokenCodec
	users  repository.UserRepository
	roles  repository.RoleRepository
	logger *zap.Logger
}

// NewMiddleware constructs the request interceptor.
func NewMiddleware(codec *TokenCodec, users repository.UserRepository, roles repository.RoleRepository, logger *zap.Logger) *Middleware {
	return &Middleware{codec: codec, users: users, roles: roles, logger: logger}
}

// Handle runs once per request, before any handler.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	// Already populated by an earlier stage; do not re-verify.
	if _, ok := ContextFromRequest(c); ok {
		return c.Next()
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return c.Next()
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return c.Next()
	}

	claims, err := m.codec.Verify(parts[1])
	if err != nil {
		return m.reject(c, err)
	}

	// The token's embedded roles are a snapshot from issue time. The
	// authoritative set comes from the store on every request, so a role
	// change takes effect before the token expires.
	user, err := m.users.GetByEmail(c.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return writeUnauthorized(c, "Invalid or unsupported token")
		}
		return util.NewServiceUnavailable(err)
	}

	roleNames, err := m.roles.ListNamesByEmail(c.Context(), user.Email)
	if err != nil {
		return util.NewServiceUnavailable(err)
	}

	c.Locals(securityContextKey, NewSecurityContext(user.Email, roleNames))
	return c.Next()
}

func (m *Middleware) reject(c *fiber.Ctx, err error) error {
	var reason string
	switch {
	case errors.Is(err, ErrTokenExpired):
		reason = "Token has expired"
	case errors.Is(err, ErrTokenSignature):
		reason = "Invalid token signature"
	case errors.Is(err, ErrTokenMalformed):
		reason = "Malformed token"
	default:
		reason = "Invalid or unsupported token"
	}
	m.logger.Warn("token rejected", zap.String("reason", reason))
	return writeUnauthorized(c, reason)
}

// writeUnauthorized short-circuits the request: the failure envelope is the
// entire response body and the downstream handler never runs.
func writeUnauthorized(c *fiber.Ctx, reason string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(util.Failure("Unauthorized: " + reason))
}
