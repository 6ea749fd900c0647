package auth

import "github.com/gofiber/fiber/v2"

const securityContextKey = "security_context"

// SecurityContext is the per-request record of the verified caller. It is
// populated at most once by the middleware and discarded with the request.
type SecurityContext struct {
	Subject string
	roles   map[string]struct{}
}

// NewSecurityContext builds a context for the subject; duplicate roles collapse.
func NewSecurityContext(subject string, roles []string) *SecurityContext {
	set := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return &SecurityContext{Subject: subject, roles: set}
}

// HasRole reports whether the caller holds the role.
func (sc *SecurityContext) HasRole(role string) bool {
	if sc == nil {
		return false
	}
	_, ok := sc.roles[role]
	return ok
}

// Roles returns the caller's role set.
func (sc *SecurityContext) Roles() []string {
	if sc == nil {
		return nil
	}
	out := make([]string, 0, len(sc.roles))
	for role := range sc.roles {
		out = append(out, role)
	}
	return out
}

// ContextFromRequest retrieves the security context, if populated.
func ContextFromRequest(c *fiber.Ctx) (*SecurityContext, bool) {
	val := c.Locals(securityContextKey)
	if val == nil {
		return nil, false
	}
	sc, ok := val.(*SecurityContext)
	return sc, ok
}

// Actor returns the caller's subject for audit purposes, or "SYSTEM" when
// the request is unauthenticated.
func Actor(c *fiber.Ctx) string {
	if sc, ok := ContextFromRequest(c); ok {
		return sc.Subject
	}
	return "SYSTEM"
}
