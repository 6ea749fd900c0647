package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tyagiab3/user-service/internal/auth"
	"github.com/tyagiab3/user-service/internal/service"
	"github.com/tyagiab3/user-service/pkg/util"
)

// AdminHandler exposes admin-only analytics endpoints.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.admin.SystemStats(c.Context(), auth.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(util.Success("System statistics retrieved", stats))
}
