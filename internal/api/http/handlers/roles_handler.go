package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tyagiab3/user-service/internal/api/dto"
	"github.com/tyagiab3/user-service/internal/auth"
	"github.com/tyagiab3/user-service/internal/service"
	"github.com/tyagiab3/user-service/pkg/util"
)

// RolesHandler exposes admin-only role management endpoints.
type RolesHandler struct {
	roles *service.RoleService
}

// NewRolesHandler constructs handler.
func NewRolesHandler(roles *service.RoleService) *RolesHandler {
	return &RolesHandler{roles: roles}
}

// Create handles POST /api/roles?roleName=NAME.
func (h *RolesHandler) Create(c *fiber.Ctx) error {
	name := c.Query("roleName")

	role, err := h.roles.CreateRole(c.Context(), auth.Actor(c), name)
	if err != nil {
		return err
	}

	return c.JSON(util.Success("Role created successfully", dto.RoleResponse{
		ID:   role.ID,
		Name: role.Name,
	}))
}

// Assign handles POST /api/users/:id/roles.
func (h *RolesHandler) Assign(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil {
		return util.NewMissingField("invalid user id")
	}

	var req dto.AssignRolesRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewMissingField("invalid payload")
	}

	user, current, err := h.roles.AssignRoles(c.Context(), auth.Actor(c), int64(userID), req.Roles)
	if err != nil {
		return err
	}

	grants := make([]dto.UserRoleResponse, 0, len(current))
	for _, role := range current {
		grants = append(grants, dto.UserRoleResponse{
			UserID:       user.ID,
			Username:     user.Username,
			AssignedRole: role.Name,
		})
	}
	return c.JSON(util.Success("Roles assigned successfully", grants))
}

// Remove handles DELETE /api/users/:id/roles/:role.
func (h *RolesHandler) Remove(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil {
		return util.NewMissingField("invalid user id")
	}
	roleName := c.Params("role")

	if err := h.roles.RemoveRole(c.Context(), auth.Actor(c), int64(userID), roleName); err != nil {
		return err
	}
	return c.JSON(util.Success("Role removed successfully", nil))
}
