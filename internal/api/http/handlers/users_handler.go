package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/tyagiab3/user-service/internal/api/dto"
	"github.com/tyagiab3/user-service/internal/auth"
	"github.com/tyagiab3/user-service/internal/service"
	"github.com/tyagiab3/user-service/pkg/util"
)

// UsersHandler exposes registration, login, and profile endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// Register handles POST /api/users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewMissingField("invalid payload")
	}

	user, err := h.users.Register(c.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}

	profile := dto.UserProfileResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Roles:    []string{},
	}
	return c.Status(http.StatusCreated).JSON(util.Success("User registered successfully", profile))
}

// Login handles POST /api/users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewMissingField("invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return util.NewMissingField("Email and password are required.")
	}

	token, expiresAt, err := h.users.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(util.Success("Login successful", dto.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	}))
}

// Me handles GET /api/users/me for the authenticated caller.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	sc, ok := auth.ContextFromRequest(c)
	if !ok {
		return util.NewUnauthenticated("Authentication required")
	}

	user, roles, err := h.users.Profile(c.Context(), sc.Subject)
	if err != nil {
		return err
	}
	if roles == nil {
		roles = []string{}
	}

	profile := dto.UserProfileResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Roles:    roles,
	}
	return c.JSON(util.Success("User profile retrieved successfully", profile))
}
