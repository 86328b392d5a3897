package handlers

import (
	"medtrack-api/internal/adapters/http/middleware"
	"medtrack-api/internal/core/domain"
	"medtrack-api/internal/core/services"
	"medtrack-api/internal/pkg/pagination"
	"medtrack-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user and profile endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers lists all users
// @Summary List users
// @Description List users page by page (admin only)
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	result, err := h.userService.ListUsers(c.UserContext(), pagination.GetParams(c))
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Users retrieved successfully", result)
}

// GetUser gets one user
// @Summary Get user
// @Description Get a user by ID; users may only read themselves
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{userId} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.userService.GetUser(c.UserContext(), c.Params("userId"))
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "User retrieved successfully", user)
}

// GetProfile gets own profile
// @Summary Get profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return response.Unauthorized(c, domain.ErrUnauthenticated.Error())
	}

	user, err := h.userService.GetProfile(c.UserContext(), claims.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Profile retrieved successfully", user)
}

// UpdateProfile updates own profile
// @Summary Update profile
// @Description Update email and the medication reminder preference
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateProfileInput true "Profile fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /profile [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return response.Unauthorized(c, domain.ErrUnauthenticated.Error())
	}

	var req services.UpdateProfileInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	user, err := h.userService.UpdateProfile(c.UserContext(), claims.UserID, &req)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Profile updated successfully", user)
}
