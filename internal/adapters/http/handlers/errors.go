package handlers

import (
	"errors"

	"medtrack-api/internal/core/domain"
	"medtrack-api/internal/core/services"
	"medtrack-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// writeError maps a service error onto an HTTP status and the error envelope
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrInvalidLogin),
		errors.Is(err, domain.ErrTokenRevoked):
		return response.Unauthorized(c, err.Error())
	case errors.Is(err, domain.ErrInvalidCredential),
		errors.Is(err, domain.ErrAccessDenied),
		errors.Is(err, domain.ErrRoleNotPermitted),
		errors.Is(err, domain.ErrUserInactive):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, domain.ErrDuplicateEntry),
		errors.Is(err, domain.ErrUserAlreadyExists),
		errors.Is(err, services.ErrEmailAlreadyExists):
		return response.Conflict(c, err.Error())
	default:
		return response.InternalServerError(c, domain.ErrStoreFailure.Error())
	}
}

func invalidBody(c *fiber.Ctx) error {
	return response.BadRequest(c, "Invalid request body")
}
