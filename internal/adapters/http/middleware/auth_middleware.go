package middleware

import (
	"errors"

	"medtrack-api/internal/core/authz"
	"medtrack-api/internal/core/domain"
	"medtrack-api/internal/pkg/jwt"
	"medtrack-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by Authorize
const (
	LocalClaims = "claims"
	LocalUserID = "userID"
	LocalRole   = "role"
)

// Authorize runs the gate on every request. When subjectParam is not empty the
// route parameter of that name is the subject a USER token must match.
func Authorize(gate *authz.Gate, subjectParam string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subject := ""
		if subjectParam != "" {
			subject = c.Params(subjectParam)
		}

		claims, err := gate.Authorize(c.Get(fiber.HeaderAuthorization), subject)
		if err != nil {
			return denied(c, err)
		}

		c.Locals(LocalClaims, claims)
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalRole, domain.ParseRole(claims.Role))
		c.SetUserContext(authz.WithClaims(c.UserContext(), claims))

		return c.Next()
	}
}

// RequireRole allows only the given roles; it must run after Authorize
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(domain.Role)
		if !ok {
			return response.Unauthorized(c, domain.ErrUnauthenticated.Error())
		}

		for _, r := range allowed {
			if role == r {
				return c.Next()
			}
		}

		return response.Forbidden(c, domain.ErrRoleNotPermitted.Error())
	}
}

// AdminOnly middleware allows only ADMIN role
func AdminOnly() fiber.Handler {
	return RequireRole(domain.RoleAdmin)
}

// CurrentClaims returns the claims attached by Authorize
func CurrentClaims(c *fiber.Ctx) (*jwt.Claims, bool) {
	claims, ok := c.Locals(LocalClaims).(*jwt.Claims)
	return claims, ok
}

func denied(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrUnauthenticated) {
		return response.Unauthorized(c, err.Error())
	}
	return response.Forbidden(c, err.Error())
}
