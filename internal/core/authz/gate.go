// Package authz decides whether a bearer credential may reach a route.
package authz

import (
	"strconv"
	"strings"

	"medtrack-api/internal/core/domain"
	"medtrack-api/internal/pkg/jwt"
)

const bearerPrefix = "Bearer "

// Gate verifies access tokens against a process-wide key.
// It holds no other state, so equal inputs always yield equal decisions.
type Gate struct {
	secret string
}

// NewGate creates a gate that verifies tokens signed with secret
func NewGate(secret string) *Gate {
	return &Gate{secret: secret}
}

// Authorize checks the raw Authorization header and, when subjectID is not empty,
// that the caller may act on that subject. On success the decoded claims are returned.
func (g *Gate) Authorize(header, subjectID string) (*jwt.Claims, error) {
	token, ok := bearerToken(header)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	claims, err := jwt.ValidateAccessToken(token, g.secret)
	if err != nil {
		return nil, domain.ErrInvalidCredential
	}

	switch domain.ParseRole(claims.Role) {
	case domain.RoleAdmin:
		return claims, nil
	case domain.RoleUser:
		if subjectID == "" || sameSubject(subjectID, claims.UserID) {
			return claims, nil
		}
		return nil, domain.ErrAccessDenied
	default:
		return nil, domain.ErrRoleNotPermitted
	}
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// sameSubject compares the route subject and the token subject as unsigned integers.
func sameSubject(raw string, userID uint) bool {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return false
	}
	return uint(id) == userID
}
