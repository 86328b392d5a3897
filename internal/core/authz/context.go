package authz

import (
	"context"

	"medtrack-api/internal/pkg/jwt"
)

type claimsKey struct{}

// WithClaims returns a copy of ctx carrying the caller's claims
func WithClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFrom returns the claims attached by WithClaims, if any
func ClaimsFrom(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*jwt.Claims)
	return claims, ok && claims != nil
}
