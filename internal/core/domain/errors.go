package domain

import "errors"

// Authorization errors
var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrInvalidCredential = errors.New("invalid or expired token")
	ErrAccessDenied      = errors.New("access denied")
	ErrRoleNotPermitted  = errors.New("role not permitted")
)

// Common domain errors
var (
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("resource not found")
	ErrStoreFailure   = errors.New("internal server error")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Auth errors
var (
	ErrInvalidLogin      = errors.New("invalid username or password")
	ErrUserInactive      = errors.New("user account is inactive")
	ErrUserAlreadyExists = errors.New("username or email already exists")
	ErrTokenRevoked      = errors.New("token revoked")
)
