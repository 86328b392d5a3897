package domain

import "strings"

// Role is the closed set of roles a credential can carry.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleUser
)

// Stored and signed role values.
const (
	RoleAdminValue = "ADMIN"
	RoleUserValue  = "USER"
)

// ParseRole maps a stored role value onto Role. Unrecognized values yield RoleUnknown.
func ParseRole(s string) Role {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case RoleAdminValue, "A":
		return RoleAdmin
	case RoleUserValue, "U":
		return RoleUser
	default:
		return RoleUnknown
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return RoleAdminValue
	case RoleUser:
		return RoleUserValue
	default:
		return "UNKNOWN"
	}
}
