package domain

import (
	"errors"
	"strings"
)

// Role is the closed set of roles an authenticated caller may hold.
// The zero value means "no role" and only appears on anonymous principals.
type Role uint8

const (
	RoleVoter Role = iota + 1
	RoleAdmin
)

// ErrUnknownRole is returned by ParseRole for values outside the enumeration.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole maps a wire value to a Role. An empty value defaults to voter.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "voter", "user":
		return RoleVoter, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return 0, ErrUnknownRole
	}
}

func (r Role) String() string {
	switch r {
	case RoleVoter:
		return "voter"
	case RoleAdmin:
		return "admin"
	default:
		return "none"
	}
}

// Principal is the caller identity resolved upstream of the service.
// The zero Principal is anonymous.
type Principal struct {
	UserID string
	Role   Role
}

// IsAnonymous reports whether no user id was resolved.
func (p Principal) IsAnonymous() bool { return strings.TrimSpace(p.UserID) == "" }

// IsAdmin reports whether the principal may manage polls.
func (p Principal) IsAdmin() bool {
	if p.IsAnonymous() {
		return false
	}
	switch p.Role {
	case RoleAdmin:
		return true
	case RoleVoter:
		return false
	default:
		return false
	}
}
