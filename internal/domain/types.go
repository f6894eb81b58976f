package domain

import "strings"

// Role is the capability level persisted on a user record.
type Role string

const (
	RoleUser    Role = "USER"
	RoleHost    Role = "HOST"
	RoleSupport Role = "SUPPORT"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole normalizes a stored or claimed role string.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleUser, RoleHost, RoleSupport, RoleAdmin:
		return r, true
	default:
		return "", false
	}
}

// Satisfies reports whether a holder of r may act with the required capability.
// ADMIN satisfies everything, HOST covers HOST and USER, SUPPORT and USER only themselves.
func (r Role) Satisfies(required Role) bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleHost:
		return required == RoleHost || required == RoleUser
	case RoleSupport:
		return required == RoleSupport
	case RoleUser:
		return required == RoleUser
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// Session carries the authenticated user. Role is only trustworthy after the guard re-validated it.
type Session struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

func (s *Session) Empty() bool {
	return s == nil || strings.TrimSpace(s.UserID) == ""
}
