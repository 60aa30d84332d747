package domain

import "fmt"

// Role is the closed set of account roles. Registration always produces a
// STUDENT; ADMIN accounts are created by bootstrap or by another admin.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole maps a string onto the closed role set. Anything else is an
// error; unknown roles must never be accepted from tokens or request bodies.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("domain: unknown role %q", s)
	}
}

func (r Role) String() string { return string(r) }
