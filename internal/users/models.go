package users

import "strings"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func IsValidRole(role string) bool {
	switch Role(strings.ToUpper(role)) {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// Actor is the identified caller of a booking operation. Identity itself is
// established upstream by the JWT middleware.
type Actor struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// IsAdmin reports whether the actor may use administrative operations
func (a Actor) IsAdmin() bool {
	return Role(strings.ToUpper(string(a.Role))) == RoleAdmin
}

// Owns reports whether the actor is the given user
func (a Actor) Owns(userID string) bool {
	return a.UserID != "" && a.UserID == userID
}
