package user

import "time"

type Role string

const (
	RoleHR        Role = "HR"        // Human-resources function
	RoleLeaders   Role = "Leaders"   // Leadership function
	RoleEmployees Role = "Employees" // Regular employee
)

// ParseRole returns the Role for a stored or claimed role string.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleHR, RoleLeaders, RoleEmployees:
		return Role(s), true
	}
	return "", false
}

type User struct {
	Username     string
	Name         string
	Email        string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the caller resolved at the request boundary. It is passed
// explicitly into every service operation; nothing reads it from ambient
// session state.
type Identity struct {
	Username string
	Role     Role
}
