package domain

import "time"

// Role enumerates dealership employee roles.
type Role string

const (
	RoleSales   Role = "sales"
	RoleManager Role = "manager"
)

// ValidRole reports whether the value is a known role.
func ValidRole(r Role) bool {
	return r == RoleSales || r == RoleManager
}

// User is the domain model for a dealership employee.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
