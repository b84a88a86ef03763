// Package domain contains the core entities shared by the API modules.
package domain

import (
	"errors"
	"time"
)

// ErrUnauthenticated is returned when a request cannot be tied to an active user.
// The cause (bad token, unknown subject, inactive account) is deliberately not carried.
var ErrUnauthenticated = errors.New("could not validate credentials")

// Role is the permission level assigned to a user.
type Role string

// Roles. The set is closed; it mirrors the user_role enum in the database.
const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
	RoleDesigner Role = "designer"
	RoleTailor   Role = "tailor"
)

// Roles returns every known role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleCustomer, RoleDesigner, RoleTailor}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCustomer, RoleDesigner, RoleTailor:
		return true
	}
	return false
}

// User is an account as stored by the identity module.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	IsActive       bool      `json:"is_active"`
	IsSuperuser    bool      `json:"is_superuser"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Allows reports whether u satisfies the required role.
//
// Superusers satisfy every check. The admin check is satisfied only by
// superusers: a user whose role is admin but who lacks the flag is not an
// administrator.
func Allows(required Role, u *User) bool {
	if u == nil {
		return false
	}
	if u.IsSuperuser {
		return true
	}
	if required == RoleAdmin {
		return false
	}
	return u.Role == required
}
