package model

import (
	"fmt"
	"time"
)

// User represents an authentication user. The role decides which approval
// steps the user may perform.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles.
const (
	RoleAdmin       = "admin"
	RoleUser        = "user"
	RoleDeptHead    = "dept_head"
	RolePM          = "pm"
	RolePurchasing  = "purchasing"
	RoleStoreKeeper = "store_keeper"
)

// Roles lists every known role in display order.
var Roles = []string{RoleAdmin, RoleUser, RoleDeptHead, RolePM, RolePurchasing, RoleStoreKeeper}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// MinPasswordLength is the shortest password accepted for an account.
const MinPasswordLength = 8

// ValidatePassword checks password strength rules.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// Actor is the identity performing an operation.
type Actor struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// String renders the actor the way it is recorded in request history.
func (a Actor) String() string {
	if a.Username == "" {
		return a.Role
	}
	return fmt.Sprintf("%s (%s)", a.Username, a.Role)
}
