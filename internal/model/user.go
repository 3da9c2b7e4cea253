package model

import (
	"fmt"
	"time"
)

// User is an account that can sign in to the API.
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
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

var roleLevels = map[string]int{
	RoleAdmin:   3,
	RoleManager: 2,
	RoleUser:    1,
}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
// Unknown roles on either side never match.
func RoleAtLeast(role, minimum string) bool {
	have, ok := roleLevels[role]
	if !ok {
		return false
	}
	need, ok := roleLevels[minimum]
	if !ok {
		return false
	}
	return have >= need
}

// ValidRole reports whether role is a known role.
func ValidRole(role string) bool {
	_, ok := roleLevels[role]
	return ok
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// ValidatePassword checks a new password against the length rule.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
