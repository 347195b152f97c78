package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ===================================
// DOMAIN ERRORS
// ===================================

var (
	// ErrUserNotFound is returned when the referenced user does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when registering with a taken email
	ErrEmailAlreadyExists = errors.New("an account with this email already exists")

	// ErrInvalidCredentials is returned on login with a wrong email or
	// password. The message never reveals which of the two was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserInactive is returned when a deactivated account tries to log in
	ErrUserInactive = errors.New("account is deactivated")

	// ErrInvalidRole is returned when assigning a role outside the known set
	ErrInvalidRole = errors.New("invalid role")
)

// ===================================
// ERROR HELPERS
// ===================================

// NewUserNotFoundError creates a detailed not found error
func NewUserNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrUserNotFound, id)
}

// IsNotFoundError checks if error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}
