package model

import (
	"time"

	"github.com/google/uuid"
)

// Account roles. Students borrow; librarians additionally manage the
// catalog and see every member's loans.
const (
	RoleStudent   = "student"
	RoleLibrarian = "librarian"
)

// User represents a library member account
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     string    `json:"full_name" db:"full_name"`
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsLibrarian reports whether the account has staff privileges
func (u *User) IsLibrarian() bool {
	return u.Role == RoleLibrarian
}
