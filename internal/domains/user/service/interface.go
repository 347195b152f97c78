package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/user/model"
)

// ServiceInterface defines account and authentication operations
type ServiceInterface interface {
	// Register creates a new member account with the student role.
	// Returns model.ErrEmailAlreadyExists on a duplicate email.
	Register(ctx context.Context, req model.RegisterRequest) (*model.UserResponse, error)

	// Login verifies credentials and issues a JWT token pair.
	// Returns model.ErrInvalidCredentials on a wrong email or password
	// and model.ErrUserInactive for deactivated accounts.
	Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error)

	// RefreshToken exchanges a valid refresh token for a new token pair
	RefreshToken(ctx context.Context, req model.RefreshTokenRequest) (*model.AuthResponse, error)

	// GetProfile retrieves the account behind an authenticated request
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.UserResponse, error)

	// UpdateProfile updates the caller's own name and email
	UpdateProfile(ctx context.Context, userID uuid.UUID, req model.UpdateProfileRequest) (*model.UserResponse, error)

	// ListUsers retrieves accounts with filtering and pagination.
	// Librarian only.
	ListUsers(ctx context.Context, req model.ListUsersRequest) (*model.ListUsersResponse, error)

	// UpdateUserRole changes an account's role. Librarian only.
	UpdateUserRole(ctx context.Context, userID uuid.UUID, req model.UpdateRoleRequest) (*model.UserResponse, error)

	// DeleteUser removes an account. Librarian only.
	// Fails with the loan domain's ErrHasActiveLoans while the member
	// still has open loans.
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}
