package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/user/model"
)

// RepositoryInterface defines data access for member accounts
type RepositoryInterface interface {
	// Create inserts a new user.
	// Returns model.ErrEmailAlreadyExists on a duplicate email.
	Create(ctx context.Context, user *model.User) error

	// GetByID retrieves a user by ID.
	// Returns model.ErrUserNotFound if no row matches.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetByEmail retrieves a user by email.
	// Returns model.ErrUserNotFound if no row matches.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// ExistsByEmail checks whether an account with the email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// List retrieves users with filtering and pagination.
	// Returns users and the total count before pagination.
	List(ctx context.Context, req model.ListUsersRequest) ([]model.User, int, error)

	// Update persists mutable profile fields (email, full name, role,
	// active flag). Returns model.ErrUserNotFound if no row matches.
	Update(ctx context.Context, user *model.User) error

	// Delete removes a user permanently.
	// The open-loan guard lives in the service layer.
	Delete(ctx context.Context, id uuid.UUID) error
}
