package repository

import (
	"context"

	"github.com/google/uuid"

	bookModel "library-backend/internal/domains/book/model"
)

// RepositoryInterface defines the read-only queries behind
// personalized recommendations
type RepositoryInterface interface {
	// TopGenres returns the genres a member borrows most, strongest
	// affinity first
	TopGenres(ctx context.Context, userID uuid.UUID, limit int) ([]string, error)

	// AvailableByGenres returns available titles in the given genres
	// that the member has never borrowed
	AvailableByGenres(ctx context.Context, userID uuid.UUID, genres []string, limit int) ([]bookModel.Book, error)

	// MostBorrowed returns the library-wide most borrowed available
	// titles. Fallback for members without history.
	MostBorrowed(ctx context.Context, limit int) ([]bookModel.Book, error)
}
