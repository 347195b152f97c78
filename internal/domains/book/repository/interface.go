package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"library-backend/internal/domains/book/model"
)

// RepositoryInterface defines catalog data access.
//
// DecrementAvailable and IncrementAvailable take a pgx.Tx because they
// only ever run inside the loan lifecycle transaction - a loan row and
// its copy-count change must commit or roll back together.
type RepositoryInterface interface {
	Create(ctx context.Context, book *model.Book) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	List(ctx context.Context, req model.ListBooksRequest) ([]model.Book, int, error)

	// Update persists descriptive fields only. Copy counts never travel
	// through it: they belong to ResizeCopies and the two movements
	// below, so a stale in-memory snapshot can never overwrite them.
	Update(ctx context.Context, book *model.Book) error

	// ResizeCopies sets total_copies and recomputes available_copies
	// from the open-loan count in a single statement, so a borrow
	// committing concurrently is counted, not overwritten.
	// Returns ErrInvalidTotalCopies when the new total is below the
	// open-loan count, ErrBookNotFound when the book does not exist.
	ResizeCopies(ctx context.Context, id uuid.UUID, totalCopies int) (*model.Book, error)

	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// DecrementAvailable atomically claims one copy.
	// Returns ErrOutOfStock when no copies are available,
	// ErrBookNotFound when the book does not exist.
	DecrementAvailable(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) error

	// IncrementAvailable atomically frees one copy.
	// Returns ErrCapacityExceeded when the book is already at total
	// capacity, ErrBookNotFound when the book does not exist.
	IncrementAvailable(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) error

	// InvalidateCache drops the cached entry for a book. The movements
	// above run inside a still-open transaction and must not touch the
	// cache themselves - a read between the delete and the commit would
	// re-cache the pre-commit copy count. Callers invalidate after their
	// transaction commits.
	InvalidateCache(ctx context.Context, bookID uuid.UUID)
}
