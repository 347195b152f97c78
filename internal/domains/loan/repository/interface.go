package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"library-backend/internal/domains/loan/model"
)

// RepositoryInterface defines loan ledger data access.
//
// Create and MarkReturned take a pgx.Tx: they always run inside the
// lifecycle transaction together with the matching copy-count change.
type RepositoryInterface interface {
	Create(ctx context.Context, tx pgx.Tx, loan *model.Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Loan, error)

	// MarkReturned closes an open loan, setting return_date exactly once.
	// Returns ErrAlreadyReturned when the loan is already closed,
	// ErrLoanNotFound when it does not exist.
	MarkReturned(ctx context.Context, tx pgx.Tx, loanID uuid.UUID, returnedAt time.Time) (*model.Loan, error)

	// Renew pushes the due date forward on an open loan and bumps the
	// renewal counter. renewalLimit = 0 means unlimited. Returns
	// ErrRenewalLimitReached, ErrAlreadyReturned or ErrLoanNotFound.
	Renew(ctx context.Context, loanID uuid.UUID, dueDate time.Time, renewalLimit int) (*model.Loan, error)

	// ListOpenByUser returns open loans, most recently borrowed first
	ListOpenByUser(ctx context.Context, userID uuid.UUID) ([]model.Loan, error)

	// ListByUser returns the full borrowing history: open loans first
	// (most recently borrowed first), then closed ones by return date
	// descending
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Loan, error)

	// ListOpenByBook returns open loans on a title, librarian view
	ListOpenByBook(ctx context.Context, bookID uuid.UUID) ([]model.Loan, error)

	// ListOverdue returns open loans whose due date has passed
	ListOverdue(ctx context.Context, asOf time.Time) ([]model.Loan, error)

	HasOpenLoansForBook(ctx context.Context, bookID uuid.UUID) (bool, error)
	HasOpenLoansForUser(ctx context.Context, userID uuid.UUID) (bool, error)
}
