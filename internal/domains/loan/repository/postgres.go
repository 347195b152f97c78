package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/loan/model"
	userModel "library-backend/internal/domains/user/model"
)

const loanColumns = `id, book_id, user_id, borrow_date, due_date, return_date, renewal_count, created_at, updated_at`

// postgresRepository implements RepositoryInterface with raw SQL on pgxpool
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL loan repository
func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

// Create implements RepositoryInterface.Create
func (r *postgresRepository) Create(ctx context.Context, tx pgx.Tx, loan *model.Loan) error {
	query := `
		INSERT INTO loans (
			id, book_id, user_id, borrow_date, due_date, return_date,
			renewal_count, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := tx.Exec(ctx, query,
		loan.ID,
		loan.BookID,
		loan.UserID,
		loan.BorrowDate,
		loan.DueDate,
		loan.ReturnDate,
		loan.RenewalCount,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			switch pgErr.ConstraintName {
			case "loans_book_id_fkey":
				return bookModel.NewBookNotFoundError(loan.BookID)
			case "loans_user_id_fkey":
				return userModel.NewUserNotFoundError(loan.UserID)
			}
			return fmt.Errorf("foreign key violation inserting loan: %w", err)
		}
		return fmt.Errorf("failed to insert loan: %w", err)
	}

	return nil
}

// GetByID implements RepositoryInterface.GetByID
func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	query := fmt.Sprintf(`SELECT %s FROM loans WHERE id = $1`, loanColumns)

	loan, err := r.scanLoan(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewLoanNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get loan by id: %w", err)
	}

	return loan, nil
}

// MarkReturned implements RepositoryInterface.MarkReturned.
// The return_date IS NULL guard makes the terminal transition happen at
// most once, whatever races callers get into.
func (r *postgresRepository) MarkReturned(ctx context.Context, tx pgx.Tx, loanID uuid.UUID, returnedAt time.Time) (*model.Loan, error) {
	query := fmt.Sprintf(`
		UPDATE loans
		SET return_date = $2, updated_at = $2
		WHERE id = $1 AND return_date IS NULL
		RETURNING %s
	`, loanColumns)

	loan, err := r.scanLoan(tx.QueryRow(ctx, query, loanID, returnedAt))
	if err == nil {
		return loan, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to mark loan returned: %w", err)
	}

	// Zero rows: the loan is either closed or missing
	return nil, r.classifyClosedOrMissing(ctx, tx, loanID)
}

// Renew implements RepositoryInterface.Renew.
// A single conditional UPDATE keeps the open-check, cap-check and due
// date change atomic; no lock needed since the catalog is untouched.
func (r *postgresRepository) Renew(ctx context.Context, loanID uuid.UUID, dueDate time.Time, renewalLimit int) (*model.Loan, error) {
	query := fmt.Sprintf(`
		UPDATE loans
		SET due_date = $2, renewal_count = renewal_count + 1, updated_at = NOW()
		WHERE id = $1
		  AND return_date IS NULL
		  AND ($3 = 0 OR renewal_count < $3)
		RETURNING %s
	`, loanColumns)

	loan, err := r.scanLoan(r.pool.QueryRow(ctx, query, loanID, dueDate, renewalLimit))
	if err == nil {
		return loan, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to renew loan: %w", err)
	}

	// Zero rows: missing, closed, or capped - disambiguate for the caller
	existing, getErr := r.GetByID(ctx, loanID)
	if getErr != nil {
		return nil, getErr
	}
	if !existing.IsOpen() {
		return nil, model.ErrAlreadyReturned
	}
	return nil, fmt.Errorf("%w: limit=%d", model.ErrRenewalLimitReached, renewalLimit)
}

// ListOpenByUser implements RepositoryInterface.ListOpenByUser
func (r *postgresRepository) ListOpenByUser(ctx context.Context, userID uuid.UUID) ([]model.Loan, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM loans
		WHERE user_id = $1 AND return_date IS NULL
		ORDER BY borrow_date DESC
	`, loanColumns)

	return r.queryLoans(ctx, query, userID)
}

// ListByUser implements RepositoryInterface.ListByUser
func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Loan, error) {
	// Open loans first by borrow date, closed ones by return date
	query := fmt.Sprintf(`
		SELECT %s FROM loans
		WHERE user_id = $1
		ORDER BY (return_date IS NULL) DESC, return_date DESC, borrow_date DESC
	`, loanColumns)

	return r.queryLoans(ctx, query, userID)
}

// ListOpenByBook implements RepositoryInterface.ListOpenByBook
func (r *postgresRepository) ListOpenByBook(ctx context.Context, bookID uuid.UUID) ([]model.Loan, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM loans
		WHERE book_id = $1 AND return_date IS NULL
		ORDER BY borrow_date DESC
	`, loanColumns)

	return r.queryLoans(ctx, query, bookID)
}

// ListOverdue implements RepositoryInterface.ListOverdue
func (r *postgresRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]model.Loan, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM loans
		WHERE return_date IS NULL AND due_date < $1
		ORDER BY due_date ASC
	`, loanColumns)

	return r.queryLoans(ctx, query, asOf)
}

// HasOpenLoansForBook implements RepositoryInterface.HasOpenLoansForBook
func (r *postgresRepository) HasOpenLoansForBook(ctx context.Context, bookID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM loans WHERE book_id = $1 AND return_date IS NULL)`,
		bookID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check open loans for book: %w", err)
	}
	return exists, nil
}

// HasOpenLoansForUser implements RepositoryInterface.HasOpenLoansForUser
func (r *postgresRepository) HasOpenLoansForUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM loans WHERE user_id = $1 AND return_date IS NULL)`,
		userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check open loans for user: %w", err)
	}
	return exists, nil
}

// ============================================
// HELPER METHODS
// ============================================

func (r *postgresRepository) scanLoan(row pgx.Row) (*model.Loan, error) {
	var loan model.Loan
	err := row.Scan(
		&loan.ID,
		&loan.BookID,
		&loan.UserID,
		&loan.BorrowDate,
		&loan.DueDate,
		&loan.ReturnDate,
		&loan.RenewalCount,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *postgresRepository) queryLoans(ctx context.Context, query string, args ...interface{}) ([]model.Loan, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	loans := make([]model.Loan, 0)
	for rows.Next() {
		loan, err := r.scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan row: %w", err)
		}
		loans = append(loans, *loan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return loans, nil
}

// classifyClosedOrMissing turns a zero-row conditional update into the
// right sentinel error
func (r *postgresRepository) classifyClosedOrMissing(ctx context.Context, tx pgx.Tx, loanID uuid.UUID) error {
	var returnDate *time.Time
	err := tx.QueryRow(ctx, `SELECT return_date FROM loans WHERE id = $1`, loanID).Scan(&returnDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.NewLoanNotFoundError(loanID)
		}
		return fmt.Errorf("failed to inspect loan state: %w", err)
	}
	if returnDate != nil {
		return model.ErrAlreadyReturned
	}
	// Open but the conditional update matched nothing - should not happen
	return fmt.Errorf("loan %s in unexpected state during terminal transition", loanID)
}
