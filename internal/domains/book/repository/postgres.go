package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/book/model"
	"library-backend/pkg/cache"
	"library-backend/pkg/logger"
)

const (
	bookCacheKeyPrefix = "book:"
	bookCacheTTL       = 5 * time.Minute
)

// postgresRepository implements RepositoryInterface with raw SQL on pgxpool
type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

// NewPostgresRepository creates a new PostgreSQL catalog repository
func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) RepositoryInterface {
	return &postgresRepository{
		pool:  pool,
		cache: cache,
	}
}

// Create implements RepositoryInterface.Create
func (r *postgresRepository) Create(ctx context.Context, book *model.Book) error {
	query := `
		INSERT INTO books (
			id, title, author, isbn, genre, publication_year, publisher,
			cover_url, description, total_copies, available_copies,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	_, err := r.pool.Exec(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.ISBN,
		book.Genre,
		book.PublicationYear,
		book.Publisher,
		book.CoverURL,
		book.Description,
		book.TotalCopies,
		book.AvailableCopies,
		book.CreatedAt,
		book.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation on isbn
				return model.ErrISBNAlreadyExists
			}
		}
		return fmt.Errorf("failed to insert book: %w", err)
	}

	return nil
}

// GetByID implements RepositoryInterface.GetByID with read-through caching
func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	cacheKey := bookCacheKeyPrefix + id.String()

	var cached model.Book
	if found, err := r.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	query := `
		SELECT
			id, title, author, isbn, genre, publication_year, publisher,
			cover_url, description, total_copies, available_copies,
			created_at, updated_at
		FROM books
		WHERE id = $1
	`

	var book model.Book
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.ISBN,
		&book.Genre,
		&book.PublicationYear,
		&book.Publisher,
		&book.CoverURL,
		&book.Description,
		&book.TotalCopies,
		&book.AvailableCopies,
		&book.CreatedAt,
		&book.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewBookNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get book by id: %w", err)
	}

	// Cache failure is non-critical
	if err := r.cache.Set(ctx, cacheKey, book, bookCacheTTL); err != nil {
		logger.Warn("Failed to cache book", map[string]interface{}{
			"book_id": id,
			"error":   err.Error(),
		})
	}

	return &book, nil
}

// List implements RepositoryInterface.List with dynamic filters,
// sorting and pagination
func (r *postgresRepository) List(ctx context.Context, req model.ListBooksRequest) ([]model.Book, int, error) {
	whereClause, args := r.buildWhereClause(req)

	// Get total count first
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM books WHERE %s`, whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	// Sort column is validated against the whitelist, never interpolated
	// from raw user input
	sortBy := req.SortBy
	if !model.IsValidSortField(sortBy) {
		sortBy = "title"
	}
	sortDir := "ASC"
	if strings.EqualFold(req.SortDir, "desc") {
		sortDir = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT
			id, title, author, isbn, genre, publication_year, publisher,
			cover_url, description, total_copies, available_copies,
			created_at, updated_at
		FROM books
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, whereClause, sortBy, sortDir, len(args)+1, len(args)+2)

	args = append(args, req.Limit, req.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0, req.Limit)
	for rows.Next() {
		var book model.Book
		err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Author,
			&book.ISBN,
			&book.Genre,
			&book.PublicationYear,
			&book.Publisher,
			&book.CoverURL,
			&book.Description,
			&book.TotalCopies,
			&book.AvailableCopies,
			&book.CreatedAt,
			&book.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan book row: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return books, total, nil
}

// buildWhereClause constructs the WHERE clause dynamically.
// Returns: (whereClause string, args []interface{})
func (r *postgresRepository) buildWhereClause(req model.ListBooksRequest) (string, []interface{}) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	// Substring search across title, author and isbn
	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE $%d OR author ILIKE $%d OR isbn ILIKE $%d)",
			argIndex, argIndex, argIndex,
		))
		args = append(args, "%"+req.Search+"%")
		argIndex++
	}

	if req.Genre != "" {
		conditions = append(conditions, fmt.Sprintf("genre = $%d", argIndex))
		args = append(args, req.Genre)
		argIndex++
	}

	if req.AvailableOnly {
		conditions = append(conditions, "available_copies > 0")
	}

	return strings.Join(conditions, " AND "), args
}

// Update implements RepositoryInterface.Update.
// Copy counts are deliberately absent from the SET list: the in-memory
// snapshot may predate a committed borrow, and writing counts from it
// would resurrect a claimed copy. Counts change only through
// ResizeCopies and the two movements.
func (r *postgresRepository) Update(ctx context.Context, book *model.Book) error {
	query := `
		UPDATE books SET
			title = $2, author = $3, isbn = $4, genre = $5,
			publication_year = $6, publisher = $7, cover_url = $8,
			description = $9, updated_at = $10
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.ISBN,
		book.Genre,
		book.PublicationYear,
		book.Publisher,
		book.CoverURL,
		book.Description,
		book.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrISBNAlreadyExists
		}
		return fmt.Errorf("failed to update book: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.NewBookNotFoundError(book.ID)
	}

	r.InvalidateCache(ctx, book.ID)
	return nil
}

// ResizeCopies implements RepositoryInterface.ResizeCopies.
// One statement does the whole resize: the row lock on books serializes
// it against the borrow/return movements, and the subselect counts open
// loans after that lock is held, so the recompute can never work from a
// stale snapshot.
func (r *postgresRepository) ResizeCopies(ctx context.Context, id uuid.UUID, totalCopies int) (*model.Book, error) {
	query := `
		UPDATE books b
		SET total_copies = $2,
			available_copies = $2 - (
				SELECT COUNT(*) FROM loans l
				WHERE l.book_id = b.id AND l.return_date IS NULL
			),
			updated_at = NOW()
		WHERE b.id = $1
		  AND $2 >= (
				SELECT COUNT(*) FROM loans l
				WHERE l.book_id = b.id AND l.return_date IS NULL
		  )
		RETURNING
			id, title, author, isbn, genre, publication_year, publisher,
			cover_url, description, total_copies, available_copies,
			created_at, updated_at
	`

	var book model.Book
	err := r.pool.QueryRow(ctx, query, id, totalCopies).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.ISBN,
		&book.Genre,
		&book.PublicationYear,
		&book.Publisher,
		&book.CoverURL,
		&book.Description,
		&book.TotalCopies,
		&book.AvailableCopies,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err == nil {
		r.InvalidateCache(ctx, id)
		return &book, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to resize book copies: %w", err)
	}

	// Zero rows: the book is missing or the new total is below the
	// open-loan count
	var openLoans int
	countErr := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM loans WHERE book_id = $1 AND return_date IS NULL`,
		id,
	).Scan(&openLoans)
	if countErr != nil {
		return nil, fmt.Errorf("failed to count open loans for book: %w", countErr)
	}

	exists, existsErr := r.Exists(ctx, id)
	if existsErr != nil {
		return nil, existsErr
	}
	if !exists {
		return nil, model.NewBookNotFoundError(id)
	}
	return nil, model.NewInvalidTotalCopiesError(totalCopies, openLoans)
}

// Delete implements RepositoryInterface.Delete.
// The open-loan guard lives in the service layer; by the time this runs
// the deletion has already been cleared.
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.NewBookNotFoundError(id)
	}

	r.InvalidateCache(ctx, id)
	return nil
}

// Exists implements RepositoryInterface.Exists
func (r *postgresRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM books WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check book existence: %w", err)
	}
	return exists, nil
}

// DecrementAvailable implements RepositoryInterface.DecrementAvailable.
// The compare-and-swap in the WHERE clause serializes concurrent borrows:
// two borrowers racing for the last copy cannot both match
// available_copies > 0.
func (r *postgresRepository) DecrementAvailable(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) error {
	query := `
		UPDATE books
		SET available_copies = available_copies - 1, updated_at = NOW()
		WHERE id = $1 AND available_copies > 0
	`

	tag, err := tx.Exec(ctx, query, bookID)
	if err != nil {
		return fmt.Errorf("failed to decrement available copies: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Distinguish a missing book from an exhausted one
		exists, err := r.existsInTx(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if !exists {
			return model.NewBookNotFoundError(bookID)
		}
		return model.NewOutOfStockError(bookID)
	}

	// No cache invalidation here: the transaction is still open, and a
	// concurrent read would re-cache the pre-commit count. The caller
	// invalidates after commit via InvalidateCache.
	return nil
}

// IncrementAvailable implements RepositoryInterface.IncrementAvailable.
// The available_copies < total_copies guard makes a double increment
// impossible at the storage layer, whatever the caller does.
func (r *postgresRepository) IncrementAvailable(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) error {
	query := `
		UPDATE books
		SET available_copies = available_copies + 1, updated_at = NOW()
		WHERE id = $1 AND available_copies < total_copies
	`

	tag, err := tx.Exec(ctx, query, bookID)
	if err != nil {
		return fmt.Errorf("failed to increment available copies: %w", err)
	}

	if tag.RowsAffected() == 0 {
		exists, err := r.existsInTx(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if !exists {
			return model.NewBookNotFoundError(bookID)
		}
		return fmt.Errorf("%w: book_id=%s", model.ErrCapacityExceeded, bookID)
	}

	// Invalidation deferred to the caller, after commit
	return nil
}

func (r *postgresRepository) existsInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM books WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check book existence: %w", err)
	}
	return exists, nil
}

// InvalidateCache implements RepositoryInterface.InvalidateCache
func (r *postgresRepository) InvalidateCache(ctx context.Context, id uuid.UUID) {
	if err := r.cache.Delete(ctx, bookCacheKeyPrefix+id.String()); err != nil {
		logger.Warn("Failed to invalidate book cache", map[string]interface{}{
			"book_id": id,
			"error":   err.Error(),
		})
	}
}
