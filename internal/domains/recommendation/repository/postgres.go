package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	bookModel "library-backend/internal/domains/book/model"
)

const recommendedBookColumns = `
	b.id, b.title, b.author, b.isbn, b.genre, b.publication_year,
	b.publisher, b.cover_url, b.description, b.total_copies,
	b.available_copies, b.created_at, b.updated_at`

// postgresRepository implements RepositoryInterface with raw SQL on pgxpool
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL recommendation repository
func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

// TopGenres implements RepositoryInterface.TopGenres
func (r *postgresRepository) TopGenres(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	query := `
		SELECT b.genre
		FROM loans l
		JOIN books b ON b.id = l.book_id
		WHERE l.user_id = $1
		GROUP BY b.genre
		ORDER BY COUNT(*) DESC, b.genre ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top genres: %w", err)
	}
	defer rows.Close()

	genres := make([]string, 0, limit)
	for rows.Next() {
		var genre string
		if err := rows.Scan(&genre); err != nil {
			return nil, fmt.Errorf("failed to scan genre row: %w", err)
		}
		genres = append(genres, genre)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return genres, nil
}

// AvailableByGenres implements RepositoryInterface.AvailableByGenres
func (r *postgresRepository) AvailableByGenres(ctx context.Context, userID uuid.UUID, genres []string, limit int) ([]bookModel.Book, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM books b
		WHERE b.genre = ANY($2)
		  AND b.available_copies > 0
		  AND NOT EXISTS (
			SELECT 1 FROM loans l
			WHERE l.book_id = b.id AND l.user_id = $1
		  )
		ORDER BY b.created_at DESC
		LIMIT $3
	`, recommendedBookColumns)

	rows, err := r.pool.Query(ctx, query, userID, genres, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations by genre: %w", err)
	}
	defer rows.Close()

	return r.collectBooks(rows, limit)
}

// MostBorrowed implements RepositoryInterface.MostBorrowed
func (r *postgresRepository) MostBorrowed(ctx context.Context, limit int) ([]bookModel.Book, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM books b
		LEFT JOIN loans l ON l.book_id = b.id
		WHERE b.available_copies > 0
		GROUP BY b.id
		ORDER BY COUNT(l.id) DESC, b.created_at DESC
		LIMIT $1
	`, recommendedBookColumns)

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query most borrowed books: %w", err)
	}
	defer rows.Close()

	return r.collectBooks(rows, limit)
}

func (r *postgresRepository) collectBooks(rows pgx.Rows, limit int) ([]bookModel.Book, error) {
	books := make([]bookModel.Book, 0, limit)
	for rows.Next() {
		var book bookModel.Book
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
			return nil, fmt.Errorf("failed to scan book row: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return books, nil
}
