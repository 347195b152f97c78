package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/repository"
	"library-backend/pkg/logger"
)

// LoanGuard blocks catalog deletion while a title has open loans
type LoanGuard interface {
	GuardBookDeletion(ctx context.Context, bookID uuid.UUID) error
}

// BookService implements ServiceInterface
type BookService struct {
	repo      repository.RepositoryInterface
	loanGuard LoanGuard
}

// NewService creates a new catalog service
func NewService(repo repository.RepositoryInterface, loanGuard LoanGuard) *BookService {
	return &BookService{
		repo:      repo,
		loanGuard: loanGuard,
	}
}

// CreateBook implements ServiceInterface.CreateBook.
// A new title starts with every copy on the shelf.
func (s *BookService) CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.BookResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	book := &model.Book{
		ID:              uuid.New(),
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Genre:           req.Genre,
		PublicationYear: req.PublicationYear,
		Publisher:       req.Publisher,
		CoverURL:        req.CoverURL,
		Description:     req.Description,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.TotalCopies,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}

	logger.Info("Book created", map[string]interface{}{
		"book_id": book.ID,
		"title":   book.Title,
		"copies":  book.TotalCopies,
	})

	resp := book.ToResponse()
	return &resp, nil
}

// GetBookByID implements ServiceInterface.GetBookByID
func (s *BookService) GetBookByID(ctx context.Context, id uuid.UUID) (*model.BookResponse, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := book.ToResponse()
	return &resp, nil
}

// ListBooks implements ServiceInterface.ListBooks
func (s *BookService) ListBooks(ctx context.Context, req model.ListBooksRequest) (*model.ListBooksResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}
	if req.SortBy == "" {
		req.SortBy = "title"
	}
	if req.SortDir == "" {
		req.SortDir = "asc"
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	books, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	return &model.ListBooksResponse{
		Books: model.ToResponseList(books),
		Page:  req.Page,
		Limit: req.Limit,
		Total: total,
	}, nil
}

// UpdateBook implements ServiceInterface.UpdateBook.
//
// Copy counts never pass through this method's in-memory snapshot: a
// borrow can commit between the read and the write, so availability is
// recomputed inside ResizeCopies' single SQL statement instead.
// Descriptive edits leave the counts completely untouched.
func (s *BookService) UpdateBook(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.BookResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.ISBN != nil {
		book.ISBN = *req.ISBN
	}
	if req.Genre != nil {
		book.Genre = *req.Genre
	}
	if req.PublicationYear != nil {
		book.PublicationYear = *req.PublicationYear
	}
	if req.Publisher != nil {
		book.Publisher = *req.Publisher
	}
	if req.CoverURL != nil {
		book.CoverURL = req.CoverURL
	}
	if req.Description != nil {
		book.Description = req.Description
	}

	// Resize before the descriptive write so an invalid total rejects
	// the whole edit
	if req.TotalCopies != nil {
		resized, err := s.repo.ResizeCopies(ctx, id, *req.TotalCopies)
		if err != nil {
			return nil, err
		}
		book.TotalCopies = resized.TotalCopies
		book.AvailableCopies = resized.AvailableCopies
	}

	book.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, err
	}

	resp := book.ToResponse()
	return &resp, nil
}

// DeleteBook implements ServiceInterface.DeleteBook
func (s *BookService) DeleteBook(ctx context.Context, id uuid.UUID) error {
	if err := s.loanGuard.GuardBookDeletion(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info("Book deleted", map[string]interface{}{
		"book_id": id,
	})
	return nil
}
