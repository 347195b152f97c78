package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// =====================================================
// CREATE BOOK REQUEST
// =====================================================
type CreateBookRequest struct {
	Title           string  `json:"title" binding:"required"`
	Author          string  `json:"author" binding:"required"`
	ISBN            string  `json:"isbn" binding:"required"`
	Genre           string  `json:"genre" binding:"required"`
	PublicationYear int     `json:"publication_year" binding:"required"`
	Publisher       string  `json:"publisher" binding:"required"`
	CoverURL        *string `json:"cover_url,omitempty"`
	Description     *string `json:"description,omitempty"`
	TotalCopies     int     `json:"total_copies" binding:"required,min=0"`
}

// Validate validates CreateBookRequest
func (req CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 500)),
		validation.Field(&req.Author, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.ISBN, validation.Required, is.ISBN),
		validation.Field(&req.Genre, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.PublicationYear, validation.Required, validation.Min(1000), validation.Max(time.Now().Year()+1)),
		validation.Field(&req.Publisher, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.TotalCopies, validation.Min(0)),
	)
}

// =====================================================
// UPDATE BOOK REQUEST
// =====================================================
// Pointer fields distinguish "not provided" from zero values
type UpdateBookRequest struct {
	Title           *string `json:"title,omitempty"`
	Author          *string `json:"author,omitempty"`
	ISBN            *string `json:"isbn,omitempty"`
	Genre           *string `json:"genre,omitempty"`
	PublicationYear *int    `json:"publication_year,omitempty"`
	Publisher       *string `json:"publisher,omitempty"`
	CoverURL        *string `json:"cover_url,omitempty"`
	Description     *string `json:"description,omitempty"`
	TotalCopies     *int    `json:"total_copies,omitempty"`
}

// Validate validates UpdateBookRequest
func (req UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Title, validation.NilOrNotEmpty, validation.Length(1, 500)),
		validation.Field(&req.Author, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&req.ISBN, validation.NilOrNotEmpty, is.ISBN),
		validation.Field(&req.Genre, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&req.Publisher, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&req.TotalCopies, validation.Min(0)),
	)
}

// =====================================================
// LIST BOOKS REQUEST
// =====================================================
type ListBooksRequest struct {
	Page    int    `form:"page,default=1"`
	Limit   int    `form:"limit,default=20"`
	Search  string `form:"search"`
	Genre   string `form:"genre"`
	SortBy  string `form:"sort_by,default=title"`
	SortDir string `form:"sort_dir,default=asc"`

	// Only show titles with available copies
	AvailableOnly bool `form:"available_only"`
}

// Validate validates ListBooksRequest
func (req ListBooksRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Page, validation.Min(1)),
		validation.Field(&req.Limit, validation.Min(1), validation.Max(100)),
		validation.Field(&req.SortBy, validation.In("title", "author", "publication_year", "created_at")),
		validation.Field(&req.SortDir, validation.In("asc", "desc")),
	)
}

// Offset computes the SQL offset for the requested page
func (req ListBooksRequest) Offset() int {
	return (req.Page - 1) * req.Limit
}

// =====================================================
// RESPONSES
// =====================================================
type BookResponse struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	Genre           string    `json:"genre"`
	PublicationYear int       `json:"publication_year"`
	Publisher       string    `json:"publisher"`
	CoverURL        *string   `json:"cover_url,omitempty"`
	Description     *string   `json:"description,omitempty"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	Available       bool      `json:"available"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ListBooksResponse struct {
	Books []BookResponse `json:"books"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Total int            `json:"total"`
}

// ToResponse converts a Book entity to its response DTO
func (b *Book) ToResponse() BookResponse {
	return BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Genre:           b.Genre,
		PublicationYear: b.PublicationYear,
		Publisher:       b.Publisher,
		CoverURL:        b.CoverURL,
		Description:     b.Description,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		Available:       b.IsAvailable(),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// ToResponseList converts a slice of books to response DTOs
func ToResponseList(books []Book) []BookResponse {
	responses := make([]BookResponse, 0, len(books))
	for i := range books {
		responses = append(responses, books[i].ToResponse())
	}
	return responses
}
