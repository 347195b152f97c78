package model

import (
	"time"

	"github.com/google/uuid"
)

// Book represents a catalog title with its copy counts.
//
// Invariant maintained by the loan lifecycle:
//
//	0 <= AvailableCopies <= TotalCopies
//	AvailableCopies == TotalCopies - (open loans on this book)
type Book struct {
	// Identity
	ID uuid.UUID `json:"id" db:"id"`

	// Descriptive fields (immutable with respect to the loan lifecycle)
	Title           string  `json:"title" db:"title"`
	Author          string  `json:"author" db:"author"`
	ISBN            string  `json:"isbn" db:"isbn"`
	Genre           string  `json:"genre" db:"genre"`
	PublicationYear int     `json:"publication_year" db:"publication_year"`
	Publisher       string  `json:"publisher" db:"publisher"`
	CoverURL        *string `json:"cover_url" db:"cover_url"`
	Description     *string `json:"description" db:"description"`

	// Copy counts
	TotalCopies     int `json:"total_copies" db:"total_copies"`
	AvailableCopies int `json:"available_copies" db:"available_copies"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsAvailable reports whether at least one copy can be borrowed
func (b *Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}

// ValidSortFields defines the columns the list endpoint may sort by
var ValidSortFields = []string{"title", "author", "publication_year", "created_at"}

// IsValidSortField checks if a sort field is allowed
func IsValidSortField(field string) bool {
	for _, valid := range ValidSortFields {
		if valid == field {
			return true
		}
	}
	return false
}
