package model

import (
	bookModel "library-backend/internal/domains/book/model"
)

// RecommendationResponse is the personalized shelf for one member:
// available titles in the genres they borrow most, minus everything
// they have already borrowed.
type RecommendationResponse struct {
	// Genres the picks were drawn from, strongest affinity first.
	// Empty for members with no borrowing history.
	Genres []string `json:"genres"`

	Books []bookModel.BookResponse `json:"books"`
}
