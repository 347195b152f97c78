package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/recommendation/model"
	"library-backend/internal/domains/recommendation/repository"
	"library-backend/pkg/cache"
	"library-backend/pkg/logger"
)

const (
	recommendationCacheKeyPrefix = "recommendations:user:"
	recommendationCacheTTL       = 10 * time.Minute

	topGenreCount       = 3
	recommendationCount = 10
)

// ServiceInterface defines personalized recommendation logic
type ServiceInterface interface {
	// GetRecommendations returns available titles matched to the
	// member's strongest genres. Members without borrowing history get
	// the library-wide most borrowed titles instead.
	GetRecommendations(ctx context.Context, userID uuid.UUID) (*model.RecommendationResponse, error)
}

// RecommendationService implements ServiceInterface
type RecommendationService struct {
	repo  repository.RepositoryInterface
	cache cache.Cache
}

// NewService creates a new recommendation service
func NewService(repo repository.RepositoryInterface, cache cache.Cache) *RecommendationService {
	return &RecommendationService{
		repo:  repo,
		cache: cache,
	}
}

// GetRecommendations implements ServiceInterface.GetRecommendations.
// Results are cached per member; the short TTL is the only freshness
// mechanism, new loans show up after at most ten minutes.
func (s *RecommendationService) GetRecommendations(ctx context.Context, userID uuid.UUID) (*model.RecommendationResponse, error) {
	cacheKey := recommendationCacheKeyPrefix + userID.String()

	var cached model.RecommendationResponse
	if found, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	genres, err := s.repo.TopGenres(ctx, userID, topGenreCount)
	if err != nil {
		return nil, err
	}

	var books []bookModel.Book
	if len(genres) > 0 {
		books, err = s.repo.AvailableByGenres(ctx, userID, genres, recommendationCount)
		if err != nil {
			return nil, err
		}
	}

	// No history, or the member exhausted their favorite genres
	if len(books) == 0 {
		genres = []string{}
		books, err = s.repo.MostBorrowed(ctx, recommendationCount)
		if err != nil {
			return nil, err
		}
	}

	resp := &model.RecommendationResponse{
		Genres: genres,
		Books:  bookModel.ToResponseList(books),
	}

	if err := s.cache.Set(ctx, cacheKey, resp, recommendationCacheTTL); err != nil {
		logger.Warn("Failed to cache recommendations", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}

	return resp, nil
}
