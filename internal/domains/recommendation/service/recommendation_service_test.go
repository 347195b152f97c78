package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/recommendation/model"
)

// =====================================================
// MOCKS
// =====================================================

type mockRepo struct {
	TopGenresFunc         func(ctx context.Context, userID uuid.UUID, limit int) ([]string, error)
	AvailableByGenresFunc func(ctx context.Context, userID uuid.UUID, genres []string, limit int) ([]bookModel.Book, error)
	MostBorrowedFunc      func(ctx context.Context, limit int) ([]bookModel.Book, error)
}

func (m *mockRepo) TopGenres(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	return m.TopGenresFunc(ctx, userID, limit)
}

func (m *mockRepo) AvailableByGenres(ctx context.Context, userID uuid.UUID, genres []string, limit int) ([]bookModel.Book, error) {
	return m.AvailableByGenresFunc(ctx, userID, genres, limit)
}

func (m *mockRepo) MostBorrowed(ctx context.Context, limit int) ([]bookModel.Book, error) {
	return m.MostBorrowedFunc(ctx, limit)
}

// memoryCache is a map-backed Cache, round-tripping values through JSON
// the way the Redis implementation does.
type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	return nil
}

func (c *memoryCache) Ping(ctx context.Context) error {
	return nil
}

// =====================================================
// FIXTURES
// =====================================================

func genreBook(title, genre string) bookModel.Book {
	return bookModel.Book{
		ID:              uuid.New(),
		Title:           title,
		Genre:           genre,
		TotalCopies:     2,
		AvailableCopies: 1,
	}
}

// =====================================================
// TESTS
// =====================================================

func TestGetRecommendations_MatchesTopGenres(t *testing.T) {
	userID := uuid.New()

	repo := &mockRepo{
		TopGenresFunc: func(ctx context.Context, id uuid.UUID, limit int) ([]string, error) {
			assert.Equal(t, 3, limit)
			return []string{"Science Fiction", "Fantasy"}, nil
		},
		AvailableByGenresFunc: func(ctx context.Context, id uuid.UUID, genres []string, limit int) ([]bookModel.Book, error) {
			assert.Equal(t, []string{"Science Fiction", "Fantasy"}, genres)
			return []bookModel.Book{
				genreBook("Hyperion", "Science Fiction"),
				genreBook("The Fifth Season", "Fantasy"),
			}, nil
		},
	}

	svc := NewService(repo, newMemoryCache())

	resp, err := svc.GetRecommendations(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, []string{"Science Fiction", "Fantasy"}, resp.Genres)
	require.Len(t, resp.Books, 2)
	assert.Equal(t, "Hyperion", resp.Books[0].Title)
}

func TestGetRecommendations_NoHistoryFallsBackToMostBorrowed(t *testing.T) {
	repo := &mockRepo{
		TopGenresFunc: func(ctx context.Context, id uuid.UUID, limit int) ([]string, error) {
			return nil, nil
		},
		MostBorrowedFunc: func(ctx context.Context, limit int) ([]bookModel.Book, error) {
			assert.Equal(t, 10, limit)
			return []bookModel.Book{genreBook("Dune", "Science Fiction")}, nil
		},
	}

	svc := NewService(repo, newMemoryCache())

	resp, err := svc.GetRecommendations(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Empty(t, resp.Genres)
	require.Len(t, resp.Books, 1)
	assert.Equal(t, "Dune", resp.Books[0].Title)
}

func TestGetRecommendations_ExhaustedGenresFallBack(t *testing.T) {
	// The member has history but every matching title is checked out or
	// already on their shelf.
	repo := &mockRepo{
		TopGenresFunc: func(ctx context.Context, id uuid.UUID, limit int) ([]string, error) {
			return []string{"Poetry"}, nil
		},
		AvailableByGenresFunc: func(ctx context.Context, id uuid.UUID, genres []string, limit int) ([]bookModel.Book, error) {
			return nil, nil
		},
		MostBorrowedFunc: func(ctx context.Context, limit int) ([]bookModel.Book, error) {
			return []bookModel.Book{genreBook("Dune", "Science Fiction")}, nil
		},
	}

	svc := NewService(repo, newMemoryCache())

	resp, err := svc.GetRecommendations(context.Background(), uuid.New())
	require.NoError(t, err)

	// Fallback results make no genre claim
	assert.Empty(t, resp.Genres)
	require.Len(t, resp.Books, 1)
}

func TestGetRecommendations_SecondCallServedFromCache(t *testing.T) {
	userID := uuid.New()
	queries := 0

	repo := &mockRepo{
		TopGenresFunc: func(ctx context.Context, id uuid.UUID, limit int) ([]string, error) {
			queries++
			return []string{"Science Fiction"}, nil
		},
		AvailableByGenresFunc: func(ctx context.Context, id uuid.UUID, genres []string, limit int) ([]bookModel.Book, error) {
			return []bookModel.Book{genreBook("Hyperion", "Science Fiction")}, nil
		},
	}

	cache := newMemoryCache()
	svc := NewService(repo, cache)

	first, err := svc.GetRecommendations(context.Background(), userID)
	require.NoError(t, err)

	second, err := svc.GetRecommendations(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, 1, queries, "the second call must not hit the database")
	assert.Equal(t, first.Genres, second.Genres)
	require.Len(t, second.Books, 1)
	assert.Equal(t, first.Books[0].ID, second.Books[0].ID)

	// The cached entry round-trips through JSON intact
	var cached model.RecommendationResponse
	found, err := cache.Get(context.Background(), "recommendations:user:"+userID.String(), &cached)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, first.Genres, cached.Genres)
}
