package repository

import (
	"context"

	"myflix-api/internal/domain"
)

// MovieRepository defines persistence operations for catalog entities.
// Genres and directors are projections over the movie documents.
type MovieRepository interface {
	Create(ctx context.Context, movie *domain.Movie) error
	List(ctx context.Context) ([]domain.Movie, error)
	GetByID(ctx context.Context, id string) (*domain.Movie, error)
	GetByTitle(ctx context.Context, title string) (*domain.Movie, error)
	UpdateImagePath(ctx context.Context, id, imagePath string) error
	ListGenres(ctx context.Context) ([]domain.Genre, error)
	GetGenre(ctx context.Context, name string) (*domain.Genre, error)
	ListDirectors(ctx context.Context) ([]domain.Director, error)
	GetDirector(ctx context.Context, name string) (*domain.Director, error)
}
