package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"myflix-api/internal/domain"
	"myflix-api/internal/repository"
	"myflix-api/internal/storage"
)

// ErrGenreNotFound is returned when no movie carries the requested genre.
var ErrGenreNotFound = errors.New("genre not found")

// ErrDirectorNotFound is returned when no movie carries the requested director.
var ErrDirectorNotFound = errors.New("director not found")

// ErrPosterUnavailable is returned when poster storage is not configured or
// the movie has no poster key.
var ErrPosterUnavailable = errors.New("poster unavailable")

// CatalogService serves movie, genre and director lookups plus poster URLs.
type CatalogService interface {
	AddMovie(ctx context.Context, movie *domain.Movie) (*domain.Movie, error)
	ListMovies(ctx context.Context) ([]domain.Movie, error)
	GetMovie(ctx context.Context, titleOrID string) (*domain.Movie, error)
	ListGenres(ctx context.Context) ([]domain.Genre, error)
	GetGenre(ctx context.Context, name string) (*domain.Genre, error)
	ListDirectors(ctx context.Context) ([]domain.Director, error)
	GetDirector(ctx context.Context, name string) (*domain.Director, error)
	PosterURL(ctx context.Context, titleOrID string) (string, error)
	SetPoster(ctx context.Context, titleOrID, key string) (*domain.Movie, error)
}

type catalogService struct {
	movies    repository.MovieRepository
	posters   storage.Service
	bucket    string
	urlExpiry time.Duration
}

func NewCatalogService(movies repository.MovieRepository, posters storage.Service, bucket string) CatalogService {
	return &catalogService{
		movies:    movies,
		posters:   posters,
		bucket:    bucket,
		urlExpiry: 15 * time.Minute,
	}
}

func (s *catalogService) AddMovie(ctx context.Context, movie *domain.Movie) (*domain.Movie, error) {
	if movie.Title == "" {
		return nil, errors.New("title is required")
	}
	if movie.Description == "" {
		return nil, errors.New("description is required")
	}
	if movie.Genre.Name == "" || movie.Director.Name == "" {
		return nil, errors.New("genre and director are required")
	}
	if err := s.movies.Create(ctx, movie); err != nil {
		return nil, err
	}
	return movie, nil
}

func (s *catalogService) ListMovies(ctx context.Context) ([]domain.Movie, error) {
	return s.movies.List(ctx)
}

// GetMovie resolves by exact title first, then falls back to treating the
// argument as a document ID.
func (s *catalogService) GetMovie(ctx context.Context, titleOrID string) (*domain.Movie, error) {
	movie, err := s.movies.GetByTitle(ctx, titleOrID)
	if err == nil {
		return movie, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	movie, err = s.movies.GetByID(ctx, titleOrID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return movie, nil
}

func (s *catalogService) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	return s.movies.ListGenres(ctx)
}

func (s *catalogService) GetGenre(ctx context.Context, name string) (*domain.Genre, error) {
	genre, err := s.movies.GetGenre(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGenreNotFound
		}
		return nil, err
	}
	return genre, nil
}

func (s *catalogService) ListDirectors(ctx context.Context) ([]domain.Director, error) {
	return s.movies.ListDirectors(ctx)
}

func (s *catalogService) GetDirector(ctx context.Context, name string) (*domain.Director, error) {
	director, err := s.movies.GetDirector(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDirectorNotFound
		}
		return nil, err
	}
	return director, nil
}

// SetPoster records the storage key of a movie's poster. An empty key clears
// the poster.
func (s *catalogService) SetPoster(ctx context.Context, titleOrID, key string) (*domain.Movie, error) {
	movie, err := s.GetMovie(ctx, titleOrID)
	if err != nil {
		return nil, err
	}
	if err := s.movies.UpdateImagePath(ctx, movie.ID, key); err != nil {
		return nil, err
	}
	movie.ImagePath = key
	return movie, nil
}

// PosterURL returns a time-limited URL for the movie's poster object.
func (s *catalogService) PosterURL(ctx context.Context, titleOrID string) (string, error) {
	if s.posters == nil || s.bucket == "" {
		return "", ErrPosterUnavailable
	}

	movie, err := s.GetMovie(ctx, titleOrID)
	if err != nil {
		return "", err
	}
	if movie.ImagePath == "" {
		return "", ErrPosterUnavailable
	}

	url, err := s.posters.ObjectURL(ctx, s.bucket, movie.ImagePath, s.urlExpiry)
	if err != nil {
		return "", fmt.Errorf("poster url for %q: %w", movie.Title, err)
	}
	return url, nil
}
