package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"myflix-api/internal/domain"
	"myflix-api/internal/repository"
)

// memUserRepo is an in-memory UserRepository used across the service tests.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	next  int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; ok {
		return fmt.Errorf("user %q: %w", user.Username, repository.ErrAlreadyExists)
	}
	r.next++
	user.ID = strconv.Itoa(r.next)
	clone := *user
	r.users[user.Username] = &clone
	return nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", username, repository.ErrNotFound)
	}
	clone := *user
	clone.FavoriteMovies = append([]string(nil), user.FavoriteMovies...)
	return &clone, nil
}

func (r *memUserRepo) List(context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, *u)
	}
	return users, nil
}

func (r *memUserRepo) Update(_ context.Context, update *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[update.Username]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", update.Username, repository.ErrNotFound)
	}
	if update.PasswordHash != "" {
		user.PasswordHash = update.PasswordHash
	}
	if update.Email != "" {
		user.Email = update.Email
	}
	if update.Birthday != nil {
		user.Birthday = update.Birthday
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) Delete(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[username]; !ok {
		return fmt.Errorf("user %q: %w", username, repository.ErrNotFound)
	}
	delete(r.users, username)
	return nil
}

func (r *memUserRepo) AddFavorite(_ context.Context, username, movieID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", username, repository.ErrNotFound)
	}
	if !user.HasFavorite(movieID) {
		user.FavoriteMovies = append(user.FavoriteMovies, movieID)
	}
	clone := *user
	clone.FavoriteMovies = append([]string(nil), user.FavoriteMovies...)
	return &clone, nil
}

func (r *memUserRepo) RemoveFavorite(_ context.Context, username, movieID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", username, repository.ErrNotFound)
	}
	kept := user.FavoriteMovies[:0]
	for _, id := range user.FavoriteMovies {
		if id != movieID {
			kept = append(kept, id)
		}
	}
	user.FavoriteMovies = kept
	clone := *user
	clone.FavoriteMovies = append([]string(nil), user.FavoriteMovies...)
	return &clone, nil
}

// memMovieRepo is an in-memory MovieRepository.
type memMovieRepo struct {
	mu     sync.Mutex
	movies map[string]*domain.Movie
	next   int
}

func newMemMovieRepo(movies ...*domain.Movie) *memMovieRepo {
	repo := &memMovieRepo{movies: make(map[string]*domain.Movie)}
	for _, m := range movies {
		_ = repo.Create(context.Background(), m)
	}
	return repo
}

func (r *memMovieRepo) Create(_ context.Context, movie *domain.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.movies {
		if m.Title == movie.Title {
			return fmt.Errorf("movie %q: %w", movie.Title, repository.ErrAlreadyExists)
		}
	}
	r.next++
	movie.ID = fmt.Sprintf("m%d", r.next)
	clone := *movie
	r.movies[movie.ID] = &clone
	return nil
}

func (r *memMovieRepo) List(context.Context) ([]domain.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	movies := make([]domain.Movie, 0, len(r.movies))
	for _, m := range r.movies {
		movies = append(movies, *m)
	}
	return movies, nil
}

func (r *memMovieRepo) GetByID(_ context.Context, id string) (*domain.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	movie, ok := r.movies[id]
	if !ok {
		return nil, fmt.Errorf("movie %q: %w", id, repository.ErrNotFound)
	}
	clone := *movie
	return &clone, nil
}

func (r *memMovieRepo) GetByTitle(_ context.Context, title string) (*domain.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.movies {
		if m.Title == title {
			clone := *m
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("movie %q: %w", title, repository.ErrNotFound)
}

func (r *memMovieRepo) UpdateImagePath(_ context.Context, id, imagePath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	movie, ok := r.movies[id]
	if !ok {
		return fmt.Errorf("movie %q: %w", id, repository.ErrNotFound)
	}
	movie.ImagePath = imagePath
	return nil
}

func (r *memMovieRepo) ListGenres(_ context.Context) ([]domain.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var genres []domain.Genre
	for _, m := range r.movies {
		if !seen[m.Genre.Name] {
			seen[m.Genre.Name] = true
			genres = append(genres, m.Genre)
		}
	}
	return genres, nil
}

func (r *memMovieRepo) GetGenre(_ context.Context, name string) (*domain.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.movies {
		if m.Genre.Name == name {
			genre := m.Genre
			return &genre, nil
		}
	}
	return nil, fmt.Errorf("genre %q: %w", name, repository.ErrNotFound)
}

func (r *memMovieRepo) ListDirectors(_ context.Context) ([]domain.Director, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var directors []domain.Director
	for _, m := range r.movies {
		if !seen[m.Director.Name] {
			seen[m.Director.Name] = true
			directors = append(directors, m.Director)
		}
	}
	return directors, nil
}

func (r *memMovieRepo) GetDirector(_ context.Context, name string) (*domain.Director, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.movies {
		if m.Director.Name == name {
			director := m.Director
			return &director, nil
		}
	}
	return nil, fmt.Errorf("director %q: %w", name, repository.ErrNotFound)
}
