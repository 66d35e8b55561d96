package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"myflix-api/internal/auth"
	"myflix-api/internal/domain"
	"myflix-api/internal/repository"
)

var (
	// ErrUserAlreadyExists is returned when registering an existing username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrMovieNotFound is returned when a favorite references an unknown movie.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrAlreadyFavorite is returned when a movie is already in the favorites list.
	ErrAlreadyFavorite = errors.New("movie is already in favorites")
)

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	Birthday *time.Time
}

// UpdateInput carries the optional fields of a profile update. Nil fields are
// left unchanged; a non-nil password is re-hashed before storage.
type UpdateInput struct {
	Password *string
	Email    *string
	Birthday *time.Time
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.User, string, error)
	Get(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, username string, input UpdateInput) (*domain.User, error)
	Delete(ctx context.Context, username string) error
	AddFavorite(ctx context.Context, username, movieID string) (*domain.User, error)
	RemoveFavorite(ctx context.Context, username, movieID string) (*domain.User, error)
}

type userService struct {
	users         repository.UserRepository
	movies        repository.MovieRepository
	hasher        *auth.Hasher
	authenticator *auth.Authenticator
	issuer        *auth.Issuer
}

func NewUserService(
	users repository.UserRepository,
	movies repository.MovieRepository,
	hasher *auth.Hasher,
	authenticator *auth.Authenticator,
	issuer *auth.Issuer,
) UserService {
	return &userService{
		users:         users,
		movies:        movies,
		hasher:        hasher,
		authenticator: authenticator,
		issuer:        issuer,
	}
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, errors.New("password is required")
	}
	if err := validateEmail(input.Email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Email:        strings.TrimSpace(input.Email),
		Birthday:     input.Birthday,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	user, err := s.authenticator.AuthenticatePassword(ctx, username, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	return sanitizeUser(user), token, nil
}

func (s *userService) Get(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = *sanitizeUser(&users[i])
	}
	return users, nil
}

func (s *userService) Update(ctx context.Context, username string, input UpdateInput) (*domain.User, error) {
	update := &domain.User{Username: username}

	if input.Password != nil {
		if *input.Password == "" {
			return nil, errors.New("password must not be empty")
		}
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		update.PasswordHash = hash
	}
	if input.Email != nil {
		if err := validateEmail(*input.Email); err != nil {
			return nil, err
		}
		update.Email = strings.TrimSpace(*input.Email)
	}
	update.Birthday = input.Birthday

	user, err := s.users.Update(ctx, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) Delete(ctx context.Context, username string) error {
	if err := s.users.Delete(ctx, username); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *userService) AddFavorite(ctx context.Context, username, movieID string) (*domain.User, error) {
	if _, err := s.movies.GetByID(ctx, movieID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.HasFavorite(movieID) {
		return nil, ErrAlreadyFavorite
	}

	updated, err := s.users.AddFavorite(ctx, username, movieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(updated), nil
}

func (s *userService) RemoveFavorite(ctx context.Context, username, movieID string) (*domain.User, error) {
	updated, err := s.users.RemoveFavorite(ctx, username, movieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(updated), nil
}

func validateUsername(username string) error {
	if len(username) < 5 {
		return errors.New("username must be at least 5 characters")
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return errors.New("username must be alphanumeric")
		}
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at+1:], ".") {
		return errors.New("email does not appear to be valid")
	}
	return nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clone := *user
	clone.PasswordHash = ""
	if clone.FavoriteMovies == nil {
		clone.FavoriteMovies = []string{}
	}
	return &clone
}
