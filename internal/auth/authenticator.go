package auth

import (
	"context"
	"errors"
	"strings"

	"myflix-api/internal/domain"
	"myflix-api/internal/repository"
)

// Authenticator resolves inbound credentials to a caller identity. Two
// strategies are supported: password (login endpoint) and bearer token
// (every other protected endpoint).
type Authenticator struct {
	users  repository.UserRepository
	hasher *Hasher
	issuer *Issuer
}

func NewAuthenticator(users repository.UserRepository, hasher *Hasher, issuer *Issuer) *Authenticator {
	return &Authenticator{
		users:  users,
		hasher: hasher,
		issuer: issuer,
	}
}

// AuthenticatePassword looks up the identity by username and verifies the
// plaintext password against the stored digest. A missing user and a wrong
// password both return ErrInvalidCredentials so callers cannot enumerate
// usernames. Malformed stored digests are surfaced, not masked.
func (a *Authenticator) AuthenticatePassword(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := a.hasher.Verify(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidCredentialFormat) {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// AuthenticateToken verifies a bearer token and resolves it to the identity
// embedded in its claims. Read-only: the store is not consulted.
func (a *Authenticator) AuthenticateToken(tokenString string) (*domain.User, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrMissingCredentials
	}

	claims, err := a.issuer.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	return claims.Identity(), nil
}
