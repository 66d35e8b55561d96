package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt work factor used when no cost is configured.
const DefaultHashCost = 10

// Hasher owns one-way hashing and verification of user secrets.
type Hasher struct {
	cost int
}

// NewHasher returns a bcrypt-backed hasher. Costs outside bcrypt's valid
// range fall back to DefaultHashCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}
	return &Hasher{cost: cost}
}

// Hash produces a salted bcrypt digest of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("password exceeds 72 bytes: %w", ErrInvalidCredentialFormat)
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify compares plaintext against a stored digest. A mismatch returns
// ErrInvalidCredentials; a digest that is not valid bcrypt output returns
// ErrInvalidCredentialFormat.
func (h *Hasher) Verify(plaintext, digest string) error {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	return fmt.Errorf("%w: %v", ErrInvalidCredentialFormat, err)
}
