package domain

import "time"

// User represents a registered account. Username is the natural key; the
// stored secret is always a bcrypt hash, never the plaintext password.
type User struct {
	ID             string
	Username       string
	PasswordHash   string
	Email          string
	Birthday       *time.Time
	FavoriteMovies []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasFavorite reports whether movieID is already in the user's favorites.
func (u *User) HasFavorite(movieID string) bool {
	for _, id := range u.FavoriteMovies {
		if id == movieID {
			return true
		}
	}
	return false
}
