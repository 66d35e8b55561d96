package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"myflix-api/internal/domain"
)

// DefaultTokenTTL is the token lifetime when none is configured. Expiry is the
// only deactivation mechanism; there is no server-side revocation.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims is the payload carried by issued tokens. Identity fields are embedded
// so the token strategy can resolve the caller without a store round trip.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Birthday string `json:"birthday,omitempty"`
}

// Issuer mints signed, time-bounded identity assertions. The signing secret is
// process-wide, fixed at startup and never rotated.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer signing HS256 tokens with the given secret.
// A non-positive ttl falls back to DefaultTokenTTL.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue produces a signed token for a verified identity. The subject claim is
// the username; expiry is issue time plus the configured lifetime.
func (i *Issuer) Issue(user *domain.User) (string, error) {
	if user == nil || strings.TrimSpace(user.Username) == "" {
		return "", ErrInvalidIdentity
	}

	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Username: user.Username,
		Email:    user.Email,
	}
	if user.Birthday != nil {
		claims.Birthday = user.Birthday.Format(time.RFC3339)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the decoded claims. Any
// failure, including an unexpected signing method, maps to
// ErrInvalidOrExpiredToken.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidOrExpiredToken
	}
	if strings.TrimSpace(claims.Username) == "" {
		claims.Username = claims.Subject
	}
	if strings.TrimSpace(claims.Username) == "" {
		return nil, ErrInvalidOrExpiredToken
	}
	return claims, nil
}

// Identity reconstructs the user record embedded in the claims. Fields are
// trusted for the lifetime of the request; stale data persists until expiry.
func (c *Claims) Identity() *domain.User {
	user := &domain.User{
		Username: c.Username,
		Email:    c.Email,
	}
	if c.Birthday != "" {
		if t, err := time.Parse(time.RFC3339, c.Birthday); err == nil {
			user.Birthday = &t
		}
	}
	return user
}
