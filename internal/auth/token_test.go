package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myflix-api/internal/domain"
)

func testUser() *domain.User {
	birthday := time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC)
	return &domain.User{
		Username: "alice01",
		Email:    "alice@example.com",
		Birthday: &birthday,
	}
}

func TestIssueAndVerify(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)
	assert.Len(t, splitToken(token), 3)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice01", claims.Subject)
	assert.Equal(t, "alice01", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestIssueDefaultLifetime(t *testing.T) {
	issuer := NewIssuer("test-secret", 0)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)

	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, 7*24*time.Hour, lifetime)
}

func TestIssueRequiresUsername(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	_, err := issuer.Issue(nil)
	assert.ErrorIs(t, err, ErrInvalidIdentity)

	_, err = issuer.Issue(&domain.User{Username: "  "})
	assert.ErrorIs(t, err, ErrInvalidIdentity)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	verifier := NewIssuer("test-secret", time.Hour)
	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	other := NewIssuer("another-secret", time.Hour)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestVerifyRejectsTamperedAlgorithm(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	// Unsigned token with a valid payload must not pass.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice01",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	for _, token := range []string{"", "abc", "a.b.c"} {
		_, err := issuer.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidOrExpiredToken, "token %q", token)
	}
}

func TestClaimsIdentityCarriesEmbeddedFields(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)

	identity := claims.Identity()
	assert.Equal(t, "alice01", identity.Username)
	assert.Equal(t, "alice@example.com", identity.Email)
	require.NotNil(t, identity.Birthday)
	assert.Equal(t, 1990, identity.Birthday.Year())
}

func splitToken(token string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(token); i++ {
		if token[i] == '.' {
			parts = append(parts, token[start:i])
			start = i + 1
		}
	}
	return append(parts, token[start:])
}
