package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"myflix-api/internal/domain"
)

func newProtectedRouter(authenticator *Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", RequireAuth(authenticator), func(c *gin.Context) {
		identity := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"username": identity.Username})
	})
	return router
}

func TestRequireAuthMissingHeader(t *testing.T) {
	router := newProtectedRouter(newTestAuthenticator(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authorization required")
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	router := newProtectedRouter(newTestAuthenticator(t))

	for _, header := range []string{"Bearer", "Token abc", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	router := newProtectedRouter(newTestAuthenticator(t))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired token")
}

func TestRequireAuthResolvesIdentity(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	authenticator := NewAuthenticator(newFakeUserRepo(), NewHasher(bcrypt.MinCost), issuer)
	router := newProtectedRouter(authenticator)

	token, err := issuer.Issue(&domain.User{Username: "alice01"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice01")
}

func TestCurrentIdentityWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, CurrentIdentity(c))
}
