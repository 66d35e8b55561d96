package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"myflix-api/internal/domain"
)

// identityKey is the gin context key holding the resolved caller identity.
const identityKey = "auth.identity"

// RequireAuth returns a middleware that authenticates the bearer token on
// every request and short-circuits with a 401 before any handler runs. The
// missing-header case is rejected before any cryptographic check.
func RequireAuth(authenticator *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		identity, err := authenticator.AuthenticateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// CurrentIdentity returns the identity stored by RequireAuth, or nil when the
// request did not pass authentication.
func CurrentIdentity(c *gin.Context) *domain.User {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	user, ok := v.(*domain.User)
	if !ok {
		return nil
	}
	return user
}
