package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/clubworks/memberpay/internal/models"
	cfgpkg "github.com/clubworks/memberpay/pkg/config"
)

type AuthClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// IdentityGetter is the slice of the identity service the auth gate needs.
type IdentityGetter interface {
	GetByID(ctx context.Context, id string) (*models.Identity, error)
}

// AuthMiddleware validates a bearer token and checks the subject against the
// auth-identity store. On success the identity id and email are stored in
// gin.Context under "identityID" and "identityEmail".
func AuthMiddleware(cfg *cfgpkg.Config, idSvc IdentityGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		claims := &AuthClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		ident, err := idSvc.GetByID(c.Request.Context(), claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		email := claims.Email
		if email == "" {
			email = ident.Email
		}
		c.Set("identityID", ident.ID)
		c.Set("identityEmail", email)
		c.Next()
	}
}
