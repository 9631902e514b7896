package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/clubworks/memberpay/internal/models"
	cfgpkg "github.com/clubworks/memberpay/pkg/config"
)

const testJWTSecret = "jwt-test-secret"

type stubIdentityGetter struct {
	identities map[string]*models.Identity
}

func (s *stubIdentityGetter) GetByID(_ context.Context, id string) (*models.Identity, error) {
	ident, ok := s.identities[id]
	if !ok {
		return nil, fmt.Errorf("identity not found: %s", id)
	}
	return ident, nil
}

func authRouter(idSvc IdentityGetter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &cfgpkg.Config{JWT: cfgpkg.JWTConfig{Secret: testJWTSecret}}
	r := gin.New()
	r.GET("/protected", AuthMiddleware(cfg, idSvc), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":    c.GetString("identityID"),
			"email": c.GetString("identityEmail"),
		})
	})
	return r
}

func signToken(t *testing.T, secret, subject, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &AuthClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func getProtected(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	idSvc := &stubIdentityGetter{identities: map[string]*models.Identity{
		"id-1": {ID: "id-1", Email: "alice@example.com"},
	}}
	r := authRouter(idSvc)

	w := getProtected(r, "Bearer "+signToken(t, testJWTSecret, "id-1", "alice@example.com"))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"id":"id-1"`)
	require.Contains(t, w.Body.String(), `"email":"alice@example.com"`)
}

func TestAuthMiddleware_EmailFallsBackToIdentity(t *testing.T) {
	idSvc := &stubIdentityGetter{identities: map[string]*models.Identity{
		"id-1": {ID: "id-1", Email: "stored@example.com"},
	}}
	r := authRouter(idSvc)

	w := getProtected(r, "Bearer "+signToken(t, testJWTSecret, "id-1", ""))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"email":"stored@example.com"`)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	r := authRouter(&stubIdentityGetter{})
	w := getProtected(r, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	r := authRouter(&stubIdentityGetter{})
	w := getProtected(r, "Bearer "+signToken(t, "other-secret", "id-1", "alice@example.com"))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_UnknownSubject(t *testing.T) {
	r := authRouter(&stubIdentityGetter{identities: map[string]*models.Identity{}})
	w := getProtected(r, "Bearer "+signToken(t, testJWTSecret, "id-gone", "alice@example.com"))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	idSvc := &stubIdentityGetter{identities: map[string]*models.Identity{
		"id-1": {ID: "id-1", Email: "alice@example.com"},
	}}
	r := authRouter(idSvc)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "id-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	w := getProtected(r, "Bearer "+signed)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
