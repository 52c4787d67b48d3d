package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cognition-berries/pkg/identity"
	"cognition-berries/pkg/jwt"
	"cognition-berries/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubResolver struct {
	role string
	err  error
	seen *identity.Identity
}

func (s *stubResolver) ResolveRole(_ context.Context, id *identity.Identity) (string, error) {
	s.seen = id
	return s.role, s.err
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func echoIdentity(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id": c.GetString(ContextUserID),
		"role":    c.GetString(ContextUserRole),
		"email":   c.GetString(ContextUserEmail),
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	jwtService := jwt.NewService("test-secret-key")
	token, _ := jwtService.GenerateToken("user-123", "ada@example.com", "Ada")
	resolver := &stubResolver{role: RoleStudent}

	router := setupTestRouter()
	router.Use(AuthMiddleware(jwtService, resolver, logger.NewNop()))
	router.GET("/test", echoIdentity)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"user-123"`)
	assert.Contains(t, w.Body.String(), `"role":"student"`)
	assert.Equal(t, "ada@example.com", resolver.seen.Email)
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	router := setupTestRouter()
	router.Use(AuthMiddleware(jwt.NewService("k"), &stubResolver{}, logger.NewNop()))
	router.GET("/test", echoIdentity)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidFormat(t *testing.T) {
	router := setupTestRouter()
	router.Use(AuthMiddleware(jwt.NewService("k"), &stubResolver{}, logger.NewNop()))
	router.GET("/test", echoIdentity)

	for _, header := range []string{"InvalidFormat token", "Bearer", "Bearer   "} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", header)

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := setupTestRouter()
	router.Use(AuthMiddleware(jwt.NewService("test-secret-key"), &stubResolver{}, logger.NewNop()))
	router.GET("/test", echoIdentity)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ResolverFailure(t *testing.T) {
	jwtService := jwt.NewService("test-secret-key")
	token, _ := jwtService.GenerateToken("user-123", "", "")

	router := setupTestRouter()
	router.Use(AuthMiddleware(jwtService, &stubResolver{err: errors.New("db down")}, logger.NewNop()))
	router.GET("/test", echoIdentity)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSkipAuthMiddleware(t *testing.T) {
	router := setupTestRouter()
	router.Use(SkipAuthMiddleware())
	router.GET("/test", echoIdentity)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"test-user-id"`)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
	assert.Contains(t, w.Body.String(), `"email":"test@example.com"`)
}

func TestRequireRole(t *testing.T) {
	router := setupTestRouter()
	router.Use(func(c *gin.Context) {
		c.Set(ContextUserRole, c.GetHeader("X-Role"))
		c.Next()
	})
	router.GET("/admin", RequireRole(RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin", nil)
	req.Header.Set("X-Role", RoleStudent)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/admin", nil)
	req.Header.Set("X-Role", RoleAdmin)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
