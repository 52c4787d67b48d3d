package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"cognition-berries/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewEngine_DoesNotRedirectIntoImageUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newEngine(logger.NewNop())
	r.POST("/courses", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.POST("/courses/:id/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/courses/abc", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Header().Get("Location"))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/courses/abc/", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
