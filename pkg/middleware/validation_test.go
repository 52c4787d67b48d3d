package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type reviewRequest struct {
	CourseID string `json:"courseId" binding:"required"`
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
}

func bindRouter() *gin.Engine {
	SetupValidator()
	router := setupTestRouter()
	router.POST("/reviews", func(c *gin.Context) {
		var req reviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBindError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})
	return router
}

func TestHandleBindError_ValidationDetails(t *testing.T) {
	router := bindRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/reviews", bytes.NewBufferString(`{"rating": 9}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Request validation failed")
	assert.Contains(t, w.Body.String(), `"field":"courseId"`)
	assert.Contains(t, w.Body.String(), `"field":"rating"`)
	assert.Contains(t, w.Body.String(), "Must be at most 5")
}

func TestHandleBindError_MalformedJSON(t *testing.T) {
	router := bindRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/reviews", bytes.NewBufferString(`{"rating":`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, w.Body.String())
}

func TestHandleBindError_Valid(t *testing.T) {
	router := bindRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/reviews", bytes.NewBufferString(`{"courseId":"c1","rating":4}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRateLimitMiddleware_NilClientPassesThrough(t *testing.T) {
	router := setupTestRouter()
	router.Use(RateLimitMiddleware(nil, 1, 0, nil))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/x", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
