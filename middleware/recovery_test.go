package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID()) // Add request ID first
	router.Use(Recovery())
	router.GET("/forms/:id/panic", FormScope(), func(c *gin.Context) {
		panic("test panic")
	})
	router.GET("/normal", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	// Test panic recovery
	t.Run("panic recovery", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/forms/f-1/panic", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", w.Code)
		}

		body := w.Body.String()
		if !strings.Contains(body, "Internal server error") {
			t.Error("Expected error message in response")
		}
		if !strings.Contains(body, w.Header().Get("X-Request-ID")) {
			t.Error("Expected request ID in response")
		}
	})

	// Test normal request
	t.Run("normal request", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/normal", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})
}
