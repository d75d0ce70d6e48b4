package middleware

import (
	"context"

	"github.com/AnTengye/qualitytrack/pkg/logger"
	"github.com/gin-gonic/gin"
)

// FormScope tags the request with the form instance named by the :id path
// parameter so every log line of the request carries it
func FormScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		formID := c.Param("id")
		if formID != "" {
			c.Set("form_id", formID)
			ctx := context.WithValue(c.Request.Context(), logger.FormIDKey, formID)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// GetFormID gets the form ID from gin context
func GetFormID(c *gin.Context) string {
	if formID, exists := c.Get("form_id"); exists {
		return formID.(string)
	}
	return ""
}
