package handler

import (
	"net/http"

	"github.com/AnTengye/qualitytrack/service"
	"github.com/gin-gonic/gin"
)

// Nav returns the navigation items with the current path highlighted
func Nav(c *gin.Context) {
	path := c.DefaultQuery("path", "/")
	c.JSON(http.StatusOK, gin.H{"items": service.Navigation(path)})
}

// Home returns the landing page content
func Home(c *gin.Context) {
	c.JSON(http.StatusOK, service.HomePage())
}
