package handler

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AnTengye/qualitytrack/config"
	"github.com/AnTengye/qualitytrack/middleware"
	"github.com/AnTengye/qualitytrack/pkg/sse"
	"github.com/AnTengye/qualitytrack/service"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// Deps are the services the HTTP API is built on
type Deps struct {
	Forms     *service.FormService
	Dashboard service.DashboardSource
	Hub       *sse.Hub
}

// NewRouter wires middleware and routes
func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	router.Use(middleware.RequestID())     // Request ID for tracing
	router.Use(middleware.Recovery())      // Panic recovery
	router.Use(middleware.RequestLogger()) // Access logging
	router.Use(middleware.CORS())
	router.Use(middleware.CacheControl())
	// Streams and spreadsheets are not worth compressing
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{
		"/api/events",
		"/api/dashboard/export",
	})))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	formHandler := NewFormHandler(deps.Forms)
	dashboardHandler := NewDashboardHandler(deps.Dashboard)
	eventsHandler := NewEventsHandler(deps.Hub)
	submitLimit := middleware.RateLimit(&cfg.RateLimit)

	api := router.Group("/api")
	{
		api.GET("/nav", Nav)
		api.GET("/home", Home)
		api.GET("/schemas", formHandler.Schemas)
		api.GET("/schemas/:kind", formHandler.Schema)
		api.POST("/records/:kind/validate", formHandler.ValidateRecord)
		api.GET("/events", eventsHandler.Stream)
		api.GET("/dashboard", dashboardHandler.Get)
		api.GET("/dashboard/export", dashboardHandler.Export)
		api.POST("/forms", formHandler.Create)
	}

	forms := api.Group("/forms/:id")
	forms.Use(middleware.FormScope())
	{
		forms.GET("", formHandler.Get)
		forms.DELETE("", formHandler.Delete)
		forms.PUT("/fields/:name", formHandler.SetField)
		forms.POST("/image", formHandler.AttachImage)
		forms.POST("/submit", submitLimit, formHandler.Submit)
		forms.POST("/reset", formHandler.Reset)
	}

	if cfg.Server.StaticDir != "" {
		serveStatic(router, cfg.Server.StaticDir)
	}

	return router
}

// serveStatic serves a built front end. Unknown non-API paths fall back to
// index.html so page routes such as /inspections load the app.
func serveStatic(router *gin.Engine, dir string) {
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		slog.Warn("static directory has no index.html, front end disabled", "directory", dir)
		return
	}
	slog.Info("serving static files", "directory", dir)

	router.Static("/static", dir)
	router.StaticFile("/", index)
	router.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.File(index)
	})
}
