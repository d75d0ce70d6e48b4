package handler

import (
	"net/http"

	"github.com/AnTengye/qualitytrack/pkg/logger"
	"github.com/AnTengye/qualitytrack/service"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardHandler struct {
	source service.DashboardSource
}

func NewDashboardHandler(source service.DashboardSource) *DashboardHandler {
	return &DashboardHandler{source: source}
}

// Get returns the dashboard metrics and chart series
func (h *DashboardHandler) Get(c *gin.Context) {
	d, err := h.source.Dashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load dashboard: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, d)
}

// Export downloads the dashboard as a spreadsheet
func (h *DashboardHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	d, err := h.source.Dashboard(ctx)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load dashboard: " + err.Error()})
		return
	}

	f, err := service.ExportDashboard(d)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export: " + err.Error()})
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", `attachment; filename="quality-dashboard.xlsx"`)
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if _, err := f.WriteTo(c.Writer); err != nil {
		logger.Error(ctx, "failed to write dashboard export", "error", err)
	}
}
