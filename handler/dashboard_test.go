package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AnTengye/qualitytrack/model"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

type failingSource struct{}

func (failingSource) Dashboard(context.Context) (*model.Dashboard, error) {
	return nil, errors.New("reporting service down")
}

func ginTestContext(w *httptest.ResponseRecorder, req *http.Request) (*gin.Context, *gin.Engine) {
	c, engine := gin.CreateTestContext(w)
	c.Request = req
	return c, engine
}

func TestDashboardGet(t *testing.T) {
	env := setupTestRouter(t, testConfig())

	req := httptest.NewRequest("GET", "/api/dashboard", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var d model.Dashboard
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if d.Metrics.Inspections != 150 {
		t.Errorf("Expected 150 inspections, got %d", d.Metrics.Inspections)
	}
	if len(d.Activity) != 6 || d.Activity[0].Month != "Jan" {
		t.Errorf("Unexpected activity series: %+v", d.Activity)
	}
}

func TestDashboardGetFailure(t *testing.T) {
	handler := NewDashboardHandler(failingSource{})

	w := httptest.NewRecorder()
	c, _ := ginTestContext(w, httptest.NewRequest("GET", "/api/dashboard", nil))
	handler.Get(c)

	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", w.Code)
	}
}

func TestDashboardExport(t *testing.T) {
	env := setupTestRouter(t, testConfig())

	req := httptest.NewRequest("GET", "/api/dashboard/export", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Expected xlsx content type, got %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd == "" {
		t.Error("Expected Content-Disposition header")
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 3 {
		t.Errorf("Expected 3 sheets, got %v", sheets)
	}
}
