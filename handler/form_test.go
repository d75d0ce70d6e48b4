package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AnTengye/qualitytrack/service"
	"github.com/gin-gonic/gin"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func createForm(t *testing.T, env *testEnv, kind string) string {
	t.Helper()
	w, response := env.do(t, "POST", "/api/forms", gin.H{"kind": kind})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	return response["id"].(string)
}

func setField(t *testing.T, env *testEnv, id, name string, value any) {
	t.Helper()
	w, _ := env.do(t, "PUT", "/api/forms/"+id+"/fields/"+name, gin.H{"value": value})
	if w.Code != http.StatusOK {
		t.Fatalf("Setting %s: expected status 200, got %d: %s", name, w.Code, w.Body.String())
	}
}

func uploadImage(t *testing.T, env *testEnv, id, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest("POST", "/api/forms/"+id+"/image", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestSchemas(t *testing.T) {
	env := setupTestRouter(t, testConfig())

	w, response := env.do(t, "GET", "/api/schemas", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if schemas := response["schemas"].([]any); len(schemas) != 4 {
		t.Errorf("Expected 4 schemas, got %d", len(schemas))
	}

	tests := []struct {
		name           string
		kind           string
		expectedStatus int
		expectedTitle  string
	}{
		{"kind name", "rework", http.StatusOK, "Rework Tracking"},
		{"page slug", "customer-satisfaction", http.StatusOK, "Customer Satisfaction Survey"},
		{"unknown", "permits", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := env.do(t, "GET", "/api/schemas/"+tt.kind, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedTitle != "" && response["title"] != tt.expectedTitle {
				t.Errorf("Expected title %q, got %v", tt.expectedTitle, response["title"])
			}
		})
	}
}

func TestCreateForm(t *testing.T) {
	env := setupTestRouter(t, testConfig())

	tests := []struct {
		name           string
		body           any
		expectedStatus int
	}{
		{"inspection", gin.H{"kind": "inspection"}, http.StatusCreated},
		{"slug", gin.H{"kind": "audits"}, http.StatusCreated},
		{"unknown kind", gin.H{"kind": "permit"}, http.StatusBadRequest},
		{"missing kind", gin.H{}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := env.do(t, "POST", "/api/forms", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if w.Code == http.StatusCreated && response["state"] != string(service.StateIdle) {
				t.Errorf("Expected idle state, got %v", response["state"])
			}
		})
	}
}

func TestFormNotFound(t *testing.T) {
	env := setupTestRouter(t, testConfig())

	for _, path := range []string{"/api/forms/missing", "/api/forms/missing/submit", "/api/forms/missing/reset"} {
		method := "POST"
		if path == "/api/forms/missing" {
			method = "GET"
		}
		w, _ := env.do(t, method, path, nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected status 404, got %d", method, path, w.Code)
		}
	}
}

func TestSetField(t *testing.T) {
	env := setupTestRouter(t, testConfig())
	id := createForm(t, env, "audit")

	w, response := env.do(t, "PUT", "/api/forms/"+id+"/fields/signOff", gin.H{"value": true})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	values := response["values"].(map[string]any)
	if values["signOff"] != true {
		t.Errorf("Expected signOff true, got %v", values["signOff"])
	}

	w, _ = env.do(t, "PUT", "/api/forms/"+id+"/fields/budget", gin.H{"value": "1"})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown field, got %d", w.Code)
	}

	w, _ = env.do(t, "PUT", "/api/forms/"+id+"/fields/signOff", gin.H{"value": "maybe"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad value, got %d", w.Code)
	}
}

func TestSubmitAuditRejected(t *testing.T) {
	env := setupTestRouter(t, testConfig())
	id := createForm(t, env, "audit")

	setField(t, env, id, "projectName", "A")
	setField(t, env, id, "findings", "short")

	w, response := env.do(t, "POST", "/api/forms/"+id+"/submit", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d", w.Code)
	}
	errs := response["errors"].(map[string]any)
	if errs["projectName"] != "Project name must be at least 2 characters." {
		t.Errorf("Unexpected projectName error: %v", errs["projectName"])
	}
	if errs["findings"] != "Findings must be at least 10 characters." {
		t.Errorf("Unexpected findings error: %v", errs["findings"])
	}
}

func TestSubmitWaitResetsForm(t *testing.T) {
	env := setupTestRouter(t, testConfig())
	id := createForm(t, env, "inspection")

	setField(t, env, id, "projectName", "Site A")
	setField(t, env, id, "materialUsed", "Concrete")

	w, response := env.do(t, "POST", "/api/forms/"+id+"/submit?wait=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	receipt := response["receipt"].(map[string]any)
	if receipt["id"] == "" || receipt["kind"] != "inspection" {
		t.Errorf("Unexpected receipt: %v", receipt)
	}

	_, view := env.do(t, "GET", "/api/forms/"+id, nil)
	values := view["values"].(map[string]any)
	if values["projectName"] != "" || values["workmanshipQuality"] != "good" {
		t.Errorf("Expected form reset to defaults, got %v", values)
	}
}

func TestSubmitAsyncSingleFlight(t *testing.T) {
	cfg := testConfig()
	cfg.Submission.DelayMS = 200
	env := setupTestRouter(t, cfg)
	id := createForm(t, env, "inspection")

	setField(t, env, id, "projectName", "Site A")
	setField(t, env, id, "materialUsed", "Concrete")

	w, response := env.do(t, "POST", "/api/forms/"+id+"/submit", nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d", w.Code)
	}
	if response["state"] != string(service.StateSubmitting) {
		t.Errorf("Expected submitting state, got %v", response["state"])
	}

	w, _ = env.do(t, "POST", "/api/forms/"+id+"/submit", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for second submit, got %d", w.Code)
	}
	w, _ = env.do(t, "DELETE", "/api/forms/"+id, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for delete in flight, got %d", w.Code)
	}
	w, _ = env.do(t, "POST", "/api/forms/"+id+"/reset", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for reset in flight, got %d", w.Code)
	}

	waitForState(t, env, id, service.StateIdle)
}

func TestResetAndDelete(t *testing.T) {
	env := setupTestRouter(t, testConfig())
	id := createForm(t, env, "rework")

	setField(t, env, id, "projectName", "Tower")
	w, response := env.do(t, "POST", "/api/forms/"+id+"/reset", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if response["values"].(map[string]any)["projectName"] != "" {
		t.Error("Expected projectName to be reset")
	}

	w, _ = env.do(t, "DELETE", "/api/forms/"+id, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	w, _ = env.do(t, "GET", "/api/forms/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", w.Code)
	}
}

func TestAttachImage(t *testing.T) {
	env := setupTestRouter(t, testConfig())
	id := createForm(t, env, "inspection")

	w := uploadImage(t, env, id, "crack.png", pngHeader)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "data:image/png;base64,") {
		t.Error("Expected data URI preview in response")
	}

	w = uploadImage(t, env, id, "empty.png", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422 for unreadable image, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), service.PreviewErrorMessage) {
		t.Error("Expected preview error message in response")
	}

	survey := createForm(t, env, "satisfaction")
	w = uploadImage(t, env, survey, "x.png", pngHeader)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for form without image, got %d", w.Code)
	}
}

func TestAttachImageMissingFile(t *testing.T) {
	env := setupTestRouter(t, testConfig())
	id := createForm(t, env, "audit")

	w, response := env.do(t, "POST", "/api/forms/"+id+"/image", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if response["error"] != "No image provided" {
		t.Errorf("Unexpected error: %v", response["error"])
	}
}

func TestValidateRecord(t *testing.T) {
	env := setupTestRouter(t, testConfig())

	valid := gin.H{
		"projectName":   "Tower",
		"reworkType":    "designChanges",
		"reworkReason":  "Client moved the stairwell",
		"materialUsage": "Drywall",
		"manHours":      "16",
		"costImpact":    "2400.50",
		"projectPhase":  "Fit-out",
	}

	w, response := env.do(t, "POST", "/api/records/rework/validate", valid)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if response["valid"] != true {
		t.Error("Expected record to be valid")
	}

	valid["costImpact"] = "a lot"
	w, response = env.do(t, "POST", "/api/records/reworks/validate", valid)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d", w.Code)
	}
	errs := response["errors"].(map[string]any)
	if errs["costImpact"] != "Cost impact must be a valid number." {
		t.Errorf("Unexpected costImpact error: %v", errs["costImpact"])
	}

	w, _ = env.do(t, "POST", "/api/records/permit/validate", valid)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown kind, got %d", w.Code)
	}
}
