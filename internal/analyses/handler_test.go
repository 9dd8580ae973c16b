package analyses_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"insight-backend/internal/bootstrap"
	"insight-backend/internal/shared/config"
)

func newTestApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LocalStoreDir:   t.TempDir(),
		Env:             "dev",
		ObjectStoreType: "local",
		AIUseMock:       true,
		AITimeoutMs:     30000,
		AIMaxConcurrent: 1,
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func doRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestAnalysesCreateReturnsQueuedJob(t *testing.T) {
	app := newTestApp(t)

	resp := postJSON(app.Router, "/api/v1/analyses", `{"topic":"квантовая механика"}`)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		AnalysisID string `json:"analysisId"`
		Status     string `json:"status"`
		Progress   int    `json:"progress"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.AnalysisID == "" {
		t.Fatal("expected analysisId, got empty")
	}
	if created.Status != "queued" {
		t.Fatalf("status = %q, want queued", created.Status)
	}
	if created.Progress != 0 {
		t.Fatalf("progress = %d, want 0", created.Progress)
	}

	respGet := doRequest(app.Router, http.MethodGet, "/api/v1/analyses/"+created.AnalysisID)
	if respGet.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", respGet.Code)
	}
	var fetched struct {
		AnalysisID string `json:"analysisId"`
		Status     string `json:"status"`
	}
	if err := json.NewDecoder(respGet.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if fetched.AnalysisID != created.AnalysisID {
		t.Fatalf("fetched id %q != created id %q", fetched.AnalysisID, created.AnalysisID)
	}
}

func TestAnalysesCancelQueuedJob(t *testing.T) {
	app := newTestApp(t)

	// The first job occupies the single slot; the second stays pending.
	first := postJSON(app.Router, "/api/v1/analyses", `{"topic":"первая тема анализа"}`)
	if first.Code != http.StatusAccepted {
		t.Fatalf("first create: status %d", first.Code)
	}
	second := postJSON(app.Router, "/api/v1/analyses", `{"topic":"вторая тема анализа"}`)
	if second.Code != http.StatusAccepted {
		t.Fatalf("second create: status %d", second.Code)
	}

	var created struct {
		AnalysisID string `json:"analysisId"`
	}
	if err := json.NewDecoder(second.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	respCancel := doRequest(app.Router, http.MethodDelete, "/api/v1/analyses/"+created.AnalysisID)
	if respCancel.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", respCancel.Code, respCancel.Body.String())
	}
	var canceled struct {
		AnalysisID string `json:"analysisId"`
		Status     string `json:"status"`
	}
	if err := json.NewDecoder(respCancel.Body).Decode(&canceled); err != nil {
		t.Fatalf("decode cancel response: %v", err)
	}
	if canceled.Status != "canceled" {
		t.Fatalf("status = %q, want canceled", canceled.Status)
	}

	// Canceling again conflicts.
	respAgain := doRequest(app.Router, http.MethodDelete, "/api/v1/analyses/"+created.AnalysisID)
	if respAgain.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", respAgain.Code)
	}
}

func TestAnalysesCancelUnknownJob(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(app.Router, http.MethodDelete, "/api/v1/analyses/no-such-id")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestAnalysesListRequiresLogin(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(app.Router, http.MethodGet, "/api/v1/analyses")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for guest history, got %d", resp.Code)
	}
}

func TestAnalysesCreateRejectsMalformedBody(t *testing.T) {
	app := newTestApp(t)

	resp := postJSON(app.Router, "/api/v1/analyses", `{"topic":`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestAnalyzeUnknownDocument(t *testing.T) {
	app := newTestApp(t)

	resp := postJSON(app.Router, "/api/v1/documents/no-such-doc/analyze", `{"language":"ru"}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", resp.Code, resp.Body.String())
	}
}
