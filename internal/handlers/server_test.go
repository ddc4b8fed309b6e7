package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vkoski/wikiviews/internal/config"
)

func newTestServer(t *testing.T, token string, upstream http.HandlerFunc) (*Server, string) {
	t.Helper()

	api := httptest.NewServer(upstream)
	t.Cleanup(api.Close)
	t.Setenv("PAGEVIEWS_BASE_URL", api.URL)

	outputDir := t.TempDir()
	cfg := &config.Config{
		Project:          "fi.wikipedia.org",
		Access:           "all-access",
		UserAgent:        "wikiviews-test/1.0 (test@example.com)",
		ReportLimit:      1000,
		ArchiveType:      "local",
		OutputDir:        outputDir,
		WebhookAuthToken: token,
		Targets:          map[string]config.Target{},
	}

	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("Expected no error creating server, got %v", err)
	}
	t.Cleanup(func() { server.Close() })

	return server, outputDir
}

func pageviewsUpstream(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, `{"items":[{"articles":[
		{"article":"Helsinki","views":250000,"rank":1},
		{"article":"Suomen_historia","views":120000,"rank":2}
	]}]}`)
}

func TestHealthHandler(t *testing.T) {
	server, _ := newTestServer(t, "", pageviewsUpstream)
	router := server.SetupRoutes()

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Expected JSON response, got %v", err)
	}
	if response["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", response["status"])
	}
}

func TestPreviewHandler(t *testing.T) {
	server, outputDir := newTestServer(t, "", pageviewsUpstream)
	router := server.SetupRoutes()

	req := httptest.NewRequest("GET", "/api/v1/reports/preview?year=2024&month=3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := w.Body.String()
	if !strings.Contains(body, "{| class=\"wikitable sortable\"") {
		t.Errorf("Expected wiki table markup, got:\n%s", body)
	}
	if !strings.Contains(body, "| 1 || [[Helsinki]]") {
		t.Errorf("Expected Helsinki at rank 1, got:\n%s", body)
	}

	// Preview must not write anything
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatalf("reading output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no files written by preview, got %v", entries)
	}
}

func TestMonthReportHandler(t *testing.T) {
	server, outputDir := newTestServer(t, "", pageviewsUpstream)
	router := server.SetupRoutes()

	req := httptest.NewRequest("POST", "/api/v1/reports/month", strings.NewReader(`{"year":2024,"month":3}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var response struct {
		Status string `json:"status"`
		Report struct {
			Path string `json:"path"`
			Rows int    `json:"rows"`
		} `json:"report"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Expected JSON response, got %v", err)
	}
	if response.Status != "success" {
		t.Errorf("Expected success, got %s", response.Status)
	}
	if response.Report.Path != "2024/kuukaudet/03_maaliskuu_2024.txt" {
		t.Errorf("Unexpected report path: %s", response.Report.Path)
	}
	if response.Report.Rows != 2 {
		t.Errorf("Expected 2 rows, got %d", response.Report.Rows)
	}

	if _, err := os.Stat(filepath.Join(outputDir, "2024", "kuukaudet", "03_maaliskuu_2024.txt")); err != nil {
		t.Errorf("Expected report file to exist: %v", err)
	}
}

func TestMonthReportHandlerAuth(t *testing.T) {
	server, _ := newTestServer(t, "secret-token", pageviewsUpstream)
	router := server.SetupRoutes()

	// Missing token
	req := httptest.NewRequest("POST", "/api/v1/reports/month", strings.NewReader(`{"year":2024,"month":3}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}

	// Wrong token
	req = httptest.NewRequest("POST", "/api/v1/reports/month", strings.NewReader(`{"year":2024,"month":3}`))
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 with wrong token, got %d", w.Code)
	}

	// Correct token
	req = httptest.NewRequest("POST", "/api/v1/reports/month", strings.NewReader(`{"year":2024,"month":3}`))
	req.Header.Set("Authorization", "Bearer secret-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with correct token, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMonthReportHandlerNoData(t *testing.T) {
	server, _ := newTestServer(t, "", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	router := server.SetupRoutes()

	req := httptest.NewRequest("POST", "/api/v1/reports/month", strings.NewReader(`{"year":2030,"month":1}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing data, got %d", w.Code)
	}
}

func TestMonthReportHandlerUpstreamFailure(t *testing.T) {
	server, _ := newTestServer(t, "", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	router := server.SetupRoutes()

	req := httptest.NewRequest("POST", "/api/v1/reports/month", strings.NewReader(`{"year":2024,"month":1}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected 502 for upstream failure, got %d", w.Code)
	}
}

func TestMonthReportHandlerBadPayload(t *testing.T) {
	server, _ := newTestServer(t, "", pageviewsUpstream)
	router := server.SetupRoutes()

	tests := []string{
		"not json",
		`{"year":2024}`,
		`{"month":3}`,
	}

	for _, body := range tests {
		req := httptest.NewRequest("POST", "/api/v1/reports/month", strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("payload %q: expected 400, got %d", body, w.Code)
		}
	}
}

func TestListReportsHandler(t *testing.T) {
	server, _ := newTestServer(t, "", pageviewsUpstream)
	router := server.SetupRoutes()

	// Generate one report first
	req := httptest.NewRequest("POST", "/api/v1/reports/month", strings.NewReader(`{"year":2024,"month":3}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 generating report, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/v1/reports?year=2024", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var response struct {
		Reports []string `json:"reports"`
		Count   int      `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Expected JSON response, got %v", err)
	}
	if response.Count != 1 || len(response.Reports) != 1 {
		t.Fatalf("Expected 1 report, got %+v", response)
	}
	if response.Reports[0] != "2024/kuukaudet/03_maaliskuu_2024.txt" {
		t.Errorf("Unexpected report path: %s", response.Reports[0])
	}
}

func TestYearReportHandler(t *testing.T) {
	server, _ := newTestServer(t, "", func(w http.ResponseWriter, r *http.Request) {
		// Only January and February have data
		if strings.Contains(r.URL.Path, "/2024/01/") || strings.Contains(r.URL.Path, "/2024/02/") {
			pageviewsUpstream(w, r)
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
	})
	router := server.SetupRoutes()

	req := httptest.NewRequest("POST", "/api/v1/reports/year", strings.NewReader(`{"year":2024}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var response struct {
		Report struct {
			Path string `json:"path"`
		} `json:"report"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Expected JSON response, got %v", err)
	}
	if response.Report.Path != "2024/koko_vuosi_2024.txt" {
		t.Errorf("Unexpected yearly report path: %s", response.Report.Path)
	}
}
