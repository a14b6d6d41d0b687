package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"food-dashboard/internal/config"
	"food-dashboard/internal/services"
)

const testCSV = `age,order_date,city,dish_name
Adult,2024-05-01,Lahore,Biryani
Teenager,2024-05-01,Lahore,Burger
Senior,bad-date,Karachi,Nihari
`

func testConfig() *config.Config {
	return &config.Config{
		Data: config.DataConfig{ChartColor: "#6DC8E4"},
		Security: config.SecurityConfig{
			EnableRateLimit: false,
			RateLimitRPS:    100,
			RateLimitBurst:  10,
			AllowedOrigins:  []string{"http://localhost:8084"},
			TrustedProxies:  []string{"127.0.0.1"},
		},
	}
}

// newTestHandler loads the sample CSV the same way main does.
func newTestHandler(t *testing.T) (http.Handler, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "foodpanda_analysis.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	dashboard := services.NewDashboard()
	if err := dashboard.LoadFromCSV(t.Context(), path); err != nil {
		t.Fatalf("LoadFromCSV() error = %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	return newHandler(testConfig(), dashboard, logger), path
}

// Integration tests for HTTP routes
func TestServer_Routes(t *testing.T) {
	handler, _ := newTestHandler(t)

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/api/age-groups", http.StatusOK, "application/json"},
		{"/api/orders-over-time", http.StatusOK, "application/json"},
		{"/api/top-cities", http.StatusOK, "application/json"},
		{"/api/charts/age-groups", http.StatusOK, "application/json"},
		{"/api/charts/orders-over-time", http.StatusOK, "application/json"},
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
		{"/sse/age-groups", http.StatusOK, "text/event-stream"},
		{"/sse/orders-over-time", http.StatusOK, "text/event-stream"},
		{"/sse/top-cities", http.StatusOK, "text/event-stream"},
		{"/sse/refresh-all", http.StatusOK, "text/event-stream"},
		{"/nope", http.StatusNotFound, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", tt.path, nil)

			handler.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}

			if w.Header().Get("X-Request-ID") == "" {
				t.Error("expected X-Request-ID header")
			}

			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

// Test error handling for invalid methods
func TestServer_ErrorHandling(t *testing.T) {
	handler, _ := newTestHandler(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"POST", "/api/top-cities", http.StatusMethodNotAllowed},
		{"PUT", "/", http.StatusMethodNotAllowed},
		{"DELETE", "/health", http.StatusMethodNotAllowed},
		{"PATCH", "/sse/refresh-all", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, tt.path, nil)

			handler.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

func TestServer_TopCitiesFromCSV(t *testing.T) {
	handler, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/top-cities", nil))

	var response struct {
		Data []struct {
			City  string `json:"city"`
			Count int    `json:"order_count"`
		} `json:"data"`
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}

	if !response.Success {
		t.Error("expected success=true in response")
	}
	if len(response.Data) != 2 {
		t.Fatalf("expected 2 cities, got %d", len(response.Data))
	}
	total := 0
	for _, c := range response.Data {
		total += c.Count
	}
	if total != 3 {
		t.Errorf("city counts should sum to 3, got %d", total)
	}
}

// The page is recomputed from the file on every render.
func TestServer_PicksUpFileChanges(t *testing.T) {
	handler, path := newTestHandler(t)

	if err := os.WriteFile(path, []byte(testCSV+"Adult,2024-05-02,Multan,Karahi\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "<td>Multan</td>") {
		t.Error("dashboard should include the city added after startup")
	}
}

func TestServer_SourceRemoved(t *testing.T) {
	handler, path := newTestHandler(t)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

// Test dashboard template rendering
func TestDashboardPage(t *testing.T) {
	handler, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	body := w.Body.String()
	expectedComponents := []string{
		"Food Delivery Orders Dashboard",
		"Age Group Distribution",
		"Frequency of Orders Over Time",
		"Top Cities by Number of Orders",
		"FoodPanda Review Dataset",
	}

	for _, component := range expectedComponents {
		if !strings.Contains(body, component) {
			t.Errorf("dashboard should contain '%s'", component)
		}
	}

	if csp := w.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "cdn.jsdelivr.net") {
		t.Errorf("CSP should allow the chart CDN, got %q", csp)
	}
}
