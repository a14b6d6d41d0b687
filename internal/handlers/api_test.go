package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"food-dashboard/internal/models"
	"food-dashboard/internal/services"
)

const testColor = "#6DC8E4"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func createTestDashboard() *services.Dashboard {
	d := services.NewDashboard()
	table, err := services.TableFromRecords(
		[]string{models.ColumnAge, models.ColumnOrderDate, models.ColumnCity},
		[][]string{
			{"Adult", "2024-05-01", "Lahore"},
			{"Teenager", "2024-05-01", "Lahore"},
			{"Senior", "bad-date", "Karachi"},
		},
	)
	if err != nil {
		panic(err)
	}
	d.SetTable(table)
	return d
}

// failingDashboard reports the same error from every view.
type failingDashboard struct {
	err error
}

func (f failingDashboard) View(context.Context) (models.DashboardView, error) {
	return models.DashboardView{}, f.err
}

func (f failingDashboard) AgeGroups(context.Context) ([]models.AgeGroupCount, error) {
	return nil, f.err
}

func (f failingDashboard) OrdersOverTime(context.Context) ([]models.DailyOrders, error) {
	return nil, f.err
}

func (f failingDashboard) TopCities(context.Context) ([]models.CityOrders, error) {
	return nil, f.err
}

func (f failingDashboard) Stats() map[string]any {
	return map[string]any{}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	return env
}

func TestNewAPIHandlers(t *testing.T) {
	dashboard := createTestDashboard()
	handlers := NewAPIHandlers(dashboard, testLogger(), testColor)

	if handlers == nil {
		t.Fatal("NewAPIHandlers() returned nil")
	}
	if handlers.dashboard != Dashboard(dashboard) {
		t.Error("NewAPIHandlers() should set dashboard field")
	}
	if handlers.chartColor != testColor {
		t.Errorf("chartColor = %q, want %q", handlers.chartColor, testColor)
	}
}

func TestAPIHandlers_HandleAgeGroups(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger(), testColor)

	w := httptest.NewRecorder()
	handlers.HandleAgeGroups(w, httptest.NewRequest(http.MethodGet, "/api/age-groups", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected content-type 'application/json', got %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("expected cache-control 'no-cache', got %q", cc)
	}

	env := decodeEnvelope(t, w)
	if !env.Success {
		t.Error("expected success=true in response")
	}

	var groups []models.AgeGroupCount
	if err := json.Unmarshal(env.Data, &groups); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	want := []string{"Adult", "Teenager", "Senior"}
	if len(groups) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(groups))
	}
	for i, g := range groups {
		if g.AgeGroup != want[i] || g.Count != 1 {
			t.Errorf("group %d = %+v, want %s with count 1", i, g, want[i])
		}
	}
}

func TestAPIHandlers_HandleOrdersOverTime(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger(), testColor)

	w := httptest.NewRecorder()
	handlers.HandleOrdersOverTime(w, httptest.NewRequest(http.MethodGet, "/api/orders-over-time", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var orders []models.DailyOrders
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &orders); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if len(orders) != 1 || orders[0].Count != 2 {
		t.Errorf("orders = %+v, want a single date with 2 orders", orders)
	}
	if got := orders[0].Date.Format("2006-01-02"); got != "2024-05-01" {
		t.Errorf("date = %s, want 2024-05-01", got)
	}
}

func TestAPIHandlers_HandleTopCities(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger(), testColor)

	w := httptest.NewRecorder()
	handlers.HandleTopCities(w, httptest.NewRequest(http.MethodGet, "/api/top-cities", nil))

	var cities []models.CityOrders
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &cities); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if len(cities) != 2 {
		t.Fatalf("expected 2 cities, got %d", len(cities))
	}
	if cities[0].City != "Lahore" || cities[0].Count != 2 {
		t.Errorf("first city = %+v, want Lahore with 2 orders", cities[0])
	}
}

func TestAPIHandlers_Charts(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger(), testColor)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		mark    string
	}{
		{"age chart", handlers.HandleAgeChart, "bar"},
		{"orders chart", handlers.HandleOrdersChart, "line"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler(w, httptest.NewRequest(http.MethodGet, "/", nil))

			var spec struct {
				Mark struct {
					Type  string `json:"type"`
					Color string `json:"color"`
				} `json:"mark"`
			}
			if err := json.Unmarshal(decodeEnvelope(t, w).Data, &spec); err != nil {
				t.Fatalf("invalid spec: %v", err)
			}
			if spec.Mark.Type != tt.mark {
				t.Errorf("mark = %q, want %q", spec.Mark.Type, tt.mark)
			}
			if spec.Mark.Color != testColor {
				t.Errorf("color = %q, want %q", spec.Mark.Color, testColor)
			}
		})
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger(), testColor)

	w := httptest.NewRecorder()
	handlers.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var health map[string]string
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &health); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if health["status"] != "healthy" {
		t.Errorf("status = %q, want healthy", health["status"])
	}
	if health["timestamp"] == "" {
		t.Error("health response should include timestamp")
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger(), testColor)

	w := httptest.NewRecorder()
	handlers.HandleStats(w, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	var stats map[string]any
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &stats); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if stats["record_count"] != float64(3) {
		t.Errorf("record_count = %v, want 3", stats["record_count"])
	}
}

func TestAPIHandlers_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"source unavailable", errors.New("stat csv: no such file"), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"missing column", fmt.Errorf("age distribution: %w", services.ErrColumnNotFound), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers := NewAPIHandlers(failingDashboard{err: tt.err}, testLogger(), testColor)

			w := httptest.NewRecorder()
			handlers.HandleTopCities(w, httptest.NewRequest(http.MethodGet, "/api/top-cities", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			env := decodeEnvelope(t, w)
			if env.Success {
				t.Error("expected success=false")
			}
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
		})
	}
}
