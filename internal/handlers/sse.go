package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"food-dashboard/internal/charts"
	"food-dashboard/internal/models"
	"food-dashboard/internal/services"
	"food-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	dashboard  Dashboard
	logger     *slog.Logger
	chartColor string
}

func NewSSEHandlers(dashboard Dashboard, logger *slog.Logger, chartColor string) *SSEHandlers {
	return &SSEHandlers{
		dashboard:  dashboard,
		logger:     logger,
		chartColor: chartColor,
	}
}

func renderFragment(ctx context.Context, c templ.Component) (string, error) {
	var buf strings.Builder
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (h *SSEHandlers) patchSignals(sse *datastar.ServerSentEventGenerator, signals map[string]any) {
	jsonData, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal signals", "error", err)
		return
	}
	if err := sse.PatchSignals(jsonData); err != nil {
		h.logger.Warn("patch signals", "error", err)
	}
}

func (h *SSEHandlers) patchCities(ctx context.Context, sse *datastar.ServerSentEventGenerator, cities []models.CityOrders) {
	html, err := renderFragment(ctx, templates.CitiesTable(cities, services.MaxCount(cities)))
	if err != nil {
		h.logger.Error("render cities table", "error", err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch cities table", "error", err)
	}
}

func (h *SSEHandlers) HandleAgeGroups(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboard.AgeGroups(r.Context())
	if err != nil {
		writeViewError(w, r, h.logger, err)
		return
	}

	sse := datastar.NewSSE(w, r)
	h.patchSignals(sse, map[string]any{
		"ageChart": charts.AgeBarChart(data, h.chartColor),
	})
}

func (h *SSEHandlers) HandleOrdersOverTime(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboard.OrdersOverTime(r.Context())
	if err != nil {
		writeViewError(w, r, h.logger, err)
		return
	}

	sse := datastar.NewSSE(w, r)
	h.patchSignals(sse, map[string]any{
		"ordersChart": charts.OrdersLineChart(data, h.chartColor),
	})
}

func (h *SSEHandlers) HandleTopCities(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboard.TopCities(r.Context())
	if err != nil {
		writeViewError(w, r, h.logger, err)
		return
	}

	sse := datastar.NewSSE(w, r)
	h.patchCities(r.Context(), sse, data)
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	view, err := h.dashboard.View(r.Context())
	if err != nil {
		writeViewError(w, r, h.logger, err)
		return
	}

	sse := datastar.NewSSE(w, r)
	h.patchCities(r.Context(), sse, view.TopCities)
	h.patchSignals(sse, templates.ChartSignals(view, h.chartColor))
}
