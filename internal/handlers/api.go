package handlers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"food-dashboard/internal/charts"
	"food-dashboard/internal/errors"
	"food-dashboard/internal/models"
	"food-dashboard/internal/observability"
	"food-dashboard/internal/services"
)

const noCache = "no-cache"

// Dashboard is the view source the handlers render from.
type Dashboard interface {
	View(ctx context.Context) (models.DashboardView, error)
	AgeGroups(ctx context.Context) ([]models.AgeGroupCount, error)
	OrdersOverTime(ctx context.Context) ([]models.DailyOrders, error)
	TopCities(ctx context.Context) ([]models.CityOrders, error)
	Stats() map[string]any
}

type APIHandlers struct {
	dashboard  Dashboard
	logger     *slog.Logger
	chartColor string
}

func NewAPIHandlers(dashboard Dashboard, logger *slog.Logger, chartColor string) *APIHandlers {
	return &APIHandlers{
		dashboard:  dashboard,
		logger:     logger,
		chartColor: chartColor,
	}
}

func (h *APIHandlers) HandleAgeGroups(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboard.AgeGroups(r.Context())
	if err != nil {
		writeViewError(w, r, h.logger, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": noCache})
}

func (h *APIHandlers) HandleOrdersOverTime(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboard.OrdersOverTime(r.Context())
	if err != nil {
		writeViewError(w, r, h.logger, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": noCache})
}

func (h *APIHandlers) HandleTopCities(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboard.TopCities(r.Context())
	if err != nil {
		writeViewError(w, r, h.logger, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": noCache})
}

func (h *APIHandlers) HandleAgeChart(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboard.AgeGroups(r.Context())
	if err != nil {
		writeViewError(w, r, h.logger, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, charts.AgeBarChart(data, h.chartColor), map[string]string{"Cache-Control": noCache})
}

func (h *APIHandlers) HandleOrdersChart(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboard.OrdersOverTime(r.Context())
	if err != nil {
		writeViewError(w, r, h.logger, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, charts.OrdersLineChart(data, h.chartColor), map[string]string{"Cache-Control": noCache})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.dashboard.Stats())
}

// writeViewError maps a failed view computation onto the error envelope.
func writeViewError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	requestID := observability.GetRequestID(r.Context())

	var appErr *errors.AppError
	switch {
	case stderrors.Is(err, services.ErrColumnNotFound):
		appErr = errors.InternalWrap(err, "order table is missing a required column")
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		appErr = errors.Unavailable(err, "request cancelled while reading order data")
	default:
		appErr = errors.Unavailable(err, "order data unavailable")
	}

	errors.WriteError(w, logger, appErr, requestID)
}
