package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"food-dashboard/internal/errors"
	"food-dashboard/internal/observability"
	"food-dashboard/internal/ui/templates"
)

const renderTimeout = 10 * time.Second

type PageHandlers struct {
	dashboard  Dashboard
	logger     *slog.Logger
	chartColor string
}

func NewPageHandlers(dashboard Dashboard, logger *slog.Logger, chartColor string) *PageHandlers {
	return &PageHandlers{
		dashboard:  dashboard,
		logger:     logger,
		chartColor: chartColor,
	}
}

// HandleDashboard recomputes every view and renders the whole page.
func (h *PageHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		errors.WriteError(w, h.logger, errors.NotFound("page not found"), observability.GetRequestID(r.Context()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	view, err := h.dashboard.View(ctx)
	if err != nil {
		writeViewError(w, r, h.logger, err)
		return
	}

	var page bytes.Buffer
	if err := templates.Dashboard(view, h.chartColor).Render(ctx, &page); err != nil {
		errors.WriteError(w, h.logger, errors.RenderFailed(err, "render dashboard"), observability.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Cache-Control", noCache)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page.WriteTo(w)
}
