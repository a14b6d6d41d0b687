package server

import (
	"log/slog"
	"net/http"

	"food-dashboard/internal/handlers"
)

type Server struct {
	mux          *http.ServeMux
	logger       *slog.Logger
	apiHandlers  *handlers.APIHandlers
	sseHandlers  *handlers.SSEHandlers
	pageHandlers *handlers.PageHandlers
}

func NewServer(dashboard handlers.Dashboard, logger *slog.Logger, chartColor string) *Server {
	s := &Server{
		mux:          http.NewServeMux(),
		logger:       logger,
		apiHandlers:  handlers.NewAPIHandlers(dashboard, logger, chartColor),
		sseHandlers:  handlers.NewSSEHandlers(dashboard, logger, chartColor),
		pageHandlers: handlers.NewPageHandlers(dashboard, logger, chartColor),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Dashboard routes
	s.mux.HandleFunc("GET /", s.pageHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/age-groups", s.apiHandlers.HandleAgeGroups)
	s.mux.HandleFunc("GET /api/orders-over-time", s.apiHandlers.HandleOrdersOverTime)
	s.mux.HandleFunc("GET /api/top-cities", s.apiHandlers.HandleTopCities)
	s.mux.HandleFunc("GET /api/charts/age-groups", s.apiHandlers.HandleAgeChart)
	s.mux.HandleFunc("GET /api/charts/orders-over-time", s.apiHandlers.HandleOrdersChart)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/age-groups", s.sseHandlers.HandleAgeGroups)
	s.mux.HandleFunc("GET /sse/orders-over-time", s.sseHandlers.HandleOrdersOverTime)
	s.mux.HandleFunc("GET /sse/top-cities", s.sseHandlers.HandleTopCities)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
