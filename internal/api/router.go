package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Raunaq22/ChessMate-sub001/internal/api/handler"
	"github.com/Raunaq22/ChessMate-sub001/internal/api/middleware"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/analysis"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/auth"
	"github.com/Raunaq22/ChessMate-sub001/internal/storage"
	"github.com/Raunaq22/ChessMate-sub001/internal/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	AuthService     *auth.Service
	Storage         storage.Storage
	AnalysisService *analysis.Service
	WSHandler       *ws.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	recordHandler := handler.NewRecordHandler(cfg.Storage)
	analysisHandler := handler.NewAnalysisHandler(cfg.AnalysisService)

	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Record routes (all require auth)
	records := api.PathPrefix("/records").Subrouter()
	records.Use(authMiddleware)
	records.HandleFunc("", recordHandler.List).Methods(http.MethodGet)
	records.HandleFunc("/{session_id}", recordHandler.Get).Methods(http.MethodGet)

	// Analysis proxy (requires auth)
	analysisRoutes := api.PathPrefix("/analysis").Subrouter()
	analysisRoutes.Use(authMiddleware)
	analysisRoutes.HandleFunc("", analysisHandler.Analyze).Methods(http.MethodPost)

	// Live game transport. The websocket handler verifies the
	// credential itself before upgrading.
	r.Handle("/ws", cfg.WSHandler)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
