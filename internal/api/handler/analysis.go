package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Raunaq22/ChessMate-sub001/internal/api/apierr"
	"github.com/Raunaq22/ChessMate-sub001/internal/api/response"
	"github.com/Raunaq22/ChessMate-sub001/internal/services/analysis"
)

// AnalysisHandler proxies position analysis requests
type AnalysisHandler struct {
	analysis *analysis.Service
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(svc *analysis.Service) *AnalysisHandler {
	return &AnalysisHandler{analysis: svc}
}

// Analyze handles POST /api/v1/analysis
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analysis.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, apierr.NewInvalidRequestError("malformed analysis request"))
		return
	}
	if req.Position == "" && len(req.Moves) == 0 && req.SessionID == "" {
		WriteError(w, apierr.NewInvalidRequestError("nothing to analyze"))
		return
	}

	result, err := h.analysis.Analyze(r.Context(), req)
	if err != nil {
		if errors.Is(err, analysis.ErrUnavailable) {
			WriteError(w, apierr.NewUnavailableError("analysis is not configured"))
			return
		}
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}
