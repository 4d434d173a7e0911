package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"skyvela-monitor/internal/domain/repository"
	"skyvela-monitor/internal/usecase"
	"skyvela-monitor/pkg/logger"
)

// Checker runs the evaluate-and-maybe-book pass for a single request
type Checker interface {
	CheckNow(ctx context.Context, requestID uint) (*usecase.CheckResult, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

type checkRequest struct {
	RequestID uint `json:"requestId"`
}

// CheckHandler serves the manual check-now endpoint
type CheckHandler struct {
	checker Checker
	logger  logger.Logger
}

// NewCheckHandler creates a new check handler
func NewCheckHandler(checker Checker, logger logger.Logger) *CheckHandler {
	return &CheckHandler{checker: checker, logger: logger}
}

// ServeHTTP handles POST /api/v1/budget-requests/check
func (h *CheckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.RequestID == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "requestId is required"})
		return
	}

	result, err := h.checker.CheckNow(r.Context(), req.RequestID)
	if err != nil {
		h.logger.Error("Manual check failed", "requestID", req.RequestID, "error", err)
		if errors.Is(err, repository.ErrRequestNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
