package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/paperval/paperval/internal/history"
	apperrors "github.com/paperval/paperval/internal/pkg/errors"
)

// HistoryHandler serves recorded evaluation runs.
type HistoryHandler struct {
	runs *history.Log
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(runs *history.Log) *HistoryHandler {
	return &HistoryHandler{runs: runs}
}

// RegisterRoutes registers history routes.
func (h *HistoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/history", h.handleList)
}

// handleList handles GET /v1/history. Supports ?limit=N and ?since=RFC3339.
func (h *HistoryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	var runs []history.RunRecord

	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		since, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			apperrors.WriteHTTP(w, apperrors.Wrap(apperrors.CodeInvalidRequest, "invalid since parameter", err))
			return
		}
		runs = h.runs.Since(since)
	} else {
		limit := 50
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			n, err := strconv.Atoi(limitStr)
			if err != nil || n < 0 {
				apperrors.WriteHTTP(w, apperrors.New(apperrors.CodeInvalidRequest, "invalid limit parameter"))
				return
			}
			limit = n
		}
		runs = h.runs.Recent(limit)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}
