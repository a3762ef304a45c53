package handlers

import (
	"net/http"
	"strconv"

	"agent-relay/internal/contextutil"
	"agent-relay/internal/storage"
)

const (
	defaultStatsLimit = 20
	maxStatsLimit     = 100
)

// StatsHandler serves a summary of the decision journal.
type StatsHandler struct {
	store storage.DecisionStore
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(store storage.DecisionStore) *StatsHandler {
	return &StatsHandler{store: store}
}

// StatsResponse represents the journal summary.
type StatsResponse struct {
	Outcomes map[string]int           `json:"outcomes"`
	Recent   []storage.DecisionRecord `json:"recent"`
}

// ServeHTTP handles HTTP requests for journal statistics.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := defaultStatsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxStatsLimit)
	}

	outcomes, err := h.store.CountByOutcome(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to count decisions", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to read journal")
		return
	}

	recent, err := h.store.ListRecent(ctx, limit)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list decisions", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to read journal")
		return
	}

	writeJSON(w, r, http.StatusOK, StatsResponse{
		Outcomes: outcomes,
		Recent:   recent,
	})
}
