package handlers

import (
	"encoding/json"
	"net/http"

	"agent-relay/internal/agent"
	"agent-relay/internal/contextutil"
	"agent-relay/internal/service"
)

// maxDecideBodyBytes bounds the size of an inbound history.
const maxDecideBodyBytes = 8 << 20

// DecideHandler handles HTTP requests for the next agent action.
type DecideHandler struct {
	decisionService service.DecisionService
}

// NewDecideHandler creates a new DecideHandler.
func NewDecideHandler(decisionService service.DecisionService) *DecideHandler {
	return &DecideHandler{
		decisionService: decisionService,
	}
}

// DecideRequest represents the HTTP request payload for a decision.
type DecideRequest struct {
	History []agent.Message `json:"history"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles HTTP requests for a decision.
//
// Model and transport failures are reported inside a 200 response as a finish
// decision. Only a body that cannot be decoded is rejected.
func (h *DecideHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req DecideRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDecideBodyBytes)).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	decision := h.decisionService.Decide(ctx, req.History)

	writeJSON(w, r, http.StatusOK, decision)
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctx := r.Context()
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
