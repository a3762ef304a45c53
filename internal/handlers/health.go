package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"agent-relay/internal/contextutil"
)

// Health statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// ModelCatalog reports which models the completion service serves.
type ModelCatalog interface {
	HasModel(ctx context.Context, modelName string) (bool, error)
}

// Pinger verifies a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	catalog            ModelCatalog
	journal            Pinger
	modelName          string
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. journal may be nil when the
// decision journal is disabled.
func NewHealthHandler(catalog ModelCatalog, journal Pinger, modelName string) *HealthHandler {
	return &HealthHandler{
		catalog:            catalog,
		journal:            journal,
		modelName:          modelName,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// Returns 200 OK if healthy or degraded (the configured model is not listed),
// 503 Service Unavailable if the completion service or the journal is unreachable.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string
	status := StatusHealthy

	switch h.checkModel(checkCtx, logger) {
	case checkOK:
		checks["llm"] = "ok"
	case checkMissing:
		checks["llm"] = "model_not_listed"
		issues = append(issues, "llm_model_not_listed")
		status = StatusDegraded
	default:
		checks["llm"] = "error"
		issues = append(issues, "llm_unavailable")
		status = StatusUnhealthy
	}

	if h.journal != nil {
		if err := h.journal.Ping(checkCtx); err != nil {
			logger.WarnContext(ctx, "journal health check failed", "error", err)
			checks["journal"] = "error"
			issues = append(issues, "journal_unavailable")
			status = StatusUnhealthy
		} else {
			checks["journal"] = "ok"
		}
	}

	httpStatus := http.StatusOK
	if status == StatusUnhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, r, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	})
}

type checkResult int

const (
	checkOK checkResult = iota
	checkMissing
	checkFailed
)

// checkModel checks if the completion service is reachable and serves the configured model.
func (h *HealthHandler) checkModel(ctx context.Context, logger *slog.Logger) checkResult {
	ok, err := h.catalog.HasModel(ctx, h.modelName)
	if err != nil {
		logger.WarnContext(ctx, "llm health check failed", "error", err)
		return checkFailed
	}
	if !ok {
		logger.WarnContext(ctx, "configured model is not listed", "model", h.modelName)
		return checkMissing
	}
	return checkOK
}
