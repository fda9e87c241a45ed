package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"pdfqa/internal/contextutil"
	"pdfqa/internal/vectorstore"
)

// ModelChecker reports whether the generation backend serves the configured model.
type ModelChecker interface {
	ModelAvailable(ctx context.Context) (bool, error)
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	vectorStore        vectorstore.VectorStore
	models             ModelChecker
	collectionName     string
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. models may be nil, in which case
// the generation backend is not probed.
func NewHealthHandler(vectorStore vectorstore.VectorStore, models ModelChecker, collectionName string) *HealthHandler {
	return &HealthHandler{
		vectorStore:        vectorStore,
		models:             models,
		collectionName:     collectionName,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
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
// Check the health status of the system and its dependencies.
// Returns 200 OK if healthy, 503 Service Unavailable if degraded or unhealthy.
//
// swagger:route GET /api/health healthCheck
//
// # Health check endpoint
//
// Returns the health status of the vector index and the generation backend.
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: System is healthy
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
//	'503':
//	  description: System is degraded or unhealthy
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
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
	unhealthy := false

	switch count, err := h.vectorStore.Count(checkCtx, h.collectionName); {
	case err != nil:
		logger.WarnContext(ctx, "vector store health check failed", "error", err)
		checks["vector_store"] = "error"
		issues = append(issues, "vector_store_unavailable")
		unhealthy = true
	case count == 0:
		logger.WarnContext(ctx, "vector store collection is empty", "collection", h.collectionName)
		checks["vector_store"] = "empty"
		issues = append(issues, "index_empty")
	default:
		checks["vector_store"] = "ok"
	}

	if h.models != nil {
		if h.checkModel(checkCtx, logger) {
			checks["llm"] = "ok"
		} else {
			checks["llm"] = "error"
			issues = append(issues, "llm_unavailable")
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}
	if unhealthy {
		status = "unhealthy"
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	}

	writeJSON(ctx, w, httpStatus, response)
}

// checkModel checks that the generation backend lists the configured model.
func (h *HealthHandler) checkModel(ctx context.Context, logger *slog.Logger) bool {
	ok, err := h.models.ModelAvailable(ctx)
	if err != nil {
		logger.WarnContext(ctx, "llm health check failed", "error", err)
		return false
	}
	if !ok {
		logger.WarnContext(ctx, "configured model not listed by llm backend")
	}
	return ok
}
