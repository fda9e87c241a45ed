package handlers

import (
	"context"
	"net/http"

	"pdfqa/internal/contextutil"
	"pdfqa/internal/index"
)

// StatsProvider reports the state of the vector index.
type StatsProvider interface {
	Stats(ctx context.Context) (index.Stats, error)
}

// IndexHandler handles HTTP requests for index status.
type IndexHandler struct {
	stats StatsProvider
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(stats StatsProvider) *IndexHandler {
	return &IndexHandler{stats: stats}
}

// ServeHTTP returns the index statistics.
//
// swagger:route GET /api/v1/index indexStats
//
// # Index status
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Index statistics
//	'500':
//	  description: Index state could not be read
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	stats, err := h.stats.Stats(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read index stats", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to read index state")
		return
	}

	writeJSON(ctx, w, http.StatusOK, stats)
}
