package handlers

import (
	"encoding/json"
	"net/http"

	"pdfqa/internal/contextutil"
	"pdfqa/internal/service"
)

// AskHandler handles HTTP requests for questions about the indexed documents.
type AskHandler struct {
	qaService service.QAService
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(qaService service.QAService) *AskHandler {
	return &AskHandler{
		qaService: qaService,
	}
}

// AskRequest represents the HTTP request payload for a question.
//
// swagger:model AskRequest
type AskRequest struct {
	// The question to answer from the documents
	Question string `json:"question"`
}

// AskResponse represents the HTTP response payload for a question.
//
// swagger:model AskResponse
type AskResponse struct {
	// The generated answer, or a fallback message when none could be produced
	Answer string `json:"answer"`
}

// ServeHTTP handles HTTP requests for questions.
//
// swagger:route POST /api/v1/ask askQuestion
//
// # Ask a question about the indexed documents
//
// Failures inside the pipeline are reported as a fallback answer with status 200.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Answer or fallback message
//	  schema:
//	    "$ref": "#/definitions/AskResponse"
//	'400':
//	  description: Malformed request body
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	answer := h.qaService.AskQuestion(ctx, req.Question)

	writeJSON(ctx, w, http.StatusOK, AskResponse{Answer: answer})
}
