package handlers

import (
	"encoding/json"
	"net/http"

	"pdfqa/internal/contextutil"
	"pdfqa/internal/rag"
	"pdfqa/internal/service"
)

// EvaluateHandler evaluates a user's answers and returns a training plan.
type EvaluateHandler struct {
	qaService service.QAService
}

// NewEvaluateHandler creates a new EvaluateHandler.
func NewEvaluateHandler(qaService service.QAService) *EvaluateHandler {
	return &EvaluateHandler{qaService: qaService}
}

// ResponseItem is one answered question.
//
// swagger:model ResponseItem
type ResponseItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// EvaluateRequest carries the answers to evaluate, in the order they were given.
//
// swagger:model EvaluateRequest
type EvaluateRequest struct {
	Responses []ResponseItem `json:"responses"`
}

// EvaluateResponse carries the evaluation and training plan.
//
// swagger:model EvaluateResponse
type EvaluateResponse struct {
	Plan string `json:"plan"`
}

// ServeHTTP handles HTTP requests for answer evaluation.
//
// swagger:route POST /api/v1/evaluate evaluateResponses
//
// # Evaluate answers and propose a training plan
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Evaluation or fallback message
//	  schema:
//	    "$ref": "#/definitions/EvaluateResponse"
//	'400':
//	  description: No responses, or a response without a question
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *EvaluateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	responses := make(service.Responses, 0, len(req.Responses))
	for _, item := range req.Responses {
		responses = append(responses, rag.QA{Question: item.Question, Answer: item.Answer})
	}

	plan, err := h.qaService.EvaluateResponses(ctx, responses)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to evaluate responses")
		return
	}

	writeJSON(ctx, w, http.StatusOK, EvaluateResponse{Plan: plan})
}
