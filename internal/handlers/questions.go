package handlers

import (
	"net/http"

	"pdfqa/internal/contextutil"
	"pdfqa/internal/service"
)

// QuestionsHandler generates comprehension questions about the documents.
type QuestionsHandler struct {
	qaService service.QAService
}

// NewQuestionsHandler creates a new QuestionsHandler.
func NewQuestionsHandler(qaService service.QAService) *QuestionsHandler {
	return &QuestionsHandler{qaService: qaService}
}

// QuestionsResponse lists the generated questions.
//
// swagger:model QuestionsResponse
type QuestionsResponse struct {
	// Up to five questions; empty when none could be generated
	Questions []string `json:"questions"`
}

// ServeHTTP handles HTTP requests for question generation.
//
// swagger:route POST /api/v1/questions generateQuestions
//
// # Generate comprehension questions
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Generated questions
//	  schema:
//	    "$ref": "#/definitions/QuestionsResponse"
func (h *QuestionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	questions := h.qaService.GenerateGeneralQuestions(ctx)
	if questions == nil {
		questions = []string{}
	}

	writeJSON(ctx, w, http.StatusOK, QuestionsResponse{Questions: questions})
}
