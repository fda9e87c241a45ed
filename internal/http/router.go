package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pdfqa/internal/handlers"
	"pdfqa/internal/service"
	"pdfqa/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	QAService      service.QAService
	IndexStats     handlers.StatsProvider
	VectorStore    vectorstore.VectorStore
	Models         handlers.ModelChecker // optional
	CollectionName string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.QAService)
	questionsHandler := handlers.NewQuestionsHandler(deps.QAService)
	evaluateHandler := handlers.NewEvaluateHandler(deps.QAService)
	indexHandler := handlers.NewIndexHandler(deps.IndexStats)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.Models, deps.CollectionName)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Route("/v1", func(r chi.Router) {
			r.Method(http.MethodPost, "/ask", askHandler)
			r.Method(http.MethodPost, "/questions", questionsHandler)
			r.Method(http.MethodPost, "/evaluate", evaluateHandler)
			r.Method(http.MethodGet, "/index", indexHandler)
		})
	})

	return r
}
