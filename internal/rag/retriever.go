package rag

import (
	"context"
	"log/slog"

	"pdfqa/internal/contextutil"
	"pdfqa/internal/index"
	"pdfqa/internal/llm"
)

// Fixed retrieval queries used by the question generation and evaluation tasks.
const (
	TopicDiscoveryQuery     = "What are the main topics covered in the document?"
	ValidationCriteriaQuery = "What are the key points needed to validate the answers?"
)

// Searcher is the read side of the vector index.
type Searcher interface {
	Query(ctx context.Context, vec []float32, k int) ([]index.Hit, error)
}

// Retriever embeds a query and returns the closest passages. It caches nothing.
type Retriever struct {
	embedder llm.Embedder
	index    Searcher
}

// NewRetriever creates a new Retriever.
func NewRetriever(embedder llm.Embedder, idx Searcher) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    idx,
	}
}

// Retrieve returns at most k passages ranked by similarity to query.
// Embedding and index errors are returned as is.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]Passage, error) {
	logger := contextutil.LoggerFromContext(ctx)

	vec, err := llm.EmbedOne(ctx, r.embedder, query)
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return nil, err
	}

	hits, err := r.index.Query(ctx, vec, k)
	if err != nil {
		return nil, err
	}

	passages := make([]Passage, 0, len(hits))
	for _, h := range hits {
		passages = append(passages, Passage{
			Text:   h.Text,
			Source: h.Source,
			Page:   h.Page,
			Score:  h.Score,
		})
	}

	logger.InfoContext(ctx, "retrieval completed", "k", k, "passages", len(passages))
	if len(passages) > 0 && logger.Enabled(ctx, slog.LevelDebug) {
		topScores := make([]float32, 0, 3)
		for i := 0; i < len(passages) && i < 3; i++ {
			topScores = append(topScores, passages[i].Score)
		}
		logger.DebugContext(ctx, "top passages", "top_3_scores", topScores, "first_source", passages[0].Source)
	}

	return passages, nil
}
