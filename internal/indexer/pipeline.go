package indexer

import (
	"context"
	"fmt"
	"strings"

	"pdfqa/internal/contextutil"
	"pdfqa/internal/corpus"
)

// DocumentSource loads raw page text from a corpus directory.
type DocumentSource interface {
	LoadAll(ctx context.Context, dir string) (corpus.LoadResult, error)
}

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_index_builder.go -package=mocks pdfqa/internal/indexer IndexBuilder

// IndexBuilder is the vector index as seen by ingestion.
// Build must be a no-op returning 0 when the index is already populated.
type IndexBuilder interface {
	IsPopulated(ctx context.Context) (bool, error)
	Build(ctx context.Context, chunks []Chunk) (int, error)
}

// Pipeline runs ingestion: load, normalize, chunk, then build the index once.
type Pipeline struct {
	source     DocumentSource
	chunker    *Chunker
	index      IndexBuilder
	embedModel string
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(source DocumentSource, chunker *Chunker, index IndexBuilder, embedModel string) *Pipeline {
	return &Pipeline{
		source:     source,
		chunker:    chunker,
		index:      index,
		embedModel: embedModel,
	}
}

// Prepare loads and chunks the corpus without touching the index.
// Pages whose normalized text is empty are counted but produce no chunks.
func (p *Pipeline) Prepare(ctx context.Context, dir string) ([]Chunk, CoverageStats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	stats := CoverageStats{
		ChunkerVersion: ChunkerVersion,
		IndexVersion:   IndexVersion(p.embedModel, p.chunker.Size(), p.chunker.Overlap()),
	}

	loaded, err := p.source.LoadAll(ctx, dir)
	stats.FilesScanned = loaded.Files
	if err != nil {
		return nil, stats, fmt.Errorf("failed to load corpus: %w", err)
	}

	docs := make([]corpus.Document, 0, len(loaded.Documents))
	for _, doc := range loaded.Documents {
		doc.Text = Normalize(doc.Text)
		if strings.TrimSpace(doc.Text) == "" {
			stats.PagesWith0Chunks++
			continue
		}
		docs = append(docs, doc)
	}
	stats.PagesProcessed = len(loaded.Documents)

	chunks := p.chunker.ChunkDocuments(docs)

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	stats.ChunkTokenStats = ComputeTokenStats(texts)

	logger.InfoContext(ctx, "prepared corpus",
		"files", stats.FilesScanned,
		"pages", stats.PagesProcessed,
		"chunks", len(chunks),
	)

	return chunks, stats, nil
}

// Run builds the index from dir unless it is already populated.
// Corpus loading errors abort the run before anything is written.
func (p *Pipeline) Run(ctx context.Context, dir string) (CoverageStats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	populated, err := p.index.IsPopulated(ctx)
	if err != nil {
		return CoverageStats{}, fmt.Errorf("failed to check index state: %w", err)
	}
	if populated {
		logger.InfoContext(ctx, "index already populated, skipping ingestion")
		return CoverageStats{Skipped: true, ChunkerVersion: ChunkerVersion}, nil
	}

	chunks, stats, err := p.Prepare(ctx, dir)
	if err != nil {
		return stats, err
	}

	if len(chunks) == 0 {
		logger.WarnContext(ctx, "no chunks generated", "dir", dir)
		return stats, nil
	}

	written, err := p.index.Build(ctx, chunks)
	if err != nil {
		return stats, fmt.Errorf("failed to build index: %w", err)
	}
	stats.ChunksEmbedded = written

	logger.InfoContext(ctx, "ingestion completed",
		"chunks_embedded", written,
		"index_version", stats.IndexVersion,
	)

	return stats, nil
}
