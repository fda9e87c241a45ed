// Package app wires configuration, storage, embedding, the vector index and the
// question-answering service into one process-wide object shared by the API server
// and the CLI.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"pdfqa/internal/config"
	"pdfqa/internal/contextutil"
	"pdfqa/internal/corpus"
	"pdfqa/internal/handlers"
	apihttp "pdfqa/internal/http"
	"pdfqa/internal/index"
	"pdfqa/internal/indexer"
	"pdfqa/internal/llm"
	"pdfqa/internal/rag"
	"pdfqa/internal/service"
	"pdfqa/internal/storage"
	"pdfqa/internal/vectorstore"
)

// DatabaseFile is the SQLite file created inside VECTORSTORE_DIR.
const DatabaseFile = "index.db"

// App holds the long-lived components of one pdfqa process.
type App struct {
	Config   *config.Config
	Index    *index.Index
	Pipeline *indexer.Pipeline
	QA       service.QAService

	db     *sql.DB
	store  vectorstore.VectorStore
	models handlers.ModelChecker
}

type options struct {
	progress index.ProgressFunc
	source   indexer.DocumentSource
}

// Option configures New.
type Option func(*options)

// WithProgress reports index build progress to fn.
func WithProgress(fn index.ProgressFunc) Option {
	return func(o *options) { o.progress = fn }
}

// WithDocumentSource replaces the default corpus loader.
func WithDocumentSource(src indexer.DocumentSource) Option {
	return func(o *options) { o.source = src }
}

// ConfigureLogging installs the default slog logger described by cfg.
func ConfigureLogging(cfg *config.Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// New opens storage and builds every component. The index is not validated or built;
// call Validate and Ingest for that.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	logger := contextutil.LoggerFromContext(ctx)

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.source == nil {
		o.source = corpus.New()
	}

	dbPath := filepath.Join(cfg.VectorStoreDir, DatabaseFile)
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.DebugContext(ctx, "database initialized", "path", dbPath)

	a := &App{Config: cfg, db: db}
	if err := a.init(ctx, o); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context, o *options) error {
	cfg := a.Config
	logger := contextutil.LoggerFromContext(ctx)

	store, err := vectorstore.NewFromConfig(ctx, cfg, a.db)
	if err != nil {
		return fmt.Errorf("failed to create vector store: %w", err)
	}
	a.store = store
	logger.DebugContext(ctx, "vector store ready", "backend", cfg.VectorStoreBackend, "collection", cfg.Collection)

	// Queries use the uncached embedder so that serving never writes to index.db.
	queryEmbedder, err := llm.NewEmbedderFromConfig(cfg, nil)
	if err != nil {
		return err
	}
	buildEmbedder := llm.NewCachedEmbedder(queryEmbedder, storage.NewEmbeddingCacheRepo(a.db), cfg.EmbeddingModelName)

	generator, err := llm.NewGeneratorFromConfig(cfg)
	if err != nil {
		return err
	}
	if mc, ok := generator.(handlers.ModelChecker); ok {
		a.models = mc
	}

	chunker, err := indexer.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return err
	}

	idxOpts := []index.Option{
		index.WithBatchSize(cfg.EmbeddingBatchSize),
		index.WithBackend(cfg.VectorStoreBackend),
		index.WithIndexVersion(indexer.IndexVersion(cfg.EmbeddingModelName, cfg.ChunkSize, cfg.ChunkOverlap)),
	}
	if o.progress != nil {
		idxOpts = append(idxOpts, index.WithProgress(o.progress))
	}
	a.Index = index.New(store, storage.NewManifestRepo(a.db), buildEmbedder,
		cfg.Collection, cfg.EmbeddingModelName, cfg.EmbeddingDimension, idxOpts...)

	a.Pipeline = indexer.NewPipeline(o.source, chunker, a.Index, cfg.EmbeddingModelName)
	a.QA = service.NewQAService(rag.NewRetriever(queryEmbedder, a.Index), generator, llm.ChatParamsFromConfig(cfg), cfg.RetrievalK)

	return nil
}

// Validate fails when the stored index was built with a different embedding configuration.
func (a *App) Validate(ctx context.Context) error {
	return a.Index.Validate(ctx)
}

// Ingest builds the index from DATA_DIR unless it is already populated.
// With force, the existing index is discarded first.
func (a *App) Ingest(ctx context.Context, force bool) (indexer.CoverageStats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if force {
		logger.InfoContext(ctx, "discarding existing index", "collection", a.Config.Collection)
		if err := a.Index.Reset(ctx); err != nil {
			return indexer.CoverageStats{}, err
		}
	} else if err := a.Validate(ctx); err != nil {
		return indexer.CoverageStats{}, err
	}

	return a.Pipeline.Run(ctx, a.Config.DataDir)
}

// Router returns the HTTP API over the application's components.
func (a *App) Router() http.Handler {
	return apihttp.NewRouter(&apihttp.Deps{
		QAService:      a.QA,
		IndexStats:     a.Index,
		VectorStore:    a.store,
		Models:         a.models,
		CollectionName: a.Config.Collection,
	})
}

// Close releases the vector store connection and the database.
func (a *App) Close() error {
	if c, ok := a.store.(io.Closer); ok {
		_ = c.Close()
	}
	return a.db.Close()
}
