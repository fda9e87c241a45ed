package index

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"pdfqa/internal/config"
	"pdfqa/internal/contextutil"
	"pdfqa/internal/indexer"
	"pdfqa/internal/llm"
	"pdfqa/internal/storage"
	"pdfqa/internal/vectorstore"
)

// DefaultBatchSize is the number of chunks embedded per request when no batch size is set.
const DefaultBatchSize = 32

// Hit is one retrieved chunk with its similarity score.
type Hit struct {
	Text    string
	Source  string
	Page    int
	Ordinal int
	Seq     int
	Score   float32
}

// Stats describes the current state of the index.
type Stats struct {
	Collection     string    `json:"collection"`
	Backend        string    `json:"backend"`
	Populated      bool      `json:"populated"`
	EntryCount     int       `json:"entry_count"`
	EmbeddingModel string    `json:"embedding_model,omitempty"`
	Dimension      int       `json:"dimension,omitempty"`
	IndexVersion   string    `json:"index_version,omitempty"`
	CompletedAt    time.Time `json:"completed_at,omitempty"`
}

// ProgressFunc is called after each embedded batch with the number of chunks stored so far.
type ProgressFunc func(done, total int)

// Option configures an Index.
type Option func(*Index)

// WithBatchSize sets how many chunks are embedded per request.
func WithBatchSize(n int) Option {
	return func(idx *Index) {
		if n > 0 {
			idx.batchSize = n
		}
	}
}

// WithProgress registers a callback invoked during Build.
func WithProgress(fn ProgressFunc) Option {
	return func(idx *Index) {
		idx.progress = fn
	}
}

// WithBackend records the vector store backend name in the manifest.
func WithBackend(name string) Option {
	return func(idx *Index) {
		idx.backend = name
	}
}

// WithIndexVersion records the build identifier in the manifest.
func WithIndexVersion(v string) Option {
	return func(idx *Index) {
		idx.version = v
	}
}

// Index is the vector index over chunk embeddings. It is built once and read-only afterwards.
// A build is complete only once its manifest is recorded; until then the index reports
// itself unpopulated and the next Build starts over.
type Index struct {
	store      vectorstore.VectorStore
	manifests  storage.ManifestStore
	embedder   llm.Embedder
	collection string
	model      string
	dimension  int

	batchSize int
	progress  ProgressFunc
	backend   string
	version   string
}

// New creates an Index over store for the given embedding model and vector dimension.
func New(store vectorstore.VectorStore, manifests storage.ManifestStore, embedder llm.Embedder, collection, model string, dimension int, opts ...Option) *Index {
	idx := &Index{
		store:      store,
		manifests:  manifests,
		embedder:   embedder,
		collection: collection,
		model:      model,
		dimension:  dimension,
		batchSize:  DefaultBatchSize,
		backend:    config.BackendLocal,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// IsPopulated reports whether a build completed and the store holds at least one entry.
func (idx *Index) IsPopulated(ctx context.Context) (bool, error) {
	m, err := idx.manifests.Get(ctx, idx.collection)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read index manifest: %w", err)
	}
	if m.EntryCount == 0 {
		return false, nil
	}

	n, err := idx.store.Count(ctx, idx.collection)
	if err != nil {
		return false, fmt.Errorf("failed to count index entries: %w", err)
	}
	return n > 0, nil
}

// Build embeds and stores every chunk, then records the manifest.
// It returns the number of entries written; 0 when the index was already populated
// or chunks is empty.
func (idx *Index) Build(ctx context.Context, chunks []indexer.Chunk) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	populated, err := idx.IsPopulated(ctx)
	if err != nil {
		return 0, err
	}
	if populated {
		logger.InfoContext(ctx, "index already populated, build skipped", "collection", idx.collection)
		return 0, nil
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	// Forget any interrupted build before writing
	if err := idx.manifests.Delete(ctx, idx.collection); err != nil {
		return 0, fmt.Errorf("failed to clear index manifest: %w", err)
	}
	if err := idx.store.Reset(ctx, idx.collection, idx.dimension); err != nil {
		return 0, fmt.Errorf("failed to reset collection: %w", err)
	}

	logger.InfoContext(ctx, "building index",
		"collection", idx.collection,
		"chunks", len(chunks),
		"batch_size", idx.batchSize,
	)

	written := 0
	for start := 0; start < len(chunks); start += idx.batchSize {
		end := start + idx.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vecs, err := idx.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("failed to embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(vecs) != len(batch) {
			return 0, fmt.Errorf("%w: got %d embeddings for %d chunks", llm.ErrEmbeddingUnavailable, len(vecs), len(batch))
		}

		points := make([]vectorstore.Point, len(batch))
		for i, c := range batch {
			if len(vecs[i]) != idx.dimension {
				return 0, &config.ConfigError{
					Field:   "EMBEDDING_DIMENSION",
					Message: fmt.Sprintf("is %d but model %s returned %d-dimensional vectors", idx.dimension, idx.model, len(vecs[i])),
				}
			}
			points[i] = vectorstore.Point{
				ID:      PointID(c),
				Vec:     vecs[i],
				Payload: payloadFromChunk(c),
			}
		}

		if err := idx.store.Upsert(ctx, idx.collection, points); err != nil {
			return 0, fmt.Errorf("failed to store chunks %d-%d: %w", start, end-1, err)
		}

		written += len(points)
		if idx.progress != nil {
			idx.progress(written, len(chunks))
		}
		logger.DebugContext(ctx, "stored batch", "done", written, "total", len(chunks))
	}

	err = idx.manifests.Put(ctx, &storage.Manifest{
		Collection:     idx.collection,
		Backend:        idx.backend,
		EmbeddingModel: idx.model,
		Dimension:      idx.dimension,
		EntryCount:     written,
		IndexVersion:   idx.version,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to record index manifest: %w", err)
	}

	logger.InfoContext(ctx, "index built", "collection", idx.collection, "entries", written)
	return written, nil
}

// Query returns the k entries most similar to vec, best first.
// Equal scores keep insertion order. An empty index yields no hits.
func (idx *Index) Query(ctx context.Context, vec []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, &config.ConfigError{
			Field:   "RETRIEVAL_K",
			Message: fmt.Sprintf("must be positive, got %d", k),
		}
	}

	results, err := idx.store.Search(ctx, idx.collection, vec, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, hitFromPayload(r.Payload, r.Score))
	}

	// Remote stores do not promise an order among equal scores
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Seq < hits[j].Seq
	})

	return hits, nil
}

// Validate fails with a ConfigError when the recorded build used a different embedding
// model or dimension than the current configuration.
func (idx *Index) Validate(ctx context.Context) error {
	m, err := idx.manifests.Get(ctx, idx.collection)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read index manifest: %w", err)
	}

	if m.EmbeddingModel != idx.model {
		return &config.ConfigError{
			Field:   "EMBEDDING_MODEL_NAME",
			Message: fmt.Sprintf("is %s but the index was built with %s; rebuild with --force", idx.model, m.EmbeddingModel),
		}
	}
	if m.Dimension != idx.dimension {
		return &config.ConfigError{
			Field:   "EMBEDDING_DIMENSION",
			Message: fmt.Sprintf("is %d but the index was built with %d", idx.dimension, m.Dimension),
		}
	}
	return nil
}

// Reset discards the index so that the next Build starts from scratch.
func (idx *Index) Reset(ctx context.Context) error {
	if err := idx.manifests.Delete(ctx, idx.collection); err != nil {
		return fmt.Errorf("failed to clear index manifest: %w", err)
	}
	if err := idx.store.Reset(ctx, idx.collection, idx.dimension); err != nil {
		return fmt.Errorf("failed to reset collection: %w", err)
	}
	return nil
}

// Stats reports the manifest of the last completed build and the live entry count.
func (idx *Index) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{
		Collection: idx.collection,
		Backend:    idx.backend,
	}

	n, err := idx.store.Count(ctx, idx.collection)
	if err != nil {
		return stats, fmt.Errorf("failed to count index entries: %w", err)
	}
	stats.EntryCount = n

	m, err := idx.manifests.Get(ctx, idx.collection)
	if errors.Is(err, storage.ErrNotFound) {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("failed to read index manifest: %w", err)
	}

	stats.Populated = m.EntryCount > 0 && n > 0
	stats.EmbeddingModel = m.EmbeddingModel
	stats.Dimension = m.Dimension
	stats.IndexVersion = m.IndexVersion
	stats.CompletedAt = m.CompletedAt
	return stats, nil
}

// PointID derives a stable UUID from the chunk's origin so that rebuilding the same
// corpus produces the same point IDs.
func PointID(c indexer.Chunk) string {
	name := fmt.Sprintf("pdfqa:%s#page=%d&chunk=%d", c.Source, c.Page, c.Ordinal)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func payloadFromChunk(c indexer.Chunk) map[string]any {
	return map[string]any{
		"text":    c.Text,
		"source":  c.Source,
		"page":    c.Page,
		"ordinal": c.Ordinal,
		"seq":     c.Seq,
	}
}

func hitFromPayload(p map[string]any, score float32) Hit {
	text, _ := p["text"].(string)
	source, _ := p["source"].(string)
	return Hit{
		Text:    text,
		Source:  source,
		Page:    payloadInt(p["page"]),
		Ordinal: payloadInt(p["ordinal"]),
		Seq:     payloadInt(p["seq"]),
		Score:   score,
	}
}

// payloadInt reads an integer field regardless of how the store decoded it.
func payloadInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
