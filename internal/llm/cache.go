package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/time/rate"

	"pdfqa/internal/contextutil"
)

// EmbeddingCache persists vectors keyed by model and text hash.
type EmbeddingCache interface {
	GetEmbeddings(ctx context.Context, model string, keys []string) (map[string][]float32, error)
	PutEmbeddings(ctx context.Context, model string, entries map[string][]float32) error
}

// CachedEmbedder reuses previously computed vectors. Embeddings are deterministic for a
// fixed model, so a rebuild after an interrupted run only pays for texts not yet embedded.
// Cache failures are logged and never fail the call.
type CachedEmbedder struct {
	inner Embedder
	cache EmbeddingCache
	model string
}

// NewCachedEmbedder wraps inner with a cache scoped to model.
func NewCachedEmbedder(inner Embedder, cache EmbeddingCache, model string) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: cache, model: model}
}

// TextKey is the cache key of a text.
func TextKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return c.inner.EmbedTexts(ctx, texts)
	}
	logger := contextutil.LoggerFromContext(ctx)

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = TextKey(t)
	}

	cached, err := c.cache.GetEmbeddings(ctx, c.model, keys)
	if err != nil {
		logger.WarnContext(ctx, "embedding cache lookup failed", "error", err)
		cached = nil
	}

	var missTexts []string
	var missKeys []string
	seen := make(map[string]bool)
	for i, k := range keys {
		if _, ok := cached[k]; ok || seen[k] {
			continue
		}
		seen[k] = true
		missTexts = append(missTexts, texts[i])
		missKeys = append(missKeys, k)
	}

	fresh := make(map[string][]float32, len(missKeys))
	if len(missTexts) > 0 {
		vecs, err := c.inner.EmbedTexts(ctx, missTexts)
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(missTexts) {
			return nil, fmtUnavailable("expected %d embeddings, got %d", len(missTexts), len(vecs))
		}
		for i, k := range missKeys {
			fresh[k] = vecs[i]
		}
		if err := c.cache.PutEmbeddings(ctx, c.model, fresh); err != nil {
			logger.WarnContext(ctx, "embedding cache store failed", "error", err)
		}
	}

	result := make([][]float32, len(texts))
	for i, k := range keys {
		if v, ok := fresh[k]; ok {
			result[i] = v
		} else {
			result[i] = cached[k]
		}
	}

	logger.DebugContext(ctx, "embedded texts", "total", len(texts), "cache_hits", len(texts)-len(missTexts))
	return result, nil
}

// RateLimitedEmbedder paces requests to a billed or rate-limited embedding backend.
type RateLimitedEmbedder struct {
	inner   Embedder
	limiter *rate.Limiter
}

// NewRateLimitedEmbedder allows requestsPerSecond calls with a burst of one.
// A non-positive rate disables pacing.
func NewRateLimitedEmbedder(inner Embedder, requestsPerSecond float64) *RateLimitedEmbedder {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &RateLimitedEmbedder{inner: inner, limiter: rate.NewLimiter(limit, 1)}
}

func (r *RateLimitedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.EmbedTexts(ctx, texts)
}
