package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type memoryCache struct {
	data   map[string][]float32
	getErr error
	putErr error
	puts   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]float32)}
}

func (m *memoryCache) GetEmbeddings(_ context.Context, model string, keys []string) (map[string][]float32, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make(map[string][]float32)
	for _, k := range keys {
		if v, ok := m.data[model+"/"+k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (m *memoryCache) PutEmbeddings(_ context.Context, model string, entries map[string][]float32) error {
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	for k, v := range entries {
		m.data[model+"/"+k] = v
	}
	return nil
}

// countingEmbedder returns [len(text)] for each text and records every call.
type countingEmbedder struct {
	calls [][]string
	err   error
}

func (c *countingEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	c.calls = append(c.calls, texts)
	if c.err != nil {
		return nil, c.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

func TestCachedEmbedder(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{}
	cache := newMemoryCache()
	e := NewCachedEmbedder(inner, cache, "m")

	first, err := e.EmbedTexts(ctx, []string{"a", "bb", "a"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	if len(inner.calls) != 1 || len(inner.calls[0]) != 2 {
		t.Fatalf("inner calls = %v, want one call with 2 unique texts", inner.calls)
	}
	if first[0][0] != 1 || first[1][0] != 2 || first[2][0] != 1 {
		t.Errorf("EmbedTexts() = %v", first)
	}

	second, err := e.EmbedTexts(ctx, []string{"bb", "ccc"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	if len(inner.calls) != 2 || len(inner.calls[1]) != 1 || inner.calls[1][0] != "ccc" {
		t.Errorf("second inner call = %v, want only the uncached text", inner.calls)
	}
	if second[0][0] != 2 || second[1][0] != 3 {
		t.Errorf("EmbedTexts() = %v", second)
	}

	if _, err := e.EmbedTexts(ctx, []string{"a", "ccc"}); err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	if len(inner.calls) != 2 {
		t.Errorf("fully cached call reached the backend: %v", inner.calls)
	}
}

func TestCachedEmbedder_ScopedByModel(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	inner := &countingEmbedder{}

	_, _ = NewCachedEmbedder(inner, cache, "model-a").EmbedTexts(ctx, []string{"x"})
	_, _ = NewCachedEmbedder(inner, cache, "model-b").EmbedTexts(ctx, []string{"x"})

	if len(inner.calls) != 2 {
		t.Errorf("inner calls = %d, want 2 (cache must not cross models)", len(inner.calls))
	}
}

func TestCachedEmbedder_CacheFailuresAreIgnored(t *testing.T) {
	cache := newMemoryCache()
	cache.getErr = errors.New("disk gone")
	cache.putErr = errors.New("disk gone")
	inner := &countingEmbedder{}

	vecs, err := NewCachedEmbedder(inner, cache, "m").EmbedTexts(context.Background(), []string{"abc"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	if len(vecs) != 1 || vecs[0][0] != 3 {
		t.Errorf("EmbedTexts() = %v", vecs)
	}
}

func TestCachedEmbedder_PropagatesBackendError(t *testing.T) {
	inner := &countingEmbedder{err: fmtUnavailable("connection refused")}

	_, err := NewCachedEmbedder(inner, newMemoryCache(), "m").EmbedTexts(context.Background(), []string{"abc"})
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Errorf("EmbedTexts() error = %v, want ErrEmbeddingUnavailable", err)
	}
}

func TestRateLimitedEmbedder(t *testing.T) {
	inner := &countingEmbedder{}
	e := NewRateLimitedEmbedder(inner, 0)

	for i := 0; i < 3; i++ {
		if _, err := e.EmbedTexts(context.Background(), []string{"a"}); err != nil {
			t.Fatalf("EmbedTexts() error = %v", err)
		}
	}
	if len(inner.calls) != 3 {
		t.Errorf("inner calls = %d, want 3", len(inner.calls))
	}
}

func TestRateLimitedEmbedder_RespectsContext(t *testing.T) {
	inner := &countingEmbedder{}
	e := NewRateLimitedEmbedder(inner, 0.001)

	// The first call consumes the single burst token.
	if _, err := e.EmbedTexts(context.Background(), []string{"a"}); err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := e.EmbedTexts(ctx, []string{"b"}); err == nil {
		t.Error("EmbedTexts() expected error when the limiter cannot admit before the deadline")
	}
	if len(inner.calls) != 1 {
		t.Errorf("inner calls = %d, want 1", len(inner.calls))
	}
}

func TestTextKey(t *testing.T) {
	if TextKey("a") == TextKey("b") {
		t.Error("TextKey collision for different texts")
	}
	if len(TextKey("a")) != 64 {
		t.Errorf("TextKey length = %d, want 64", len(TextKey("a")))
	}
}
