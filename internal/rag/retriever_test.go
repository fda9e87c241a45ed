package rag

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"pdfqa/internal/index"
	"pdfqa/internal/llm"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type stubEmbedder struct {
	vec []float32
	err error
	got []string
}

func (e *stubEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	e.got = append(e.got, texts...)
	if e.err != nil {
		return nil, e.err
	}
	return [][]float32{e.vec}, nil
}

type stubSearcher struct {
	hits  []index.Hit
	err   error
	gotK  int
	gotV  []float32
	calls int
}

func (s *stubSearcher) Query(_ context.Context, vec []float32, k int) ([]index.Hit, error) {
	s.calls++
	s.gotK = k
	s.gotV = vec
	return s.hits, s.err
}

func TestRetriever_Retrieve(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{0.1, 0.2}}
	searcher := &stubSearcher{hits: []index.Hit{
		{Text: "first", Source: "a.pdf", Page: 1, Score: 0.9},
		{Text: "second", Source: "a.pdf", Page: 2, Score: 0.4},
	}}
	r := NewRetriever(emb, searcher)

	passages, err := r.Retrieve(context.Background(), "what?", 4)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(emb.got) != 1 || emb.got[0] != "what?" {
		t.Errorf("embedded %v, want [what?]", emb.got)
	}
	if searcher.gotK != 4 {
		t.Errorf("Query() k = %d, want 4", searcher.gotK)
	}
	if len(passages) != 2 || passages[0].Text != "first" || passages[1].Page != 2 {
		t.Errorf("Retrieve() = %+v", passages)
	}
}

func TestRetriever_EmptyIndex(t *testing.T) {
	r := NewRetriever(&stubEmbedder{vec: []float32{1}}, &stubSearcher{})

	passages, err := r.Retrieve(context.Background(), "anything", 3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(passages) != 0 {
		t.Errorf("Retrieve() = %v, want empty", passages)
	}
}

func TestRetriever_EmbeddingUnavailable(t *testing.T) {
	embErr := fmt.Errorf("%w: connection refused", llm.ErrEmbeddingUnavailable)
	searcher := &stubSearcher{}
	r := NewRetriever(&stubEmbedder{err: embErr}, searcher)

	_, err := r.Retrieve(context.Background(), "q", 3)
	if !errors.Is(err, llm.ErrEmbeddingUnavailable) {
		t.Errorf("Retrieve() error = %v, want ErrEmbeddingUnavailable", err)
	}
	if searcher.calls != 0 {
		t.Error("index queried after embedding failure")
	}
}

func TestRetriever_QueryError(t *testing.T) {
	queryErr := errors.New("store offline")
	r := NewRetriever(&stubEmbedder{vec: []float32{1}}, &stubSearcher{err: queryErr})

	_, err := r.Retrieve(context.Background(), "q", 3)
	if !errors.Is(err, queryErr) {
		t.Errorf("Retrieve() error = %v, want %v", err, queryErr)
	}
}
