package indexer

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"pdfqa/internal/config"
	"pdfqa/internal/corpus"
)

func TestNewChunker(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{name: "defaults", size: DefaultChunkSize, overlap: DefaultChunkOverlap},
		{name: "zero overlap", size: 10, overlap: 0},
		{name: "overlap one below size", size: 10, overlap: 9},
		{name: "overlap equals size", size: 10, overlap: 10, wantErr: true},
		{name: "overlap above size", size: 10, overlap: 11, wantErr: true},
		{name: "negative overlap", size: 10, overlap: -1, wantErr: true},
		{name: "zero size", size: 0, overlap: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewChunker(tt.size, tt.overlap)
			if tt.wantErr {
				var cfgErr *config.ConfigError
				if !errors.As(err, &cfgErr) {
					t.Fatalf("NewChunker() error = %v, want *config.ConfigError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewChunker() unexpected error: %v", err)
			}
			if c.Size() != tt.size || c.Overlap() != tt.overlap {
				t.Errorf("NewChunker() = (%d, %d), want (%d, %d)", c.Size(), c.Overlap(), tt.size, tt.overlap)
			}
		})
	}
}

// reassemble joins chunks by dropping the shared prefix of every chunk after the first.
func reassemble(parts []string, overlap int) string {
	var b strings.Builder
	for i, p := range parts {
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(string([]rune(p)[overlap:]))
	}
	return b.String()
}

func TestChunker_Split(t *testing.T) {
	long := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 40)
	noSpaces := strings.Repeat("abcdefghij", 37)
	unicodeText := strings.Repeat("żółć gęślą jaźń! ", 30)

	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
	}{
		{name: "sentences", text: long, size: 100, overlap: 20},
		{name: "sentences no overlap", text: long, size: 100, overlap: 0},
		{name: "no boundaries", text: noSpaces, size: 50, overlap: 10},
		{name: "multibyte runes", text: unicodeText, size: 40, overlap: 5},
		{name: "large overlap", text: long, size: 30, overlap: 29},
		{name: "default params", text: long, size: DefaultChunkSize, overlap: DefaultChunkOverlap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewChunker(tt.size, tt.overlap)
			if err != nil {
				t.Fatalf("NewChunker() error = %v", err)
			}

			parts := c.Split(tt.text)
			if len(parts) == 0 {
				t.Fatal("Split() returned no chunks")
			}

			for i, p := range parts {
				if n := utf8.RuneCountInString(p); n > tt.size {
					t.Errorf("chunk %d has %d runes, max %d", i, n, tt.size)
				}
				if i > 0 {
					prev := []rune(parts[i-1])
					cur := []rune(p)
					if string(prev[len(prev)-tt.overlap:]) != string(cur[:tt.overlap]) {
						t.Errorf("chunk %d does not start with the previous chunk's last %d runes", i, tt.overlap)
					}
				}
			}

			if got := reassemble(parts, tt.overlap); got != tt.text {
				t.Errorf("reassembled text differs from input (len %d vs %d)", len(got), len(tt.text))
			}

			again := c.Split(tt.text)
			if strings.Join(again, "\x00") != strings.Join(parts, "\x00") {
				t.Error("Split() is not deterministic")
			}
		})
	}
}

func TestChunker_SplitPrefersSentenceBoundary(t *testing.T) {
	c, err := NewChunker(30, 0)
	if err != nil {
		t.Fatalf("NewChunker() error = %v", err)
	}

	parts := c.Split("first sentence here. second sentence is longer than the window")
	if parts[0] != "first sentence here. " {
		t.Errorf("first chunk = %q, want cut after the sentence", parts[0])
	}
}

func TestChunker_SplitShortDocument(t *testing.T) {
	c, err := NewChunker(500, 20)
	if err != nil {
		t.Fatalf("NewChunker() error = %v", err)
	}

	doc := "paris is the capital of france."
	parts := c.Split(doc)
	if len(parts) != 1 || parts[0] != doc {
		t.Errorf("Split() = %q, want exactly [%q]", parts, doc)
	}

	exact := strings.Repeat("x", 500)
	if parts := c.Split(exact); len(parts) != 1 {
		t.Errorf("Split() of exactly chunk size = %d chunks, want 1", len(parts))
	}

	if parts := c.Split(""); len(parts) != 0 {
		t.Errorf("Split(\"\") = %q, want none", parts)
	}
}

func TestChunker_ChunkDocuments(t *testing.T) {
	c, err := NewChunker(20, 5)
	if err != nil {
		t.Fatalf("NewChunker() error = %v", err)
	}

	docs := []corpus.Document{
		{Source: "a.pdf", Page: 1, Text: "short page"},
		{Source: "a.pdf", Page: 2, Text: "a much longer page that needs several chunks"},
		{Source: "b.pdf", Page: 1, Text: "last"},
	}

	chunks := c.ChunkDocuments(docs)
	if len(chunks) < 4 {
		t.Fatalf("ChunkDocuments() = %d chunks, want at least 4", len(chunks))
	}

	for i, ch := range chunks {
		if ch.Seq != i {
			t.Errorf("chunk %d Seq = %d", i, ch.Seq)
		}
	}
	if chunks[0].Ordinal != 0 || chunks[1].Ordinal != 0 || chunks[2].Ordinal != 1 {
		t.Errorf("ordinals should restart per page: %+v", chunks[:3])
	}
	last := chunks[len(chunks)-1]
	if last.Source != "b.pdf" || last.Page != 1 || last.Ordinal != 0 || last.Text != "last" {
		t.Errorf("last chunk = %+v", last)
	}
}
