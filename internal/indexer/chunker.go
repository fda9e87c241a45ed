package indexer

import (
	"fmt"

	"pdfqa/internal/config"
	"pdfqa/internal/corpus"
)

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 20
)

// sentenceEnds are the punctuation runes that, followed by a space, end a sentence.
var sentenceEnds = map[rune]bool{'.': true, '!': true, '?': true}

// Chunker splits normalized text into overlapping windows measured in runes.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker validates the window parameters. overlap must be smaller than chunkSize,
// otherwise consecutive windows could not make progress.
func NewChunker(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, &config.ConfigError{Field: "CHUNK_SIZE", Message: fmt.Sprintf("must be greater than 0, got %d", chunkSize)}
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, &config.ConfigError{
			Field:   "CHUNK_OVERLAP",
			Message: fmt.Sprintf("must be in [0, %d), got %d", chunkSize, overlap),
		}
	}
	return &Chunker{size: chunkSize, overlap: overlap}, nil
}

// Size returns the maximum chunk length in runes.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the number of runes shared by consecutive chunks.
func (c *Chunker) Overlap() int { return c.overlap }

// Split cuts text into windows of at most Size runes. Each window after the first
// begins exactly Overlap runes before the previous one ended, so
// parts[0] + parts[1][overlap:] + ... reproduces text.
//
// A window ends after the last sentence boundary it contains, else after its last
// space, else at the hard limit. A boundary is only taken when it leaves the window
// longer than the overlap.
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}
	if n <= c.size {
		return []string{text}
	}

	var parts []string
	start := 0
	for {
		end := start + c.size
		if end >= n {
			parts = append(parts, string(runes[start:]))
			break
		}

		cut := c.boundary(runes, start, end)
		parts = append(parts, string(runes[start:cut]))
		start = cut - c.overlap
	}

	return parts
}

// boundary picks the cut position for the window runes[start:end].
func (c *Chunker) boundary(runes []rune, start, end int) int {
	minCut := start + c.overlap + 1

	// Sentence end: punctuation followed by a space; cut after the space.
	for i := end - 2; i >= start; i-- {
		if i+2 < minCut {
			break
		}
		if sentenceEnds[runes[i]] && runes[i+1] == ' ' {
			return i + 2
		}
	}

	for i := end - 1; i >= start; i-- {
		if i+1 < minCut {
			break
		}
		if runes[i] == ' ' {
			return i + 1
		}
	}

	return end
}

// ChunkDocuments splits every document in order. Ordinal restarts at 0 for each
// document; Seq numbers chunks across the whole corpus in insertion order.
func (c *Chunker) ChunkDocuments(docs []corpus.Document) []Chunk {
	var chunks []Chunk
	seq := 0
	for _, doc := range docs {
		for i, text := range c.Split(doc.Text) {
			chunks = append(chunks, Chunk{
				Source:  doc.Source,
				Page:    doc.Page,
				Ordinal: i,
				Seq:     seq,
				Text:    text,
			})
			seq++
		}
	}
	return chunks
}
