package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"unicode/utf8"
)

const (
	// ChunkerVersion is the version identifier for the chunker implementation.
	// Update this when chunking logic changes significantly.
	ChunkerVersion = "v2.0"
	// TokensPerRune is an approximation for token counting (4 chars per token).
	TokensPerRune = 4.0
)

// CoverageStats summarizes one ingestion run.
type CoverageStats struct {
	// FilesScanned is the number of supported files found in the corpus directory.
	FilesScanned int `json:"files_scanned"`
	// PagesProcessed is the number of pages that produced text.
	PagesProcessed int `json:"pages_processed"`
	// PagesWith0Chunks is the number of pages whose normalized text was empty.
	PagesWith0Chunks int `json:"pages_with_0_chunks"`
	// ChunksEmbedded is the number of chunks embedded and stored by this run.
	ChunksEmbedded int `json:"chunks_embedded"`
	// Skipped is true when the index was already populated and nothing was rebuilt.
	Skipped bool `json:"skipped"`
	// ChunkTokenStats contains statistics about token counts per chunk.
	ChunkTokenStats ChunkTokenStats `json:"chunk_token_stats"`
	ChunkerVersion  string          `json:"chunker_version"`
	// IndexVersion is a hash identifying the index build (chunker + embedding model + params).
	IndexVersion string `json:"index_version,omitempty"`
}

// ChunkTokenStats contains statistics about token counts in chunks.
type ChunkTokenStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

// EstimateTokens approximates the token count of text from its rune count.
func EstimateTokens(text string) int {
	tokens := int(math.Round(float64(utf8.RuneCountInString(text)) / TokensPerRune))
	if tokens < 1 {
		return 1
	}
	return tokens
}

// ComputeTokenStats estimates token counts for texts and summarizes them.
func ComputeTokenStats(texts []string) ChunkTokenStats {
	counts := make([]int, 0, len(texts))
	for _, t := range texts {
		counts = append(counts, EstimateTokens(t))
	}
	return computeTokenStats(counts)
}

// IndexVersion identifies an index build by chunker version, embedding model and window parameters.
func IndexVersion(embeddingModel string, chunkSize, overlap int) string {
	input := fmt.Sprintf("%s|%s|chunkSize=%d|overlap=%d", ChunkerVersion, embeddingModel, chunkSize, overlap)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}

// computeTokenStats computes min, max, mean, and p95 from token counts.
func computeTokenStats(tokenCounts []int) ChunkTokenStats {
	if len(tokenCounts) == 0 {
		return ChunkTokenStats{}
	}

	sorted := make([]int, len(tokenCounts))
	copy(sorted, tokenCounts)
	sort.Ints(sorted)

	sum := 0
	for _, count := range tokenCounts {
		sum += count
	}
	mean := float64(sum) / float64(len(tokenCounts))

	p95Index := int(math.Ceil(float64(len(sorted)) * 0.95))
	if p95Index >= len(sorted) {
		p95Index = len(sorted) - 1
	}

	return ChunkTokenStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100, // Round to 2 decimal places
		P95:  sorted[p95Index],
	}
}
