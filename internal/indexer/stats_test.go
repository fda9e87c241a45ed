package indexer

import (
	"strings"
	"testing"
)

func TestComputeTokenStats(t *testing.T) {
	tests := []struct {
		name        string
		tokenCounts []int
		want        ChunkTokenStats
	}{
		{
			name:        "empty",
			tokenCounts: []int{},
			want:        ChunkTokenStats{},
		},
		{
			name:        "single value",
			tokenCounts: []int{100},
			want:        ChunkTokenStats{Min: 100, Max: 100, Mean: 100, P95: 100},
		},
		{
			name:        "multiple values",
			tokenCounts: []int{10, 20, 30, 40, 50},
			want:        ChunkTokenStats{Min: 10, Max: 50, Mean: 30, P95: 50},
		},
		{
			name:        "unsorted values",
			tokenCounts: []int{50, 10, 30, 20, 40},
			want:        ChunkTokenStats{Min: 10, Max: 50, Mean: 30, P95: 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeTokenStats(tt.tokenCounts)
			if got != tt.want {
				t.Errorf("computeTokenStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 1 {
		t.Errorf("EstimateTokens(\"\") = %d, want minimum 1", got)
	}
	if got := EstimateTokens(strings.Repeat("a", 400)); got != 100 {
		t.Errorf("EstimateTokens(400 runes) = %d, want 100", got)
	}
	if got := EstimateTokens(strings.Repeat("ż", 8)); got != 2 {
		t.Errorf("EstimateTokens counts runes, got %d, want 2", got)
	}
}

func TestComputeTokenStats_FromTexts(t *testing.T) {
	stats := ComputeTokenStats([]string{strings.Repeat("a", 40), strings.Repeat("b", 80)})
	if stats.Min != 10 || stats.Max != 20 || stats.Mean != 15 {
		t.Errorf("ComputeTokenStats() = %+v", stats)
	}
}

func TestIndexVersion(t *testing.T) {
	a := IndexVersion("model-a", 500, 20)
	if len(a) != 16 {
		t.Errorf("IndexVersion length = %d, want 16", len(a))
	}
	if a != IndexVersion("model-a", 500, 20) {
		t.Error("IndexVersion should be deterministic")
	}
	if a == IndexVersion("model-b", 500, 20) {
		t.Error("IndexVersion should change with the embedding model")
	}
	if a == IndexVersion("model-a", 400, 20) {
		t.Error("IndexVersion should change with the chunk size")
	}
}
