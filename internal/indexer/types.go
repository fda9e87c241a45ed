package indexer

// Chunk is a bounded slice of normalized page text, the unit of retrieval.
type Chunk struct {
	Source  string // Corpus-relative path of the originating file
	Page    int    // 1-based page within Source
	Ordinal int    // Chunk index within the page (starts at 0)
	Seq     int    // Insertion order across the whole corpus, used to break ranking ties
	Text    string
}
