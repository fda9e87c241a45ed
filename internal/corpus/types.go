package corpus

import "context"

// Document is the raw text of one page of a source file.
type Document struct {
	Source string // Path relative to the corpus root, forward slashes
	Page   int    // 1-based page number; single-page formats use 1
	Text   string
}

// Loader extracts page text from a single file.
type Loader interface {
	Load(ctx context.Context, path string) ([]Document, error)
}

// ScannedFile represents a supported file found during a corpus scan.
type ScannedFile struct {
	RelPath string // Relative path from corpus root (e.g., "guides/intro.pdf")
	AbsPath string
	Ext     string // Lower-case extension including the dot
}
