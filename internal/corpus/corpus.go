package corpus

import (
	"context"
	"errors"
	"fmt"

	"pdfqa/internal/contextutil"
)

// ErrUnreadableFiles is returned by LoadAll when at least one file could not be extracted.
var ErrUnreadableFiles = errors.New("unreadable corpus files")

// Corpus loads every supported document under a directory.
type Corpus struct {
	loaders map[string]Loader
	scanner *Scanner
}

// New creates a corpus with the default loaders for PDF, markdown and plain text.
func New() *Corpus {
	return NewWithLoaders(map[string]Loader{
		".pdf": PDFLoader{},
		".md":  NewMarkdownLoader(),
		".txt": TextLoader{},
	})
}

// NewWithLoaders creates a corpus dispatching on the given extension to loader map.
func NewWithLoaders(loaders map[string]Loader) *Corpus {
	exts := make([]string, 0, len(loaders))
	for ext := range loaders {
		exts = append(exts, ext)
	}
	return &Corpus{
		loaders: loaders,
		scanner: NewScanner(exts...),
	}
}

// LoadResult summarizes one LoadAll call.
type LoadResult struct {
	Documents []Document
	Files     int
	Failed    []string
}

// LoadAll scans dir and extracts every supported file in sorted order.
// Files that fail to load are logged and listed in Failed; the returned error then
// wraps ErrUnreadableFiles so callers can refuse to build a partial index.
func (c *Corpus) LoadAll(ctx context.Context, dir string) (LoadResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	files, err := c.scanner.Scan(ctx, dir)
	if err != nil {
		return LoadResult{}, err
	}

	result := LoadResult{Files: len(files)}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		loader := c.loaders[file.Ext]
		docs, err := loader.Load(ctx, file.AbsPath)
		if err != nil {
			logger.WarnContext(ctx, "failed to load document", "path", file.RelPath, "error", err)
			result.Failed = append(result.Failed, file.RelPath)
			continue
		}

		for _, doc := range docs {
			doc.Source = file.RelPath
			result.Documents = append(result.Documents, doc)
		}
		logger.DebugContext(ctx, "loaded document", "path", file.RelPath, "pages", len(docs))
	}

	if len(result.Failed) > 0 {
		return result, fmt.Errorf("%w: %d of %d files", ErrUnreadableFiles, len(result.Failed), len(files))
	}

	return result, nil
}
