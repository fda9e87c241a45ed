package corpus

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFLoader extracts plain text from each page of a PDF.
type PDFLoader struct{}

// Load returns one Document per non-empty page. Source is left for the caller to fill in.
func (PDFLoader) Load(ctx context.Context, path string) (docs []Document, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			docs = nil
			err = fmt.Errorf("failed to parse pdf %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from %s page %d: %w", path, i, err)
		}
		if text == "" {
			continue
		}

		docs = append(docs, Document{Page: i, Text: text})
	}

	return docs, nil
}
