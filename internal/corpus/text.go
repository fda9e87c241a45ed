package corpus

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// TextLoader reads a plain text file as a single page.
type TextLoader struct{}

func (TextLoader) Load(ctx context.Context, path string) ([]Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(content)) == "" {
		return nil, nil
	}
	return []Document{{Page: 1, Text: string(content)}}, nil
}
