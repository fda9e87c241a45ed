package corpus

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// MarkdownLoader extracts the readable text of a markdown file, dropping markup.
type MarkdownLoader struct {
	parser goldmark.Markdown
}

// NewMarkdownLoader creates a markdown loader with table support enabled.
func NewMarkdownLoader() *MarkdownLoader {
	return &MarkdownLoader{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// Load returns a single page holding the text of every block, one block per line.
func (l *MarkdownLoader) Load(ctx context.Context, path string) ([]Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body := l.Extract(content)
	if body == "" {
		return nil, nil
	}
	return []Document{{Page: 1, Text: body}}, nil
}

// Extract walks the markdown AST and joins the text of its leaf blocks.
func (l *MarkdownLoader) Extract(content []byte) string {
	doc := l.parser.Parser().Parse(text.NewReader(content))

	var blocks []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
			if t := extractTextFromNode(n, content); t != "" {
				blocks = append(blocks, t)
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if t := extractLines(n, content); t != "" {
				blocks = append(blocks, t)
			}
			return ast.WalkSkipChildren, nil
		}

		if strings.Contains(n.Kind().String(), "TableCell") {
			if t := extractTextFromNode(n, content); t != "" {
				blocks = append(blocks, t)
			}
			return ast.WalkSkipChildren, nil
		}

		return ast.WalkContinue, nil
	})

	return strings.Join(blocks, "\n")
}

// extractTextFromNode collects the inline text below n.
func extractTextFromNode(n ast.Node, content []byte) string {
	var b strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}

func extractLines(n ast.Node, content []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(content))
	}
	return strings.TrimSpace(b.String())
}
