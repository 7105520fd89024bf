// Package ingest turns source documents (markdown, HTML, PDF, plain text)
// into embedded curriculum content: extract text, chunk it, embed the chunks,
// and persist them through the curriculum repository.
package ingest

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Extractor converts raw content to plain text.
type Extractor interface {
	Extract(content []byte) (string, error)
}

// ContentType identifies the MIME type of content for extraction.
type ContentType string

const (
	TypePlainText ContentType = "text/plain"
	TypeHTML      ContentType = "text/html"
	TypeMarkdown  ContentType = "text/markdown"
	TypePDF       ContentType = "application/pdf"
)

// ContentTypeFromExtension maps file extensions to content types.
func ContentTypeFromExtension(ext string) ContentType {
	switch strings.ToLower(ext) {
	case "md", "markdown":
		return TypeMarkdown
	case "html", "htm":
		return TypeHTML
	case "pdf":
		return TypePDF
	default:
		return TypePlainText
	}
}

// PlainTextExtractor returns content as-is.
type PlainTextExtractor struct{}

func (PlainTextExtractor) Extract(content []byte) (string, error) {
	return string(content), nil
}

// MarkdownExtractor strips markdown formatting by walking the goldmark AST
// and collecting only the text segments, one line per block.
type MarkdownExtractor struct{}

func (MarkdownExtractor) Extract(content []byte) (string, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(content))

	var out strings.Builder
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				out.Write(node.Segment.Value(content))
				if node.SoftLineBreak() || node.HardLineBreak() {
					out.WriteByte('\n')
				}
			}
		case *ast.String:
			if entering {
				out.Write(node.Value)
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				writeCodeLines(&out, content, n)
				return ast.WalkSkipChildren, nil
			}
		default:
			// Block boundaries become newlines.
			if !entering && n.Type() == ast.TypeBlock {
				out.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse markdown: %w", err)
	}
	return collapseWhitespace(out.String()), nil
}

func writeCodeLines(out *strings.Builder, source []byte, node ast.Node) {
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out.Write(seg.Value(source))
	}
	out.WriteByte('\n')
}

// HTMLExtractor pulls readable article text out of an HTML document.
type HTMLExtractor struct{}

func (HTMLExtractor) Extract(content []byte) (string, error) {
	pageURL, _ := url.Parse("file:///document.html")
	article, err := readability.FromReader(bytes.NewReader(content), pageURL)
	if err != nil {
		return "", fmt.Errorf("extract html: %w", err)
	}
	return collapseWhitespace(article.TextContent), nil
}

// collapseWhitespace trims lines and folds runs of blank lines into at most
// one paragraph break.
func collapseWhitespace(s string) string {
	var out strings.Builder
	emptyCount := 0
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if out.Len() > 0 {
				emptyCount++
			}
			continue
		}
		if emptyCount > 0 {
			out.WriteString("\n\n")
		} else if out.Len() > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(trimmed)
		emptyCount = 0
	}
	return strings.TrimSpace(out.String())
}
