package ingest

import (
	"strings"
	"testing"
)

func TestContentTypeFromExtension(t *testing.T) {
	cases := []struct {
		ext  string
		want ContentType
	}{
		{"md", TypeMarkdown},
		{"MARKDOWN", TypeMarkdown},
		{"html", TypeHTML},
		{"htm", TypeHTML},
		{"pdf", TypePDF},
		{"txt", TypePlainText},
		{"", TypePlainText},
	}
	for _, tc := range cases {
		if got := ContentTypeFromExtension(tc.ext); got != tc.want {
			t.Errorf("ContentTypeFromExtension(%q) = %q, want %q", tc.ext, got, tc.want)
		}
	}
}

func TestMarkdownExtractorStripsFormatting(t *testing.T) {
	md := `# Fractions

A fraction has a **numerator** and a *denominator*.

- halves
- thirds

See [the workbook](https://example.com/wb) for more.
`
	got, err := MarkdownExtractor{}.Extract([]byte(md))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	for _, markup := range []string{"#", "**", "*", "- ", "](", "https://example.com"} {
		if strings.Contains(got, markup) {
			t.Errorf("markup %q survived extraction:\n%s", markup, got)
		}
	}
	for _, word := range []string{"Fractions", "numerator", "denominator", "halves", "the workbook"} {
		if !strings.Contains(got, word) {
			t.Errorf("text %q missing from extraction:\n%s", word, got)
		}
	}
}

func TestMarkdownExtractorKeepsCodeBlocks(t *testing.T) {
	md := "Compute it:\n\n```\n1/2 + 1/4 = 3/4\n```\n"
	got, err := MarkdownExtractor{}.Extract([]byte(md))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(got, "1/2 + 1/4 = 3/4") {
		t.Errorf("code content missing:\n%s", got)
	}
}

func TestHTMLExtractor(t *testing.T) {
	html := `<html><head><title>Algebra</title><style>p{color:red}</style></head>
<body><article><h1>Linear equations</h1>
<p>An equation of the form ax + b = 0 has one solution.</p>
<script>alert("x")</script></article></body></html>`

	got, err := HTMLExtractor{}.Extract([]byte(html))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(got, "ax + b = 0") {
		t.Errorf("body text missing:\n%s", got)
	}
	if strings.Contains(got, "alert") || strings.Contains(got, "color:red") {
		t.Errorf("script or style leaked into extraction:\n%s", got)
	}
}

func TestPDFExtractorRejectsEmptyAndGarbage(t *testing.T) {
	e := NewPDFExtractor()
	if _, err := e.Extract(nil); err == nil {
		t.Error("empty content should fail")
	}
	if _, err := e.Extract([]byte("not a pdf")); err == nil {
		t.Error("non-PDF content should fail")
	}
}
