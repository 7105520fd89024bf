package ingest

import (
	"context"
	"strings"
)

// Chunker splits text into chunks suitable for embedding.
type Chunker interface {
	Chunk(text string) []string
}

// EmbedFunc embeds texts into vectors, one vector per input text.
type EmbedFunc func(ctx context.Context, texts []string) ([][]float32, error)

// ChunkerOption configures a chunker implementation.
type ChunkerOption func(*chunkerConfig)

type chunkerConfig struct {
	maxTokens     int
	overlapTokens int
}

func defaultChunkerConfig() chunkerConfig {
	return chunkerConfig{maxTokens: 512, overlapTokens: 50}
}

// WithMaxTokens sets the maximum tokens per chunk (approximated as tokens*4 chars).
func WithMaxTokens(n int) ChunkerOption {
	return func(c *chunkerConfig) { c.maxTokens = n }
}

// WithOverlapTokens sets the overlap between chunks in tokens.
func WithOverlapTokens(n int) ChunkerOption {
	return func(c *chunkerConfig) { c.overlapTokens = n }
}

// RecursiveChunker splits text by paragraphs, then sentences, then words,
// merging adjacent segments back together up to the size limit with a small
// overlap between consecutive chunks.
type RecursiveChunker struct {
	maxChars     int
	overlapChars int
}

// NewRecursiveChunker creates a RecursiveChunker with the given options.
func NewRecursiveChunker(opts ...ChunkerOption) *RecursiveChunker {
	cfg := defaultChunkerConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &RecursiveChunker{
		maxChars:     cfg.maxTokens * 4,
		overlapChars: cfg.overlapTokens * 4,
	}
}

// Chunk splits text into overlapping chunks no longer than the configured
// maximum.
func (rc *RecursiveChunker) Chunk(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= rc.maxChars {
		return []string{text}
	}
	return mergeWithOverlap(rc.split(text), rc.maxChars, rc.overlapChars)
}

func (rc *RecursiveChunker) split(text string) []string {
	var segments []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if len(p) <= rc.maxChars {
			segments = append(segments, p)
			continue
		}
		for _, s := range splitSentences(p) {
			if len(s) <= rc.maxChars {
				segments = append(segments, s)
			} else {
				segments = append(segments, splitWords(s, rc.maxChars)...)
			}
		}
	}
	return segments
}

// splitSentences cuts on sentence-ending punctuation followed by whitespace.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && (text[i+1] == ' ' || text[i+1] == '\n') {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

func splitWords(text string, maxChars int) []string {
	words := strings.Fields(text)
	var out []string
	var cur strings.Builder
	for _, w := range words {
		if cur.Len() > 0 && cur.Len()+1+len(w) > maxChars {
			out = append(out, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// mergeWithOverlap packs segments into chunks up to maxChars, carrying the
// tail of each chunk into the next one as overlap.
func mergeWithOverlap(segments []string, maxChars, overlapChars int) []string {
	var chunks []string
	var cur strings.Builder
	for _, seg := range segments {
		if cur.Len() > 0 && cur.Len()+1+len(seg) > maxChars {
			chunk := cur.String()
			chunks = append(chunks, chunk)
			cur.Reset()
			if overlapChars > 0 && len(chunk) > overlapChars {
				tail := chunk[len(chunk)-overlapChars:]
				if idx := strings.IndexByte(tail, ' '); idx >= 0 {
					tail = tail[idx+1:]
				}
				// Carry the tail only when the next segment still fits
				// behind it within the chunk limit.
				if tail != "" && len(tail)+1+len(seg) <= maxChars {
					cur.WriteString(tail)
				}
			}
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(seg)
	}
	if strings.TrimSpace(cur.String()) != "" {
		chunks = append(chunks, strings.TrimSpace(cur.String()))
	}
	return chunks
}
