package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/edusage/sage"
	"github.com/edusage/sage/store/sqlite"
)

// IngestResult holds the outcome of an ingest operation.
type IngestResult struct {
	Items      []sage.CurriculumContent
	ChunkCount int
}

// Ingestor provides end-to-end curriculum ingestion: extract text, chunk it,
// embed the chunks, and persist one CurriculumContent entity per chunk.
type Ingestor struct {
	curriculum *sqlite.CurriculumRepo
	embed      EmbedFunc
	chunker    Chunker
	extractors map[ContentType]Extractor
	batchSize  int
	log        *slog.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithChunker replaces the default recursive chunker.
func WithChunker(c Chunker) Option {
	return func(ing *Ingestor) { ing.chunker = c }
}

// WithExtractor registers or replaces the extractor for a content type.
func WithExtractor(ct ContentType, e Extractor) Option {
	return func(ing *Ingestor) { ing.extractors[ct] = e }
}

// WithBatchSize sets the embedding batch size.
func WithBatchSize(n int) Option {
	return func(ing *Ingestor) {
		if n > 0 {
			ing.batchSize = n
		}
	}
}

// WithLogger sets the logger for ingest progress.
func WithLogger(log *slog.Logger) Option {
	return func(ing *Ingestor) {
		if log != nil {
			ing.log = log
		}
	}
}

// NewIngestor creates an Ingestor with sensible defaults. embed may be nil,
// in which case content is stored without embeddings and is excluded from
// similarity search.
func NewIngestor(curriculum *sqlite.CurriculumRepo, embed EmbedFunc, opts ...Option) *Ingestor {
	ing := &Ingestor{
		curriculum: curriculum,
		embed:      embed,
		chunker:    NewRecursiveChunker(),
		extractors: map[ContentType]Extractor{
			TypePlainText: PlainTextExtractor{},
			TypeMarkdown:  MarkdownExtractor{},
			TypeHTML:      HTMLExtractor{},
			TypePDF:       NewPDFExtractor(),
		},
		batchSize: 64,
		log:       slog.Default(),
	}
	for _, o := range opts {
		o(ing)
	}
	return ing
}

// IngestText chunks and stores plain text as curriculum content.
func (ing *Ingestor) IngestText(ctx context.Context, text, title, subject string, difficulty int) (IngestResult, error) {
	return ing.store(ctx, text, title, subject, difficulty, "lesson")
}

// IngestFile ingests file content, detecting the content type from the
// filename extension.
func (ing *Ingestor) IngestFile(ctx context.Context, content []byte, filename, subject string, difficulty int) (IngestResult, error) {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	ct := ContentTypeFromExtension(ext)

	extractor, ok := ing.extractors[ct]
	if !ok {
		extractor = PlainTextExtractor{}
	}
	text, err := extractor.Extract(content)
	if err != nil {
		return IngestResult{}, fmt.Errorf("extract %s: %w", ct, err)
	}

	title := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return ing.store(ctx, text, title, subject, difficulty, string(ct))
}

// IngestReader reads all content from r and ingests it, detecting content
// type from filename.
func (ing *Ingestor) IngestReader(ctx context.Context, r io.Reader, filename, subject string, difficulty int) (IngestResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return IngestResult{}, fmt.Errorf("read: %w", err)
	}
	return ing.IngestFile(ctx, data, filename, subject, difficulty)
}

func (ing *Ingestor) store(ctx context.Context, text, title, subject string, difficulty int, contentType string) (IngestResult, error) {
	chunks := ing.chunker.Chunk(text)
	if len(chunks) == 0 {
		return IngestResult{}, nil
	}

	items := make([]sage.CurriculumContent, len(chunks))
	for i, chunk := range chunks {
		t := title
		if len(chunks) > 1 {
			t = fmt.Sprintf("%s (part %d)", title, i+1)
		}
		items[i] = sage.NewCurriculumContent(t, chunk, subject, difficulty, contentType)
	}

	if err := ing.embedAll(ctx, items); err != nil {
		return IngestResult{}, err
	}

	created, err := ing.curriculum.CreateMany(ctx, items)
	if err != nil {
		return IngestResult{}, err
	}
	ing.log.Info("ingest: stored content", "title", title, "subject", subject, "chunks", len(created))
	return IngestResult{Items: created, ChunkCount: len(created)}, nil
}

// embedAll embeds item content in batches of batchSize.
func (ing *Ingestor) embedAll(ctx context.Context, items []sage.CurriculumContent) error {
	if ing.embed == nil {
		return nil
	}
	for i := 0; i < len(items); i += ing.batchSize {
		end := i + ing.batchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[i:end]
		texts := make([]string, len(batch))
		for j, it := range batch {
			texts[j] = it.Content
		}
		vectors, err := ing.embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch %d-%d: %w", i, end, err)
		}
		for j := range batch {
			if j < len(vectors) {
				items[i+j].Embedding = vectors[j]
			}
		}
	}
	return nil
}
