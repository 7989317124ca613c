// Package ingest walks the core and module document sets, extracts
// page-tracked text, chunks it, embeds in batches and writes to the index.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/regdocs/regrag/internal/chunker"
	"github.com/regdocs/regrag/internal/parser"
	"github.com/regdocs/regrag/internal/store"
)

// Embedder is the batch embedding contract the pipeline consumes.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// Index is the slice of the store contract the pipeline needs.
type Index interface {
	Upsert(ctx context.Context, records []store.Record) error
	SaveRunSummary(ctx context.Context, sum store.RunSummary) error
}

// Config controls one ingestion run.
type Config struct {
	Chunk                chunker.Config
	BatchSize            int
	PDFFallbackPdftotext bool
}

// FileError records a source file that failed extraction. These do not
// abort the run; the rest of the corpus is still ingested.
type FileError struct {
	Path string `json:"path"`
	Err  string `json:"error"`
}

// Summary reports what one run indexed.
type Summary struct {
	TotalChunks    int         `json:"total_chunks"`
	CoreDocs       int         `json:"core_docs"`
	ModuleDocs     int         `json:"module_docs"`
	EmbeddingModel string      `json:"embedding_model"`
	ChunkSize      int         `json:"chunk_size"`
	FailedFiles    []FileError `json:"failed_files,omitempty"`
}

// Pipeline ingests a corpus into the index. Runs are offline batch tasks;
// concurrent runs against the same index must be serialized by the operator.
type Pipeline struct {
	embedder Embedder
	index    Index
	cfg      Config
	log      *slog.Logger
}

// NewPipeline builds a pipeline with injected collaborators.
func NewPipeline(embedder Embedder, index Index, cfg Config, log *slog.Logger) (*Pipeline, error) {
	if err := cfg.Chunk.Validate(); err != nil {
		return nil, fmt.Errorf("chunk config: %w", err)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Pipeline{
		embedder: embedder,
		index:    index,
		cfg:      cfg,
		log:      log,
	}, nil
}

// Run ingests the core and module document sets and persists a summary.
// A single malformed file is recorded and skipped; an embedding or upsert
// failure is fatal for the run (chunks from completed batches remain valid,
// and a re-run overwrites them by ID).
func (p *Pipeline) Run(ctx context.Context, coreDir, modulesDir string) (*Summary, error) {
	sum := &Summary{
		EmbeddingModel: p.embedder.Model(),
		ChunkSize:      p.cfg.Chunk.ChunkSize,
	}

	var records []store.Record

	coreCount, err := p.ingestDir(ctx, coreDir, "core", &records, sum)
	if err != nil {
		return nil, err
	}
	sum.CoreDocs = coreCount

	moduleCount, err := p.ingestDir(ctx, modulesDir, "module", &records, sum)
	if err != nil {
		return nil, err
	}
	sum.ModuleDocs = moduleCount

	sum.TotalChunks = len(records)
	p.log.Info("corpus chunked",
		"total_chunks", len(records),
		"core_docs", coreCount,
		"module_docs", moduleCount,
		"failed_files", len(sum.FailedFiles))

	for start := 0; start < len(records); start += p.cfg.BatchSize {
		end := start + p.cfg.BatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		texts := make([]string, len(batch))
		for i, r := range batch {
			texts[i] = r.Text
		}
		vectors, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding batch %d-%d: %w", start, end, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedding batch %d-%d: got %d vectors for %d texts", start, end, len(vectors), len(batch))
		}
		for i := range batch {
			batch[i].Embedding = vectors[i]
		}
		if err := p.index.Upsert(ctx, batch); err != nil {
			return nil, fmt.Errorf("upserting batch %d-%d: %w", start, end, err)
		}
		p.log.Info("batch indexed", "from", start, "to", end, "total", len(records))
	}

	if err := p.index.SaveRunSummary(ctx, store.RunSummary{
		TotalChunks:    sum.TotalChunks,
		CoreDocs:       sum.CoreDocs,
		ModuleDocs:     sum.ModuleDocs,
		EmbeddingModel: sum.EmbeddingModel,
		ChunkSize:      sum.ChunkSize,
	}); err != nil {
		return nil, err
	}
	return sum, nil
}

// ingestDir parses every supported file in dir and appends its chunk
// records. Returns the number of files successfully parsed.
func (p *Pipeline) ingestDir(ctx context.Context, dir, docType string, records *[]store.Record, sum *Summary) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading %s document set: %w", docType, err)
	}

	parsed := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return parsed, ctx.Err()
		}
		if entry.IsDir() || !parser.IsSupportedExtension(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		doc, err := p.parseFile(path, entry.Name())
		if err != nil {
			p.log.Warn("skipping file", "path", path, "error", err)
			sum.FailedFiles = append(sum.FailedFiles, FileError{Path: path, Err: err.Error()})
			continue
		}
		parsed++

		before := len(*records)
		for _, page := range doc.Pages {
			if strings.TrimSpace(page.Text) == "" {
				continue
			}
			for idx, text := range chunker.Split(page.Text, p.cfg.Chunk) {
				*records = append(*records, store.Record{
					ID:         chunker.ChunkID(doc.Name, page.Number, idx),
					Document:   doc.Name,
					Page:       page.Number,
					DocType:    docType,
					ChunkIndex: idx,
					FilePath:   path,
					Text:       text,
				})
			}
		}
		p.log.Info("extracted document", "document", doc.Name, "doc_type", docType,
			"pages", len(doc.Pages), "chunks", len(*records)-before)
	}
	return parsed, nil
}

func (p *Pipeline) parseFile(path, name string) (*parser.Document, error) {
	pr, err := parser.ForFile(name)
	if err != nil {
		return nil, err
	}
	if pdf, ok := pr.(*parser.PDFParser); ok {
		pdf.FallbackPdftotext = p.cfg.PDFFallbackPdftotext
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	return pr.Parse(f, name)
}
