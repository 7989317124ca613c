package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/regdocs/regrag/internal/chunker"
	"github.com/regdocs/regrag/internal/config"
	"github.com/regdocs/regrag/internal/embed"
	"github.com/regdocs/regrag/internal/ingest"
	"github.com/regdocs/regrag/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	coreDir := flag.String("core", cfg.CoreDir, "directory of authoritative documents")
	modulesDir := flag.String("modules", cfg.ModulesDir, "directory of training module documents")
	flag.Parse()

	idx, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open index", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer idx.Close()

	embedder := embed.NewClient(cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbedBatchSize)

	pipe, err := ingest.NewPipeline(embedder, idx, ingest.Config{
		Chunk:                chunker.Config{ChunkSize: cfg.ChunkSize, ChunkOverlap: cfg.ChunkOverlap},
		BatchSize:            cfg.EmbedBatchSize,
		PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
	}, log)
	if err != nil {
		log.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	summary, err := pipe.Run(ctx, *coreDir, *modulesDir)
	if err != nil {
		log.Error("ingestion failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(summary)

	if len(summary.FailedFiles) > 0 {
		log.Warn("some files failed to ingest", "count", len(summary.FailedFiles))
	}
}
