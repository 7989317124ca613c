package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/regdocs/regrag/internal/api"
	"github.com/regdocs/regrag/internal/config"
	"github.com/regdocs/regrag/internal/embed"
	"github.com/regdocs/regrag/internal/generate"
	"github.com/regdocs/regrag/internal/retrieve"
	"github.com/regdocs/regrag/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	idx, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open index", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer idx.Close()

	// Initialize clients.
	embedder := embed.NewClient(cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbedBatchSize)
	gen := generate.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)

	engine := retrieve.NewEngine(embedder, idx, nil, log)
	srv := api.NewServer(engine, gen, idx, log)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting regrag", "port", cfg.Port, "embedding_model", cfg.EmbeddingModel, "llm_model", cfg.LLMModel)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
