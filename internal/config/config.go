// Package config loads environment-based configuration, with .env support,
// and validates it before anything talks to the network.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Placeholder API key values that must be rejected as unconfigured.
var placeholderKeys = map[string]bool{
	"":         true,
	"lmstudio": true,
	"changeme": true,
}

type Config struct {
	Port string

	// OpenAI
	OpenAIAPIKey   string
	EmbeddingModel string
	LLMModel       string

	// Chunking
	ChunkSize    int
	ChunkOverlap int

	// Ingestion
	EmbedBatchSize       int
	CoreDir              string
	ModulesDir           string
	PDFFallbackPdftotext bool

	// Index
	DBPath string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first, if present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port: envOr("PORT", "8000"),

		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel: envOr("EMBEDDING_MODEL", "text-embedding-3-large"),
		LLMModel:       envOr("LLM_MODEL", "gpt-4"),

		ChunkSize:    envInt("CHUNK_SIZE", 512),
		ChunkOverlap: envInt("CHUNK_OVERLAP", 50),

		EmbedBatchSize:       envInt("EMBED_BATCH_SIZE", 100),
		CoreDir:              envOr("CORE_DIR", "./corpus/core"),
		ModulesDir:           envOr("MODULES_DIR", "./corpus/modules"),
		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		DBPath: envOr("DB_PATH", "./data/regrag.db"),
	}
}

// Validate fails fast on configuration that would only surface as broken
// network calls or a non-terminating chunker later.
func (c Config) Validate() error {
	if placeholderKeys[c.OpenAIAPIKey] {
		return fmt.Errorf("OPENAI_API_KEY is missing or a placeholder")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be in [0, CHUNK_SIZE)", c.ChunkOverlap)
	}
	if c.EmbedBatchSize <= 0 {
		return fmt.Errorf("EMBED_BATCH_SIZE must be positive, got %d", c.EmbedBatchSize)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
