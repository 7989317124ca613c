// Package chunker splits page text into overlapping word-window chunks and
// derives the deterministic chunk identity used for idempotent upserts.
package chunker

import (
	"fmt"
	"strings"
)

// Config controls chunking behavior. Sizes are word counts.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
}

// DefaultConfig matches the corpus defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    512,
		ChunkOverlap: 50,
	}
}

// Validate rejects combinations that would loop or never advance.
// Called at startup; the chunker itself assumes a valid config.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("chunk_overlap must be non-negative, got %d", c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

// Split breaks page text into overlapping windows of cfg.ChunkSize words,
// advancing by ChunkSize-ChunkOverlap each step. Windows are joined with
// single spaces. Blank text yields no chunks; the final window may be short.
// The last window is the first one that reaches the end of the text, so no
// chunk is fully contained in its predecessor.
func Split(text string, cfg Config) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	stride := cfg.ChunkSize - cfg.ChunkOverlap
	var chunks []string
	for i := 0; ; i += stride {
		end := i + cfg.ChunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
