package chunker

import (
	"strings"
	"testing"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "w" + strings.Repeat("x", i%7)
	}
	return strings.Join(parts, " ")
}

func TestSplit_ChunkCount(t *testing.T) {
	// count = ceil((W-O)/(S-O)) for W > O.
	tests := []struct {
		name      string
		wordCount int
		cfg       Config
		want      int
	}{
		{"fits in one window", 100, Config{ChunkSize: 512, ChunkOverlap: 50}, 1},
		{"exactly one window", 512, Config{ChunkSize: 512, ChunkOverlap: 50}, 1},
		{"two windows", 600, Config{ChunkSize: 512, ChunkOverlap: 50}, 2},
		{"boundary of second stride", 924, Config{ChunkSize: 512, ChunkOverlap: 50}, 2},
		{"one past second stride", 925, Config{ChunkSize: 512, ChunkOverlap: 50}, 2},
		{"three windows", 1400, Config{ChunkSize: 512, ChunkOverlap: 50}, 3},
		{"no overlap", 30, Config{ChunkSize: 10, ChunkOverlap: 0}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(words(tt.wordCount), tt.cfg)
			if len(got) != tt.want {
				t.Errorf("Split of %d words: got %d chunks, want %d", tt.wordCount, len(got), tt.want)
			}
		})
	}
}

func TestSplit_BlankTextYieldsNothing(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t  \n"} {
		if got := Split(text, DefaultConfig()); len(got) != 0 {
			t.Errorf("Split(%q): expected 0 chunks, got %d", text, len(got))
		}
	}
}

func TestSplit_OverlapRepeatsTail(t *testing.T) {
	cfg := Config{ChunkSize: 4, ChunkOverlap: 2}
	got := Split("a b c d e f", cfg)
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(got), got)
	}
	if got[0] != "a b c d" {
		t.Errorf("chunk 0: got %q", got[0])
	}
	if got[1] != "c d e f" {
		t.Errorf("chunk 1: got %q", got[1])
	}
}

func TestSplit_CollapsesWhitespace(t *testing.T) {
	got := Split("  alpha\n\nbeta\t gamma ", Config{ChunkSize: 10, ChunkOverlap: 2})
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
	if got[0] != "alpha beta gamma" {
		t.Errorf("expected single-space joined words, got %q", got[0])
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"zero overlap", Config{ChunkSize: 100, ChunkOverlap: 0}, false},
		{"overlap equals size", Config{ChunkSize: 100, ChunkOverlap: 100}, true},
		{"overlap exceeds size", Config{ChunkSize: 100, ChunkOverlap: 150}, true},
		{"zero size", Config{ChunkSize: 0, ChunkOverlap: 0}, true},
		{"negative overlap", Config{ChunkSize: 100, ChunkOverlap: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestChunkID_Deterministic(t *testing.T) {
	a := ChunkID("MPP SOP.pdf", 12, 3)
	b := ChunkID("MPP SOP.pdf", 12, 3)
	if a != b {
		t.Errorf("same inputs produced different IDs: %s vs %s", a, b)
	}
	if len(a) != 32 {
		t.Errorf("expected 32-char hex ID, got %q", a)
	}
}

func TestChunkID_DistinctInputs(t *testing.T) {
	seen := map[string]string{}
	docs := []string{"MPP SOP.pdf", "Appendix I.pdf", "Module 1.pdf"}
	for _, doc := range docs {
		for page := 1; page <= 20; page++ {
			for idx := 0; idx < 5; idx++ {
				id := ChunkID(doc, page, idx)
				key := doc + "|" + string(rune(page)) + "|" + string(rune(idx))
				if prev, ok := seen[id]; ok {
					t.Fatalf("collision: %s and %s both map to %s", prev, key, id)
				}
				seen[id] = key
			}
		}
	}
}
