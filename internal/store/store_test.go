package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/regdocs/regrag/internal/chunker"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func rec(doc string, page, idx int, docType, text string, emb []float32) Record {
	return Record{
		ID:         chunker.ChunkID(doc, page, idx),
		Document:   doc,
		Page:       page,
		DocType:    docType,
		ChunkIndex: idx,
		FilePath:   "/corpus/" + doc,
		Text:       text,
		Embedding:  emb,
	}
}

func TestUpsert_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	batch := []Record{
		rec("SOP.pdf", 1, 0, "core", "first", []float32{1, 0, 0}),
		rec("SOP.pdf", 1, 1, "core", "second", []float32{0, 1, 0}),
	}
	if err := s.Upsert(ctx, batch); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	// Same IDs again, new text: must overwrite, not duplicate.
	batch[0].Text = "first revised"
	if err := s.Upsert(ctx, batch); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 records after re-upsert, got %d", n)
	}

	got, err := s.ExactGet(ctx, Filter{Document: "SOP.pdf", Page: 1}, 10)
	if err != nil {
		t.Fatalf("exact get: %v", err)
	}
	if got[0].Text != "first revised" {
		t.Errorf("expected overwritten text, got %q", got[0].Text)
	}
}

func TestUpsert_DimensionMismatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, []Record{rec("A.pdf", 1, 0, "core", "x", []float32{1, 0, 0})}); err != nil {
		t.Fatalf("seed upsert: %v", err)
	}
	err := s.Upsert(ctx, []Record{rec("B.pdf", 1, 0, "core", "y", []float32{1, 0})})
	var dimErr *DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
}

func TestSimilarityQuery_FilterAndDistance(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Upsert(ctx, []Record{
		rec("SOP.pdf", 1, 0, "core", "exact match", []float32{1, 0, 0}),
		rec("SOP.pdf", 2, 0, "core", "orthogonal", []float32{0, 1, 0}),
		rec("Module 1.pdf", 3, 0, "module", "module exact", []float32{1, 0, 0}),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.SimilarityQuery(ctx, []float32{1, 0, 0}, 10, Filter{DocType: "core"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 core results, got %d", len(got))
	}
	for _, r := range got {
		if r.DocType != "core" {
			t.Errorf("filter leaked doc_type %q", r.DocType)
		}
	}
	// Identical vector has distance ~0, orthogonal ~1.
	var exact, ortho *Result
	for i := range got {
		switch got[i].Text {
		case "exact match":
			exact = &got[i]
		case "orthogonal":
			ortho = &got[i]
		}
	}
	if exact == nil || ortho == nil {
		t.Fatalf("missing expected results: %+v", got)
	}
	if exact.Distance > 1e-6 {
		t.Errorf("exact match distance = %f, want ~0", exact.Distance)
	}
	if ortho.Distance < 0.99 || ortho.Distance > 1.01 {
		t.Errorf("orthogonal distance = %f, want ~1", ortho.Distance)
	}
}

func TestSimilarityQuery_EmptyStore(t *testing.T) {
	s := openTestStore(t)
	got, err := s.SimilarityQuery(context.Background(), []float32{1, 0, 0}, 5, Filter{})
	if err != nil {
		t.Fatalf("query on empty store: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}

func TestSimilarityQuery_QueryDimensionMismatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.Upsert(ctx, []Record{rec("A.pdf", 1, 0, "core", "x", []float32{1, 0, 0})}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	_, err := s.SimilarityQuery(ctx, []float32{1, 0}, 5, Filter{})
	var dimErr *DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
}

func TestSimilarityQuery_ContradictoryFilter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.Upsert(ctx, []Record{rec("A.pdf", 1, 0, "module", "x", []float32{1, 0, 0})}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// doc_type=core on a module-only store: zero results, no error.
	got, err := s.SimilarityQuery(ctx, []float32{1, 0, 0}, 5, Filter{DocType: "core"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected 0 results, got %d", len(got))
	}
}

func TestExactGet_FilterAndOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Upsert(ctx, []Record{
		rec("A.pdf", 3, 0, "core", "page three", []float32{1, 0, 0}),
		rec("A.pdf", 1, 0, "core", "page one", []float32{0, 1, 0}),
		rec("A.pdf", 1, 1, "core", "page one again", []float32{0, 0, 1}),
		rec("B.pdf", 2, 0, "core", "other doc", []float32{0, 0, 1}),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.ExactGet(ctx, Filter{Document: "A.pdf"}, 100)
	if err != nil {
		t.Fatalf("exact get: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	wantPages := []int{1, 1, 3}
	for i, r := range got {
		if r.Page != wantPages[i] {
			t.Errorf("result %d: page %d, want %d", i, r.Page, wantPages[i])
		}
		if r.Document != "A.pdf" {
			t.Errorf("filter leaked document %q", r.Document)
		}
	}

	// Compound filter: document AND page.
	got, err = s.ExactGet(ctx, Filter{Document: "A.pdf", Page: 1}, 100)
	if err != nil {
		t.Fatalf("exact get: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 results for page 1, got %d", len(got))
	}
}

func TestRunSummary_Roundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if sum, err := s.LatestRunSummary(ctx); err != nil || sum != nil {
		t.Fatalf("expected no summary on fresh store, got %+v, %v", sum, err)
	}

	want := RunSummary{
		TotalChunks:    42,
		CoreDocs:       2,
		ModuleDocs:     7,
		EmbeddingModel: "text-embedding-3-large",
		ChunkSize:      512,
	}
	if err := s.SaveRunSummary(ctx, want); err != nil {
		t.Fatalf("save summary: %v", err)
	}

	got, err := s.LatestRunSummary(ctx)
	if err != nil {
		t.Fatalf("latest summary: %v", err)
	}
	if got == nil {
		t.Fatal("expected a summary")
	}
	if got.TotalChunks != want.TotalChunks || got.ModuleDocs != want.ModuleDocs ||
		got.EmbeddingModel != want.EmbeddingModel || got.ChunkSize != want.ChunkSize {
		t.Errorf("summary mismatch: got %+v, want %+v", got, want)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestBlobRoundtrip(t *testing.T) {
	in := []float32{0.25, -1.5, 3.75, 0}
	out := bytesToFloat32Slice(float32SliceToBytes(in))
	if len(out) != len(in) {
		t.Fatalf("length mismatch: %d vs %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("index %d: %f != %f", i, in[i], out[i])
		}
	}
}
