// Package retrieve is the query-time engine: embed the question, over-fetch
// candidates from the index, rerank by distance, truncate, and attach a
// confidence score.
package retrieve

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/regdocs/regrag/internal/store"
)

// Over-fetch factor for candidate retrieval before reranking.
const overFetch = 2

// CrossReferenceTopK is the fixed per-side result count for cross-reference
// comparisons.
const CrossReferenceTopK = 5

// Embedder is the query-side embedding contract.
type Embedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// Index is the slice of the store contract the engine needs.
type Index interface {
	SimilarityQuery(ctx context.Context, vector []float32, n int, f store.Filter) ([]store.Result, error)
}

// Scorer is an optional secondary reranking signal applied after the
// distance sort. The shipped engine uses none; the hook exists so a lexical
// scorer can be fused in later without touching the engine.
type Scorer interface {
	Rescore(query string, results []Result) []Result
}

// Result is one retrieved source, ready for citation.
type Result struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	Document   string  `json:"document"`
	Page       int     `json:"page"`
	DocType    string  `json:"doc_type"`
	Distance   float64 `json:"distance"`
	Confidence float64 `json:"confidence"`
}

// Error wraps an adapter or store failure during retrieval.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("retrieve %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Engine performs hybrid retrieval. Only the semantic path is implemented;
// see Scorer for the lexical extension point.
type Engine struct {
	embedder Embedder
	index    Index
	scorer   Scorer
	log      *slog.Logger
}

// NewEngine builds an engine with injected collaborators. scorer may be nil.
func NewEngine(embedder Embedder, index Index, scorer Scorer, log *slog.Logger) *Engine {
	return &Engine{
		embedder: embedder,
		index:    index,
		scorer:   scorer,
		log:      log,
	}
}

// Retrieve returns up to topK sources for the question, best first.
// docType narrows the search to "core" or "module" records; empty means all.
// Zero candidates is a normal outcome, returned as an empty slice.
func (e *Engine) Retrieve(ctx context.Context, question string, topK int, docType string) ([]Result, error) {
	return e.Search(ctx, question, topK, store.Filter{DocType: docType})
}

// Search is Retrieve with a full metadata filter, used by the extract path
// to scope a term search to one document or page.
func (e *Engine) Search(ctx context.Context, query string, topK int, f store.Filter) ([]Result, error) {
	if topK <= 0 {
		topK = 5
	}

	vector, err := e.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, &Error{Op: "embed query", Err: err}
	}

	candidates, err := e.index.SimilarityQuery(ctx, vector, overFetch*topK, f)
	if err != nil {
		return nil, &Error{Op: "similarity query", Err: err}
	}

	// Rerank: the store's result order is unspecified.
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Distance < candidates[j].Distance })
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, Result{
			ID:         c.ID,
			Text:       c.Text,
			Document:   c.Document,
			Page:       c.Page,
			DocType:    c.DocType,
			Distance:   c.Distance,
			Confidence: Confidence(c.Distance),
		})
	}
	if e.scorer != nil {
		results = e.scorer.Rescore(query, results)
	}

	e.log.Debug("retrieved sources", "query_len", len(query), "top_k", topK, "results", len(results))
	return results, nil
}

// CrossReference retrieves the top sources for the query from module
// material and from core documents, side by side. moduleName optionally
// narrows the module side to a single document.
func (e *Engine) CrossReference(ctx context.Context, query, moduleName string) (moduleSide, coreSide []Result, err error) {
	moduleSide, err = e.Search(ctx, query, CrossReferenceTopK, store.Filter{
		DocType:  "module",
		Document: moduleName,
	})
	if err != nil {
		return nil, nil, err
	}
	coreSide, err = e.Search(ctx, query, CrossReferenceTopK, store.Filter{DocType: "core"})
	if err != nil {
		return nil, nil, err
	}
	return moduleSide, coreSide, nil
}

// Confidence maps cosine distance to a human-facing [0,1] relevance score.
// The linear map assumes the metric's [0,2] range; values outside it are
// clamped so the contract holds for any underlying metric.
func Confidence(distance float64) float64 {
	c := 1.0 - distance/2.0
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
