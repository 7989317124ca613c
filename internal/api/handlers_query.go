package api

import (
	"encoding/json"
	"net/http"

	"github.com/regdocs/regrag/internal/generate"
)

// queryRequest asks a natural-language question of the corpus.
type queryRequest struct {
	Question       string `json:"question"`
	TopK           int    `json:"top_k"`
	DocType        string `json:"doc_type"`
	IncludeContext *bool  `json:"include_context"`
}

type querySource struct {
	Quote      string  `json:"quote"`
	Document   string  `json:"document"`
	Page       int     `json:"page"`
	Confidence float64 `json:"confidence"`
	DocType    string  `json:"doc_type"`
}

type queryResponse struct {
	Query    string         `json:"query"`
	Answer   string         `json:"answer"`
	Sources  []querySource  `json:"sources"`
	Metadata map[string]any `json:"metadata"`
}

const sourceQuoteLimit = 500

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid JSON body")
		return
	}
	if req.Question == "" {
		s.badRequest(w, "question is required")
		return
	}
	if req.TopK <= 0 {
		req.TopK = 5
	}
	if !validDocType(req.DocType) {
		s.badRequest(w, `doc_type must be "core" or "module"`)
		return
	}
	includeContext := req.IncludeContext == nil || *req.IncludeContext

	sources, err := s.retriever.Retrieve(r.Context(), req.Question, req.TopK, req.DocType)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if len(sources) == 0 {
		s.notFound(w, "no relevant documents found")
		return
	}

	var answer string
	if includeContext {
		answer, err = s.gen.Answer(r.Context(), req.Question, sources)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
	}

	out := queryResponse{
		Query:   req.Question,
		Answer:  answer,
		Sources: make([]querySource, 0, len(sources)),
		Metadata: map[string]any{
			"total_sources": len(sources),
			"doc_filter":    req.DocType,
			"model":         s.gen.Model(),
		},
	}
	for _, src := range sources {
		out.Sources = append(out.Sources, querySource{
			Quote:      generate.Truncate(src.Text, sourceQuoteLimit),
			Document:   src.Document,
			Page:       src.Page,
			Confidence: src.Confidence,
			DocType:    src.DocType,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func validDocType(t string) bool {
	return t == "" || t == "core" || t == "module"
}
