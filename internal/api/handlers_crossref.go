package api

import (
	"encoding/json"
	"net/http"

	"github.com/regdocs/regrag/internal/generate"
	"github.com/regdocs/regrag/internal/retrieve"
)

// crossReferenceRequest compares module training material against the
// authoritative core documents on a given topic.
type crossReferenceRequest struct {
	Query      string `json:"query"`
	ModuleName string `json:"module_name"`
}

type crossRefSource struct {
	Document string `json:"document"`
	Page     int    `json:"page"`
	Text     string `json:"text"`
}

type crossReferenceResponse struct {
	Query             string           `json:"query"`
	ModuleFilter      string           `json:"module_filter,omitempty"`
	ModuleSources     []crossRefSource `json:"module_sources"`
	CoreSources       []crossRefSource `json:"core_sources"`
	AlignmentAnalysis string           `json:"alignment_analysis"`
	Metadata          map[string]any   `json:"metadata"`
}

const crossRefQuoteLimit = 300

func (s *Server) handleCrossReference(w http.ResponseWriter, r *http.Request) {
	var req crossReferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid JSON body")
		return
	}
	if req.Query == "" {
		s.badRequest(w, "query is required")
		return
	}

	moduleSide, coreSide, err := s.retriever.CrossReference(r.Context(), req.Query, req.ModuleName)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	analysis, err := s.gen.AlignmentAnalysis(r.Context(), req.Query, moduleSide, coreSide)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, crossReferenceResponse{
		Query:             req.Query,
		ModuleFilter:      req.ModuleName,
		ModuleSources:     toCrossRefSources(moduleSide),
		CoreSources:       toCrossRefSources(coreSide),
		AlignmentAnalysis: analysis,
		Metadata: map[string]any{
			"modules_checked": len(moduleSide),
			"core_references": len(coreSide),
		},
	})
}

func toCrossRefSources(results []retrieve.Result) []crossRefSource {
	out := make([]crossRefSource, 0, len(results))
	for _, r := range results {
		out = append(out, crossRefSource{
			Document: r.Document,
			Page:     r.Page,
			Text:     generate.Truncate(r.Text, crossRefQuoteLimit),
		})
	}
	return out
}
