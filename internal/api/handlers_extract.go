package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/regdocs/regrag/internal/store"
)

// extractRequest pulls verbatim text from a specific document, optionally
// narrowed to one page or to passages matching a search term.
type extractRequest struct {
	Document   string `json:"document"`
	Page       int    `json:"page"`
	SearchTerm string `json:"search_term"`
}

type extractEntry struct {
	Text     string `json:"text"`
	Page     int    `json:"page"`
	Document string `json:"document"`
}

type extractResponse struct {
	Document      string         `json:"document"`
	Page          int            `json:"page,omitempty"`
	SearchTerm    string         `json:"search_term,omitempty"`
	TotalExtracts int            `json:"total_extracts"`
	Extracts      []extractEntry `json:"extracts"`
}

const (
	searchExtractLimit = 10
	exactExtractLimit  = 100
)

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid JSON body")
		return
	}
	if req.Document == "" {
		s.badRequest(w, "document is required")
		return
	}
	if req.Page < 0 {
		s.badRequest(w, "page must be positive")
		return
	}

	filter := store.Filter{Document: req.Document, Page: req.Page}
	var extracts []extractEntry

	if req.SearchTerm != "" {
		results, err := s.retriever.Search(r.Context(), req.SearchTerm, searchExtractLimit, filter)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		for _, res := range results {
			extracts = append(extracts, extractEntry{Text: res.Text, Page: res.Page, Document: res.Document})
		}
	} else {
		results, err := s.index.ExactGet(r.Context(), filter, exactExtractLimit)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		for _, res := range results {
			extracts = append(extracts, extractEntry{Text: res.Text, Page: res.Page, Document: res.Document})
		}
	}

	if len(extracts) == 0 {
		msg := fmt.Sprintf("no content found for %s", req.Document)
		if req.Page > 0 {
			msg = fmt.Sprintf("%s page %d", msg, req.Page)
		}
		s.notFound(w, msg)
		return
	}

	sort.SliceStable(extracts, func(i, j int) bool { return extracts[i].Page < extracts[j].Page })

	writeJSON(w, http.StatusOK, extractResponse{
		Document:      req.Document,
		Page:          req.Page,
		SearchTerm:    req.SearchTerm,
		TotalExtracts: len(extracts),
		Extracts:      extracts,
	})
}
