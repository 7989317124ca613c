package api

import (
	"net/http"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"name":    "regrag",
		"version": "1.0.0",
		"status":  "operational",
		"endpoints": map[string]string{
			"query":           "/query - Ask questions with citations",
			"extract":         "/extract - Get exact quotes from documents",
			"cross_reference": "/cross_reference - Compare modules vs core docs",
			"health":          "/health - System status",
		},
	}
	if count, err := s.index.Count(r.Context()); err == nil {
		info["documents_indexed"] = count
	}
	if sum, err := s.index.LatestRunSummary(r.Context()); err == nil && sum != nil {
		info["last_ingestion"] = sum
	}
	writeJSON(w, http.StatusOK, info)
}

// handleHealth reports index and adapter status. A failing count must not
// take the process down; it is surfaced as a structured unhealthy response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.index.Count(r.Context())
	if err != nil {
		s.log.Error("health check failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status":   "unhealthy",
			"database": "error",
			"error":    "store_error",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "healthy",
		"database":          "connected",
		"documents_indexed": count,
		"model":             s.gen.Model(),
	})
}
