package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/regdocs/regrag/internal/embed"
	"github.com/regdocs/regrag/internal/generate"
	"github.com/regdocs/regrag/internal/retrieve"
	"github.com/regdocs/regrag/internal/store"
)

// errorResponse is the structured error body. Callers get the error class
// and a short message; the underlying detail goes to the log, not the wire.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: msg})
}

func (s *Server) notFound(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: msg})
}

// serverError classifies an internal failure per the error taxonomy and
// writes the matching response. The full error is logged for the operator.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)

	var dimErr *store.DimensionError
	if errors.As(err, &dimErr) {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "configuration_error",
			Message: "embedding dimension mismatch between index and model",
		})
		return
	}

	var retrErr *retrieve.Error
	if errors.As(err, &retrErr) {
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:   "retrieval_failed",
			Message: "retrieval backend call failed",
		})
		return
	}

	var embErr *embed.AdapterError
	var genErr *generate.AdapterError
	if errors.As(err, &embErr) || errors.As(err, &genErr) {
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:   "adapter_error",
			Message: "upstream model call failed",
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: "internal server error",
	})
}
