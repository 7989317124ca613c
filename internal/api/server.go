package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/regdocs/regrag/internal/retrieve"
	"github.com/regdocs/regrag/internal/store"
)

// Retriever is the query-time engine contract.
type Retriever interface {
	Retrieve(ctx context.Context, question string, topK int, docType string) ([]retrieve.Result, error)
	Search(ctx context.Context, term string, topK int, f store.Filter) ([]retrieve.Result, error)
	CrossReference(ctx context.Context, query, moduleName string) (moduleSide, coreSide []retrieve.Result, err error)
}

// Generator is the external answer-synthesis collaborator.
type Generator interface {
	Answer(ctx context.Context, question string, sources []retrieve.Result) (string, error)
	AlignmentAnalysis(ctx context.Context, query string, moduleSide, coreSide []retrieve.Result) (string, error)
	Model() string
}

// Index is the read-side store contract the handlers use directly.
type Index interface {
	ExactGet(ctx context.Context, f store.Filter, limit int) ([]store.Result, error)
	Count(ctx context.Context) (int, error)
	LatestRunSummary(ctx context.Context) (*store.RunSummary, error)
}

// Server is the HTTP API for the document question-answering service.
type Server struct {
	router    chi.Router
	retriever Retriever
	gen       Generator
	index     Index
	log       *slog.Logger
}

// NewServer wires the handlers to their collaborators.
func NewServer(retriever Retriever, gen Generator, index Index, log *slog.Logger) *Server {
	s := &Server{
		retriever: retriever,
		gen:       gen,
		index:     index,
		log:       log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/query", s.handleQuery)
	r.Post("/extract", s.handleExtract)
	r.Post("/cross_reference", s.handleCrossReference)

	s.router = r
}
