// Package brandapi exposes the triple generation service over HTTP.
package brandapi

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"
	"github.com/linnemanlabs/tripled/internal/triples"
)

// TripleService defines the business operations brandapi needs.
type TripleService interface {
	Preview(ctx context.Context, req *triples.GenerateRequest) (*triples.Session, error)
	Generate(ctx context.Context, req *triples.GenerateRequest) (*triples.Session, error)
	Synonyms(ctx context.Context, req *triples.SynonymsRequest) (*triples.Session, error)
	Get(ctx context.Context, id string) (*triples.Session, bool, error)
	ExportCSV(ctx context.Context, id string) (data []byte, filename string, ok bool, err error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    TripleService
}

// New creates a new API handler.
func New(logger log.Logger, svc TripleService) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("triple service is required"))
	}
	return &API{
		logger: logger,
		svc:    svc,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/preview", a.handlePreview)
		r.Post("/triples", a.handleGenerate)
		r.Post("/synonyms", a.handleSynonyms)
		r.Get("/sessions/{id}", a.handleGetSession)
		r.Get("/sessions/{id}/export", a.handleExport)
	})
}

func (a *API) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("tripled.session.id", id))

	sess, ok, err := a.svc.Get(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to get session", "id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
