package brandapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/tripled/internal/triples"
)

func (a *API) handlePreview(w http.ResponseWriter, r *http.Request) {
	a.handleGeneration(w, r, "preview", a.svc.Preview)
}

func (a *API) handleGenerate(w http.ResponseWriter, r *http.Request) {
	a.handleGeneration(w, r, "generate", a.svc.Generate)
}

func (a *API) handleGeneration(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	run func(ctx context.Context, req *triples.GenerateRequest) (*triples.Session, error),
) {
	var req triples.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("tripled.action", action),
		attribute.String("tripled.brand", req.Brand),
	)

	sess, err := run(r.Context(), &req)
	if err != nil {
		if errors.Is(err, triples.ErrBrandRequired) {
			http.Error(w, `{"error":"brand is required"}`, http.StatusBadRequest)
			return
		}
		a.logger.Error(r.Context(), err, "generation failed", "action", action, "brand", req.Brand)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.String("tripled.session.id", sess.ID))
	writeJSON(w, http.StatusOK, sess)
}

func (a *API) handleSynonyms(w http.ResponseWriter, r *http.Request) {
	var req triples.SynonymsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}

	sess, err := a.svc.Synonyms(r.Context(), &req)
	if err != nil {
		a.logger.Error(r.Context(), err, "synonym fetch failed")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	data, filename, ok, err := a.svc.ExportCSV(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "csv export failed", "id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
