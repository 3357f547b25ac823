package triples

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"
	"github.com/oklog/ulid/v2"
)

var tracer = otel.Tracer("github.com/linnemanlabs/tripled/internal/triples")

// ErrBrandRequired is returned when a generation action arrives without a
// brand name. No LLM request is issued in that case.
var ErrBrandRequired = xerrors.New("brand is required")

// GenerateRequest carries the form fields for a preview or full
// generation.
type GenerateRequest struct {
	SessionID       string `json:"session_id,omitempty"`
	Brand           string `json:"brand"`
	Services        string `json:"services"`
	Audience        string `json:"audience"`
	ValueProps      string `json:"value_propositions"`
	Differentiators string `json:"differentiators"`
	Count           int    `json:"count,omitempty"`
	IncludeCategory *bool  `json:"include_category,omitempty"`
}

// SynonymsRequest carries the four attribute fields for synonym lookup.
type SynonymsRequest struct {
	SessionID       string `json:"session_id,omitempty"`
	Services        string `json:"services"`
	Audience        string `json:"audience"`
	ValueProps      string `json:"value_propositions"`
	Differentiators string `json:"differentiators"`
}

// Service is the business boundary for triple generation. Each operation
// is one synchronous round trip to the provider; session state is
// replaced wholesale on every action.
type Service struct {
	store        Store
	provider     Provider
	logger       log.Logger
	metrics      *Metrics
	notifier     Notifier
	defaultCount int
}

// NewService creates a new triple generation service. metrics and
// notifier may be nil.
func NewService(store Store, provider Provider, logger log.Logger, m *Metrics, notifier Notifier, defaultCount int) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	if defaultCount < MinTripleCount || defaultCount > MaxTripleCount {
		defaultCount = 50
	}
	return &Service{
		store:        store,
		provider:     provider,
		logger:       logger,
		metrics:      m,
		notifier:     notifier,
		defaultCount: defaultCount,
	}
}

// Preview generates one triple per category.
func (s *Service) Preview(ctx context.Context, req *GenerateRequest) (*Session, error) {
	return s.generate(ctx, req, true)
}

// Generate produces the requested number of triples, clamped to
// [MinTripleCount, MaxTripleCount].
func (s *Service) Generate(ctx context.Context, req *GenerateRequest) (*Session, error) {
	return s.generate(ctx, req, false)
}

func (s *Service) generate(ctx context.Context, req *GenerateRequest, preview bool) (*Session, error) {
	action := "generate"
	if preview {
		action = "preview"
	}

	if strings.TrimSpace(req.Brand) == "" {
		s.metrics.observeGeneration(action, "missing_brand", 0, ShapeEmpty)
		return nil, ErrBrandRequired
	}

	includeCategory := true
	if req.IncludeCategory != nil {
		includeCategory = *req.IncludeCategory
	}

	count := req.Count
	if count == 0 {
		count = s.defaultCount
	}
	if count < MinTripleCount {
		count = MinTripleCount
	}
	if count > MaxTripleCount {
		count = MaxTripleCount
	}

	sess, err := s.loadOrCreate(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	prompt := buildGeneratePrompt(req, count)
	if preview {
		prompt = buildPreviewPrompt(req)
	}

	L := s.logger.With("session_id", sess.ID, "brand", req.Brand, "action", action)

	start := time.Now()
	resp, err := s.complete(ctx, action, sess.ID, &CompletionRequest{
		System:      systemPrompt(),
		Prompt:      prompt,
		MaxTokens:   completionMaxTokens,
		Temperature: completionTemperature,
	})
	if err != nil {
		s.metrics.observeGeneration(action, "llm_error", 0, ShapeEmpty)
		L.Error(ctx, err, "llm completion failed")
		return nil, fmt.Errorf("llm completion: %w", err)
	}
	s.metrics.observeLLMCall(resp.Usage, time.Since(start).Seconds())

	rows, shape := NormalizeShape(extractJSON(resp.Text), includeCategory)

	sess.Brand = req.Brand
	sess.IncludeCategory = includeCategory
	sess.Triples = rows
	sess.TokensUsed = resp.Usage.InputTokens + resp.Usage.OutputTokens
	sess.UpdatedAt = time.Now()

	if err := s.store.Put(ctx, sess); err != nil {
		s.metrics.observeGeneration(action, "store_error", 0, shape)
		return nil, fmt.Errorf("store session: %w", err)
	}
	s.metrics.observeGeneration(action, "ok", len(rows), shape)

	L.Info(ctx, "triples generated",
		"rows", len(rows),
		"shape", string(shape),
		"include_category", includeCategory,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"duration", time.Since(start).Seconds(),
	)

	if !preview && s.notifier != nil {
		if err := s.notifier.Send(ctx, sess); err != nil {
			L.Warn(ctx, "notification failed", "error", err)
		}
	}

	return sess, nil
}

// Synonyms fetches related wording for each attribute field and replaces
// the session's synonym sets wholesale. Blank fields yield an empty set
// without issuing a request.
func (s *Service) Synonyms(ctx context.Context, req *SynonymsRequest) (*Session, error) {
	sess, err := s.loadOrCreate(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	texts := []string{req.Services, req.Audience, req.ValueProps, req.Differentiators}

	sets := make([]SynonymSet, 0, len(synonymLabels))
	for i, lbl := range synonymLabels {
		words, err := s.fetchSynonyms(ctx, texts[i], lbl.Noun)
		if err != nil {
			return nil, fmt.Errorf("fetch synonyms for %s: %w", lbl.Field, err)
		}
		sets = append(sets, SynonymSet{Label: lbl.Field, Words: words})
	}

	sess.Synonyms = sets
	sess.UpdatedAt = time.Now()
	if err := s.store.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.logger.Info(ctx, "synonyms fetched", "session_id", sess.ID)
	return sess, nil
}

func (s *Service) fetchSynonyms(ctx context.Context, text, noun string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		s.metrics.observeSynonymFetch("skipped")
		return []string{}, nil
	}

	start := time.Now()
	resp, err := s.complete(ctx, "synonyms", "", &CompletionRequest{
		System:    systemPrompt(),
		Prompt:    buildSynonymPrompt(text, noun),
		MaxTokens: synonymMaxTokens,
	})
	if err != nil {
		s.metrics.observeSynonymFetch("llm_error")
		return nil, err
	}
	s.metrics.observeLLMCall(resp.Usage, time.Since(start).Seconds())
	s.metrics.observeSynonymFetch("ok")

	return ExtractSynonyms(extractJSON(resp.Text)), nil
}

// complete runs one provider round trip inside an llm.call span.
func (s *Service) complete(ctx context.Context, action, sessionID string, req *CompletionRequest) (*CompletionResponse, error) {
	attrs := []attribute.KeyValue{
		attribute.String("gen_ai.operation.name", "llm.call"),
		attribute.String("tripled.action", action),
	}
	if sessionID != "" {
		attrs = append(attrs, attribute.String("tripled.session.id", sessionID))
	}
	ctx, span := tracer.Start(ctx, "llm.call", trace.WithAttributes(attrs...))
	defer span.End()

	resp, err := s.provider.Complete(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("gen_ai.response.model", resp.Model),
		attribute.Int("gen_ai.usage.input_tokens", resp.Usage.InputTokens),
		attribute.Int("gen_ai.usage.output_tokens", resp.Usage.OutputTokens),
	)
	return resp, nil
}

// Get retrieves a session by ID.
func (s *Service) Get(ctx context.Context, id string) (*Session, bool, error) {
	return s.store.Get(ctx, id)
}

// ExportCSV renders the session's triple table as CSV and derives the
// download filename from the brand.
func (s *Service) ExportCSV(ctx context.Context, id string) (data []byte, filename string, ok bool, err error) {
	sess, ok, err := s.store.Get(ctx, id)
	if err != nil || !ok {
		return nil, "", ok, err
	}
	data, err = RenderCSV(sess)
	if err != nil {
		return nil, "", true, err
	}
	return data, ExportFilename(sess.Brand), true, nil
}

func (s *Service) loadOrCreate(ctx context.Context, id string) (*Session, error) {
	if id != "" {
		sess, ok, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		if ok {
			return sess, nil
		}
	}
	now := time.Now()
	return &Session{
		ID:        ulid.Make().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
