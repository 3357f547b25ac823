package triples

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// fakeProvider returns preconfigured completions in sequence and records
// the prompts it was given.
type fakeProvider struct {
	mu      sync.Mutex
	texts   []string
	err     error
	prompts []string
}

func (p *fakeProvider) Complete(_ context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.prompts = append(p.prompts, req.Prompt)
	if p.err != nil {
		return nil, p.err
	}

	text := `[]`
	if len(p.texts) > 0 {
		text = p.texts[0]
		p.texts = p.texts[1:]
	}
	return &CompletionResponse{
		Text:  text,
		Model: "claude-sonnet-4-20250514",
		Usage: Usage{InputTokens: 100, OutputTokens: 50},
	}, nil
}

// fakeStore is a minimal in-memory Store for service tests.
type fakeStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	puts     int
	getErr   error
	putErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[string]*Session)}
}

func (s *fakeStore) Get(_ context.Context, id string) (*Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false, nil
	}
	cp := *sess
	return &cp, true, nil
}

func (s *fakeStore) Put(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

// fakeNotifier records sends.
type fakeNotifier struct {
	mu    sync.Mutex
	sends int
	err   error
}

func (n *fakeNotifier) Send(context.Context, *Session) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sends++
	return n.err
}

func newTestService(store Store, provider Provider, notifier Notifier) *Service {
	return NewService(store, provider, nil, nil, notifier, 50)
}

func TestGenerate_MissingBrand(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	svc := newTestService(newFakeStore(), provider, nil)

	_, err := svc.Generate(context.Background(), &GenerateRequest{Brand: "   "})
	if !errors.Is(err, ErrBrandRequired) {
		t.Fatalf("err = %v, want ErrBrandRequired", err)
	}
	if len(provider.prompts) != 0 {
		t.Errorf("provider called %d times, want 0", len(provider.prompts))
	}
}

func TestGenerate_HappyPath(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	provider := &fakeProvider{texts: []string{
		"```json\n[{\"subject\":\"Acme\",\"predicate\":\"offers\",\"object\":\"widgets\",\"category\":\"services / products\"}]\n```",
	}}
	svc := newTestService(store, provider, nil)

	sess, err := svc.Generate(context.Background(), &GenerateRequest{Brand: "Acme", Services: "widgets"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if sess.ID == "" {
		t.Error("session ID is empty")
	}
	if sess.Brand != "Acme" {
		t.Errorf("brand = %q, want %q", sess.Brand, "Acme")
	}
	if len(sess.Triples) != 1 {
		t.Fatalf("rows = %d, want 1", len(sess.Triples))
	}
	if sess.Triples[0].Object != "widgets" {
		t.Errorf("object = %q, want %q", sess.Triples[0].Object, "widgets")
	}
	if sess.TokensUsed != 150 {
		t.Errorf("tokens = %d, want 150", sess.TokensUsed)
	}

	stored, ok, _ := store.Get(context.Background(), sess.ID)
	if !ok {
		t.Fatal("session not persisted")
	}
	if len(stored.Triples) != 1 {
		t.Errorf("stored rows = %d, want 1", len(stored.Triples))
	}
}

func TestGenerate_CountClamping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		count int
		want  string
	}{
		{"default", 0, "EXACTLY 50 triples"},
		{"below min", 3, "EXACTLY 10 triples"},
		{"above max", 5000, "EXACTLY 200 triples"},
		{"in range", 40, "EXACTLY 40 triples"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			provider := &fakeProvider{}
			svc := newTestService(newFakeStore(), provider, nil)

			_, err := svc.Generate(context.Background(), &GenerateRequest{Brand: "Acme", Count: tt.count})
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if len(provider.prompts) != 1 {
				t.Fatalf("provider called %d times, want 1", len(provider.prompts))
			}
			if !strings.Contains(provider.prompts[0], tt.want) {
				t.Errorf("prompt %q does not contain %q", provider.prompts[0], tt.want)
			}
		})
	}
}

func TestPreview_UsesPreviewPrompt(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	svc := newTestService(newFakeStore(), provider, nil)

	_, err := svc.Preview(context.Background(), &GenerateRequest{Brand: "Acme"})
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !strings.Contains(provider.prompts[0], "ONE triple each") {
		t.Errorf("prompt %q is not the preview prompt", provider.prompts[0])
	}
}

func TestGenerate_LLMErrorPropagates(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{err: errors.New("rate limited")}
	store := newFakeStore()
	svc := newTestService(store, provider, nil)

	_, err := svc.Generate(context.Background(), &GenerateRequest{Brand: "Acme"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("err = %v, want wrapped provider error", err)
	}
	if store.puts != 0 {
		t.Errorf("store.Put called %d times, want 0 on LLM failure", store.puts)
	}
}

func TestGenerate_GarbageReplyDegradesToEmpty(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{texts: []string{"I'm sorry, I can't produce that."}}
	svc := newTestService(newFakeStore(), provider, nil)

	sess, err := svc.Generate(context.Background(), &GenerateRequest{Brand: "Acme"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(sess.Triples) != 0 {
		t.Errorf("rows = %d, want 0 for unparseable reply", len(sess.Triples))
	}
}

func TestGenerate_ReusesSession(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	provider := &fakeProvider{texts: []string{
		`[{"subject":"Acme","predicate":"offers","object":"a"}]`,
		`[{"subject":"Acme","predicate":"offers","object":"b"}]`,
	}}
	svc := newTestService(store, provider, nil)

	first, err := svc.Generate(context.Background(), &GenerateRequest{Brand: "Acme"})
	if err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	second, err := svc.Generate(context.Background(), &GenerateRequest{Brand: "Acme", SessionID: first.ID})
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("session ID changed: %q vs %q", second.ID, first.ID)
	}
	// replaced wholesale, not appended
	if len(second.Triples) != 1 {
		t.Fatalf("rows = %d, want 1", len(second.Triples))
	}
	if second.Triples[0].Object != "b" {
		t.Errorf("object = %q, want %q", second.Triples[0].Object, "b")
	}
}

func TestGenerate_UnknownSessionIDCreatesFresh(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeStore(), &fakeProvider{}, nil)

	sess, err := svc.Generate(context.Background(), &GenerateRequest{Brand: "Acme", SessionID: "no-such-session"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if sess.ID == "no-such-session" || sess.ID == "" {
		t.Errorf("session ID = %q, want a fresh ULID", sess.ID)
	}
}

func TestGenerate_NotifierCalledOnGenerateOnly(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{}
	provider := &fakeProvider{}
	svc := newTestService(newFakeStore(), provider, notifier)

	if _, err := svc.Preview(context.Background(), &GenerateRequest{Brand: "Acme"}); err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if notifier.sends != 0 {
		t.Errorf("notifier called %d times after preview, want 0", notifier.sends)
	}

	if _, err := svc.Generate(context.Background(), &GenerateRequest{Brand: "Acme"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if notifier.sends != 1 {
		t.Errorf("notifier called %d times after generate, want 1", notifier.sends)
	}
}

func TestGenerate_NotifierFailureDoesNotFail(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{err: errors.New("webhook down")}
	svc := newTestService(newFakeStore(), &fakeProvider{}, notifier)

	if _, err := svc.Generate(context.Background(), &GenerateRequest{Brand: "Acme"}); err != nil {
		t.Fatalf("Generate: %v, want nil despite notifier failure", err)
	}
}

func TestSynonyms_BlankFieldsSkipProvider(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	svc := newTestService(newFakeStore(), provider, nil)

	sess, err := svc.Synonyms(context.Background(), &SynonymsRequest{})
	if err != nil {
		t.Fatalf("Synonyms: %v", err)
	}
	if len(provider.prompts) != 0 {
		t.Errorf("provider called %d times, want 0 for all-blank fields", len(provider.prompts))
	}
	if len(sess.Synonyms) != 4 {
		t.Fatalf("sets = %d, want 4", len(sess.Synonyms))
	}
	for _, set := range sess.Synonyms {
		if len(set.Words) != 0 {
			t.Errorf("set %q = %v, want empty", set.Label, set.Words)
		}
	}
}

func TestSynonyms_FetchesNonBlankFields(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{texts: []string{
		`{"synonyms":["seo","sem"]}`,
		`{"synonyms":["buyers"]}`,
	}}
	svc := newTestService(newFakeStore(), provider, nil)

	sess, err := svc.Synonyms(context.Background(), &SynonymsRequest{
		Services: "search marketing",
		Audience: "marketing directors",
	})
	if err != nil {
		t.Fatalf("Synonyms: %v", err)
	}
	if len(provider.prompts) != 2 {
		t.Fatalf("provider called %d times, want 2", len(provider.prompts))
	}

	if sess.Synonyms[0].Label != "Services / Products" {
		t.Errorf("label = %q, want %q", sess.Synonyms[0].Label, "Services / Products")
	}
	if got, want := sess.Synonyms[0].Words, []string{"seo", "sem"}; !equalStrings(got, want) {
		t.Errorf("services synonyms = %v, want %v", got, want)
	}
	if got, want := sess.Synonyms[1].Words, []string{"buyers"}; !equalStrings(got, want) {
		t.Errorf("audience synonyms = %v, want %v", got, want)
	}
	if len(sess.Synonyms[2].Words) != 0 || len(sess.Synonyms[3].Words) != 0 {
		t.Error("blank fields should have empty synonym sets")
	}
}

func TestSynonyms_ReplacedWholesale(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{texts: []string{
		`{"synonyms":["old"]}`,
		`{"synonyms":["new"]}`,
	}}
	svc := newTestService(newFakeStore(), provider, nil)

	first, err := svc.Synonyms(context.Background(), &SynonymsRequest{Services: "a"})
	if err != nil {
		t.Fatalf("first Synonyms: %v", err)
	}
	second, err := svc.Synonyms(context.Background(), &SynonymsRequest{SessionID: first.ID, Audience: "b"})
	if err != nil {
		t.Fatalf("second Synonyms: %v", err)
	}

	// services set was replaced with empty, not kept from the first call
	if len(second.Synonyms[0].Words) != 0 {
		t.Errorf("services synonyms = %v, want empty after wholesale replace", second.Synonyms[0].Words)
	}
	if got, want := second.Synonyms[1].Words, []string{"new"}; !equalStrings(got, want) {
		t.Errorf("audience synonyms = %v, want %v", got, want)
	}
}

func TestExportCSV(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	provider := &fakeProvider{texts: []string{
		`[{"subject":"Moving Traffic Media","predicate":"offers","object":"GEO","category":"services / products"}]`,
	}}
	svc := newTestService(store, provider, nil)

	sess, err := svc.Generate(context.Background(), &GenerateRequest{Brand: "Moving Traffic Media"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data, filename, ok, err := svc.ExportCSV(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if !ok {
		t.Fatal("expected session to be found")
	}
	if filename != "moving_traffic_media_semantic_triples.csv" {
		t.Errorf("filename = %q", filename)
	}
	if !strings.HasPrefix(string(data), "subject,predicate,object,category\n") {
		t.Errorf("csv = %q, want category header", data)
	}
}

func TestExportCSV_NotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeStore(), &fakeProvider{}, nil)

	_, _, ok, err := svc.ExportCSV(context.Background(), "missing")
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for missing session")
	}
}

func TestGenerate_CreatesLLMCallSpans(t *testing.T) {
	// Not parallel: swaps the global OTel tracer provider.

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	provider := &fakeProvider{texts: []string{
		`[{"subject":"Acme","predicate":"offers","object":"widgets"}]`,
	}}
	svc := newTestService(newFakeStore(), provider, nil)

	sess, err := svc.Generate(context.Background(), &GenerateRequest{Brand: "Acme"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	spans := exporter.GetSpans()
	var llmSpans int
	for _, s := range spans {
		if s.Name != "llm.call" {
			continue
		}
		llmSpans++

		attrs := make(map[string]any)
		for _, a := range s.Attributes {
			attrs[string(a.Key)] = a.Value.AsInterface()
		}
		if v := attrs["gen_ai.operation.name"]; v != "llm.call" {
			t.Errorf("gen_ai.operation.name = %v, want llm.call", v)
		}
		if v := attrs["gen_ai.response.model"]; v != "claude-sonnet-4-20250514" {
			t.Errorf("gen_ai.response.model = %v", v)
		}
		if v := attrs["tripled.action"]; v != "generate" {
			t.Errorf("tripled.action = %v, want generate", v)
		}
		if v := attrs["tripled.session.id"]; v != sess.ID {
			t.Errorf("tripled.session.id = %v, want %s", v, sess.ID)
		}
		if v := attrs["gen_ai.usage.input_tokens"]; v != int64(100) {
			t.Errorf("gen_ai.usage.input_tokens = %v, want 100", v)
		}
	}
	if llmSpans != 1 {
		t.Errorf("llm.call spans = %d, want 1", llmSpans)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
