package triples

import "context"

// Provider is the interface for any LLM backend. One prompt in, one
// completion out; the provider and model identity are configuration.
type Provider interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest is a single-turn completion: no tools, no history.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// CompletionResponse carries the raw completion text and token usage.
type CompletionResponse struct {
	Text  string
	Model string
	Usage Usage
}

// Usage is the token accounting reported by the provider.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Notifier delivers a completed generation somewhere out-of-band, e.g. a
// Slack channel. Implementations must be safe to call synchronously from
// the request path.
type Notifier interface {
	Send(ctx context.Context, s *Session) error
}
