// Package claude implements triples.Provider on the Anthropic SDK.
package claude

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/linnemanlabs/tripled/internal/triples"
)

// Client is a single-turn completion client for the Claude API.
type Client struct {
	client anthropic.Client
	model  anthropic.Model
}

// New creates a new Claude client with the given API key and model name.
func New(apiKey, model string) *Client {
	return &Client{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}
}

// Complete sends one prompt to the Claude API and returns the joined text
// content of the reply.
func (c *Client) Complete(ctx context.Context, req *triples.CompletionRequest) (*triples.CompletionResponse, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("claude messages: %w", err)
	}
	return fromSDKMessage(msg), nil
}

// fromSDKMessage converts an SDK message into the provider-neutral
// response, concatenating all text blocks.
func fromSDKMessage(msg *anthropic.Message) *triples.CompletionResponse {
	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return &triples.CompletionResponse{
		Text:  text.String(),
		Model: string(msg.Model),
		Usage: triples.Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}
}
