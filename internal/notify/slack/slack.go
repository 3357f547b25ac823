// Package slack posts generation summaries to Slack via incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/tripled/internal/triples"
)

const (
	maxPreviewRows = 3
	httpTimeout    = 10 * time.Second
)

// Notifier sends generation summaries to a Slack webhook.
type Notifier struct {
	webhookURL string
	logger     log.Logger
	client     *http.Client
}

// New creates a new Slack notifier. If webhookURL is empty, Send is a no-op.
func New(webhookURL string, logger log.Logger) *Notifier {
	if logger == nil {
		logger = log.Nop()
	}
	return &Notifier{
		webhookURL: webhookURL,
		logger:     logger,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// Send posts a generation summary to the configured Slack webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Send(ctx context.Context, sess *triples.Session) error {
	if n.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(buildMessage(sess))
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(sess *triples.Session) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(sess),
			{"type": "divider"},
			fieldsBlock(sess),
			previewBlock(sess),
			{"type": "divider"},
			contextBlock(sess),
		},
	}
}

func headerBlock(sess *triples.Session) map[string]any {
	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": fmt.Sprintf("Triple Set Ready: %s", sess.Brand),
		},
	}
}

func fieldsBlock(sess *triples.Session) map[string]any {
	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Triples:* %d", len(sess.Triples)),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Categories:* %v", sess.IncludeCategory),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Tokens:* %d", sess.TokensUsed),
		},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func previewBlock(sess *triples.Session) map[string]any {
	var lines []string
	for i, t := range sess.Triples {
		if i >= maxPreviewRows {
			lines = append(lines, fmt.Sprintf("_…and %d more_", len(sess.Triples)-maxPreviewRows))
			break
		}
		lines = append(lines, fmt.Sprintf("• %s *%s* %s", t.Subject, t.Predicate, t.Object))
	}
	if len(lines) == 0 {
		lines = []string{"_No rows produced._"}
	}

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": strings.Join(lines, "\n"),
		},
	}
}

func contextBlock(sess *triples.Session) map[string]any {
	ts := sess.UpdatedAt
	if ts.IsZero() {
		ts = sess.CreatedAt
	}

	return map[string]any{
		"type": "context",
		"elements": []map[string]any{
			{
				"type": "mrkdwn",
				"text": fmt.Sprintf("tripled • session %s • %s", sess.ID, ts.UTC().Format("2006-01-02 15:04 UTC")),
			},
		},
	}
}
