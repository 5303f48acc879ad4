package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/propopol/internal/contracts"
	"github.com/wonny/propopol/pkg/httputil"
	"github.com/wonny/propopol/pkg/logger"
)

// Webhook posts reports to an incoming-webhook URL (Slack block kit)
type Webhook struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	url        string
	text       string
}

// NewWebhook creates a webhook channel.
// httpClient should have retry disabled: a retried POST may duplicate the message.
func NewWebhook(httpClient *httputil.Client, url, text string, log *logger.Logger) *Webhook {
	return &Webhook{
		httpClient: httpClient,
		logger:     log,
		url:        url,
		text:       text,
	}
}

// Payload is the webhook body
type Payload struct {
	Text   string  `json:"text"`
	Blocks []Block `json:"blocks"`
}

// Block is a block kit element (section or divider)
type Block struct {
	Type string     `json:"type"`
	Text *BlockText `json:"text,omitempty"`
}

// BlockText is mrkdwn text of a section block
type BlockText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Name implements contracts.Channel
func (w *Webhook) Name() string {
	return "webhook"
}

// Publish posts one section plus divider per report line
func (w *Webhook) Publish(ctx context.Context, _ *contracts.Report, markdown string) error {
	resp, err := w.httpClient.PostJSON(ctx, w.url, BuildPayload(w.text, markdown), nil)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	if _, err := httputil.ReadBody(resp); err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}

	w.logger.Info("Webhook message sent")
	return nil
}

// BuildPayload splits markdown into section blocks.
// Blank lines are dropped; Slack rejects empty section text.
func BuildPayload(text, markdown string) Payload {
	payload := Payload{Text: text, Blocks: []Block{}}

	for _, line := range strings.Split(markdown, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		payload.Blocks = append(payload.Blocks,
			Block{Type: "section", Text: &BlockText{Type: "mrkdwn", Text: line}},
			Block{Type: "divider"},
		)
	}

	return payload
}
