package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const webhookTimeout = 10 * time.Second

// WebhookClient delivers messages to a Slack incoming webhook.
type WebhookClient struct {
	url    string
	client *http.Client
	logger zerolog.Logger
}

func NewWebhookClient(url string, logger zerolog.Logger) *WebhookClient {
	return &WebhookClient{
		url:    url,
		client: &http.Client{Timeout: webhookTimeout},
		logger: logger.With().Str("component", "slack").Logger(),
	}
}

// Post sends the message payload to the webhook
func (c *WebhookClient) Post(ctx context.Context, message *Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook returned %s - %s", resp.Status, string(body))
	}

	c.logger.Info().Int("block_count", len(message.Blocks)).Msg("Message delivered to Slack")
	return nil
}
