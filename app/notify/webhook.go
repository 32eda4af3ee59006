package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

var _ Sink = (*WebhookSink)(nil)

// WebhookSink posts the notification as JSON to an arbitrary endpoint.
type WebhookSink struct {
	config     *SinkConfig
	httpClient *http.Client
	userAgent  string
}

func NewWebhookSink(config *SinkConfig, httpClient *http.Client, userAgent string) *WebhookSink {
	return &WebhookSink{
		config:     config,
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

func (s *WebhookSink) Name() string {
	return s.config.Name
}

func (s *WebhookSink) Enabled() bool {
	return s.config.Enabled
}

func (s *WebhookSink) Deliver(ctx context.Context, title, body string) error {
	payload, err := json.Marshal(map[string]string{
		"title":      title,
		"body":       body,
		"message_id": strconv.FormatInt(time.Now().UnixNano(), 10),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.userAgent)
	if s.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.Token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook error: %d %s", resp.StatusCode, resp.Status)
	}

	return nil
}
