package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var _ Sink = (*NtfySink)(nil)

// NtfySink publishes to an ntfy topic URL. The topic acts as the delivery
// channel; publishing to it creates it, so channel setup is idempotent.
type NtfySink struct {
	config     *SinkConfig
	httpClient *http.Client
	userAgent  string
}

func NewNtfySink(config *SinkConfig, httpClient *http.Client, userAgent string) *NtfySink {
	return &NtfySink{
		config:     config,
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

func (s *NtfySink) Name() string {
	return s.config.Name
}

func (s *NtfySink) Enabled() bool {
	return s.config.Enabled
}

func (s *NtfySink) Deliver(ctx context.Context, title, body string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Title", title)
	req.Header.Set("User-Agent", s.userAgent)
	// Unique per delivery so concurrent notifications never collapse into one
	// presentation slot.
	req.Header.Set("X-Message-ID", strconv.FormatInt(time.Now().UnixNano(), 10))
	if s.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.Token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ntfy error: %d %s", resp.StatusCode, resp.Status)
	}

	return nil
}
