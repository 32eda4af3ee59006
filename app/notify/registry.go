package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var _ Deliverer = (*Registry)(nil)

// Registry holds the sinks declared in the sinks directory and fans a single
// notification out to every enabled one.
type Registry struct {
	sinksDir   string
	httpClient *http.Client
	userAgent  string
	sinks      []Sink
}

func NewRegistry(sinksDir string, httpClient *http.Client, userAgent string) *Registry {
	return &Registry{
		sinksDir:   sinksDir,
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// Run loads all *.yml sink declarations. A missing sinks directory is not an
// error: the agent runs with delivery gated off until sinks are configured.
func (r *Registry) Run() error {
	if _, err := os.Stat(r.sinksDir); os.IsNotExist(err) {
		slog.Warn("Sinks directory not found, notifications disabled", "dir", r.sinksDir)
		return nil
	}

	files, err := filepath.Glob(filepath.Join(r.sinksDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find sink configuration files: %w", err)
	}

	for _, file := range files {
		config, err := r.parseConfig(file)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		sink, err := r.buildSink(config)
		if err != nil {
			return fmt.Errorf("error building sink %s: %w", config.Name, err)
		}

		r.sinks = append(r.sinks, sink)
		slog.Debug("Sink configured", "sink", config.Name, "type", config.Type, "enabled", config.Enabled)
	}

	return nil
}

func (r *Registry) parseConfig(file string) (*SinkConfig, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config SinkConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.Name = strings.TrimSuffix(filepath.Base(file), ".yml")

	if config.URL == "" {
		return nil, fmt.Errorf("sink URL is required")
	}

	return &config, nil
}

func (r *Registry) buildSink(config *SinkConfig) (Sink, error) {
	switch config.Type {
	case "ntfy":
		return NewNtfySink(config, r.httpClient, r.userAgent), nil
	case "webhook":
		return NewWebhookSink(config, r.httpClient, r.userAgent), nil
	default:
		return nil, fmt.Errorf("unknown sink type %q", config.Type)
	}
}

func (r *Registry) Active() bool {
	for _, sink := range r.sinks {
		if sink.Enabled() {
			return true
		}
	}
	return false
}

func (r *Registry) SinkCount() int {
	return len(r.sinks)
}

// Deliver sends the notification through every enabled sink. It succeeds if
// at least one sink accepted the delivery; per-sink failures are logged.
func (r *Registry) Deliver(ctx context.Context, title, body string) error {
	delivered := 0
	var lastErr error

	for _, sink := range r.sinks {
		if !sink.Enabled() {
			continue
		}

		if err := sink.Deliver(ctx, title, body); err != nil {
			slog.Warn("Sink delivery failed", "sink", sink.Name(), "error", err)
			lastErr = err
			continue
		}
		delivered++
	}

	if delivered == 0 && lastErr != nil {
		return fmt.Errorf("all sinks failed: %w", lastErr)
	}

	return nil
}
