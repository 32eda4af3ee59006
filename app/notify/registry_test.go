package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeSinkFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write sink file: %v", err)
	}
}

func TestRegistry_Run_LoadsSinks(t *testing.T) {
	dir := t.TempDir()
	writeSinkFile(t, dir, "phone.yml", "type: ntfy\nurl: https://ntfy.example.com/studyhub\nenabled: true\n")
	writeSinkFile(t, dir, "backup.yml", "type: webhook\nurl: https://hooks.example.com/notify\nenabled: false\n")

	registry := NewRegistry(dir, &http.Client{}, "Test Agent")
	if err := registry.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if registry.SinkCount() != 2 {
		t.Errorf("Expected 2 sinks, got %d", registry.SinkCount())
	}
	if !registry.Active() {
		t.Error("Registry with an enabled sink should be active")
	}
}

func TestRegistry_Run_MissingDirIsNotAnError(t *testing.T) {
	registry := NewRegistry(filepath.Join(t.TempDir(), "does-not-exist"), &http.Client{}, "Test Agent")
	if err := registry.Run(); err != nil {
		t.Fatalf("Missing sinks dir should not be an error, got: %v", err)
	}
	if registry.Active() {
		t.Error("Registry without sinks should be inactive")
	}
}

func TestRegistry_Run_AllDisabledIsInactive(t *testing.T) {
	dir := t.TempDir()
	writeSinkFile(t, dir, "phone.yml", "type: ntfy\nurl: https://ntfy.example.com/studyhub\nenabled: false\n")

	registry := NewRegistry(dir, &http.Client{}, "Test Agent")
	if err := registry.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if registry.Active() {
		t.Error("Registry with only disabled sinks should be inactive")
	}
}

func TestRegistry_Run_UnknownSinkType(t *testing.T) {
	dir := t.TempDir()
	writeSinkFile(t, dir, "bad.yml", "type: carrier-pigeon\nurl: https://example.com\nenabled: true\n")

	registry := NewRegistry(dir, &http.Client{}, "Test Agent")
	if err := registry.Run(); err == nil {
		t.Error("Expected error for unknown sink type")
	}
}

func TestRegistry_Run_MissingURL(t *testing.T) {
	dir := t.TempDir()
	writeSinkFile(t, dir, "bad.yml", "type: ntfy\nenabled: true\n")

	registry := NewRegistry(dir, &http.Client{}, "Test Agent")
	if err := registry.Run(); err == nil {
		t.Error("Expected error for sink without URL")
	}
}

func TestNtfySink_Deliver(t *testing.T) {
	var gotTitle, gotBody, gotMessageID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotMessageID = r.Header.Get("X-Message-ID")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer server.Close()

	sink := NewNtfySink(&SinkConfig{Name: "phone", Type: "ntfy", URL: server.URL, Enabled: true},
		&http.Client{}, "Test Agent")

	err := sink.Deliver(context.Background(), "Urgent! Quiz", "Today! - Physics")
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	if gotTitle != "Urgent! Quiz" {
		t.Errorf("Expected title header 'Urgent! Quiz', got %q", gotTitle)
	}
	if gotBody != "Today! - Physics" {
		t.Errorf("Expected body 'Today! - Physics', got %q", gotBody)
	}
	if gotMessageID == "" {
		t.Error("Expected a unique message id header")
	}
}

func TestNtfySink_Deliver_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sink := NewNtfySink(&SinkConfig{Name: "phone", URL: server.URL, Enabled: true},
		&http.Client{}, "Test Agent")

	if err := sink.Deliver(context.Background(), "t", "b"); err == nil {
		t.Error("Expected error for non-200 response")
	}
}

func TestWebhookSink_Deliver(t *testing.T) {
	var got map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode webhook payload: %v", err)
		}
	}))
	defer server.Close()

	sink := NewWebhookSink(&SinkConfig{Name: "backup", URL: server.URL, Enabled: true},
		&http.Client{}, "Test Agent")

	err := sink.Deliver(context.Background(), "Reminder: Essay", "In 3 days - Lit")
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	if got["title"] != "Reminder: Essay" {
		t.Errorf("Expected title 'Reminder: Essay', got %q", got["title"])
	}
	if got["body"] != "In 3 days - Lit" {
		t.Errorf("Expected body 'In 3 days - Lit', got %q", got["body"])
	}
	if got["message_id"] == "" {
		t.Error("Expected a message_id in the payload")
	}
}

func TestRegistry_Deliver_SkipsDisabledSinks(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	dir := t.TempDir()
	writeSinkFile(t, dir, "on.yml", "type: webhook\nurl: "+server.URL+"\nenabled: true\n")
	writeSinkFile(t, dir, "off.yml", "type: webhook\nurl: "+server.URL+"\nenabled: false\n")

	registry := NewRegistry(dir, &http.Client{}, "Test Agent")
	if err := registry.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if err := registry.Deliver(context.Background(), "t", "b"); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected exactly 1 delivery call, got %d", calls)
	}
}
