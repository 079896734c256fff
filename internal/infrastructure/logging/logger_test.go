package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/nerrad567/biosignal-hal/internal/infrastructure/config"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON output %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew_Formats(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LoggingConfig
	}{
		{"json stdout", config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}},
		{"text stderr", config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if logger := New(tt.cfg, "1.0.0", "lab"); logger == nil {
				t.Fatal("expected non-nil logger")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestHandler_DefaultFields(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{Logger: slog.New(newHandler(&buf, config.LoggingConfig{Format: "json"}, "test", "lab-1"))}

	logger.Info("device connected", "device_id", "amp-1")

	entry := decodeLine(t, &buf)
	if entry["service"] != ServiceName {
		t.Errorf("service = %v, want %s", entry["service"], ServiceName)
	}
	if entry["version"] != "test" {
		t.Errorf("version = %v, want test", entry["version"])
	}
	if entry["site"] != "lab-1" {
		t.Errorf("site = %v, want lab-1", entry["site"])
	}
	if entry["msg"] != "device connected" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["device_id"] != "amp-1" {
		t.Errorf("device_id = %v", entry["device_id"])
	}
}

func TestHandler_OmitsEmptySite(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, config.LoggingConfig{}, "test", ""))

	logger.Info("hello")

	if _, ok := decodeLine(t, &buf)["site"]; ok {
		t.Error("site field should be omitted when empty")
	}
}

func TestHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, config.LoggingConfig{Level: "warn"}, "test", ""))

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info entry written at warn level: %s", buf.String())
	}

	logger.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Error("warn entry missing")
	}
}

func TestHandler_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, config.LoggingConfig{Format: "text"}, "test", ""))

	logger.Info("hello")

	if !strings.Contains(buf.String(), "service="+ServiceName) {
		t.Errorf("text output = %q, want service field", buf.String())
	}
}

func TestLogger_Component(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{Logger: slog.New(newHandler(&buf, config.LoggingConfig{}, "test", ""))}

	child := logger.Component("registry")
	if child == logger {
		t.Fatal("expected child logger to be different from parent")
	}

	child.Info("registered")
	if decodeLine(t, &buf)["component"] != "registry" {
		t.Errorf("component field missing: %s", buf.String())
	}
}

func TestDefault(t *testing.T) {
	if Default() == nil {
		t.Fatal("expected non-nil default logger")
	}
}
