package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"DEBUG", LevelDebug},
		{"Warning", LevelWarn},
		{"dEbUg", LevelDebug},
		{" error ", LevelError},
		{"", LevelInfo},
		{"trace", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"text", FormatText},
		{"", FormatText},
		{"yaml", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Format: FormatJSON, Output: &buf})

	logger.Debug("hidden")
	logger.Info("spy started", "port", 8080)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rec["msg"] != "spy started" {
		t.Errorf("msg = %v", rec["msg"])
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	if logger.Enabled(t.Context(), LevelError) {
		t.Error("Nop logger should not be enabled")
	}
	logger.Error("discarded")
}

func TestTee(t *testing.T) {
	var text, js bytes.Buffer
	logger := slog.New(Tee(
		Handler(Config{Level: LevelWarn, Format: FormatText, Output: &text}),
		Handler(Config{Level: LevelDebug, Format: FormatJSON, Output: &js}),
	)).With("component", "spy")

	logger.Debug("resolved")
	logger.Warn("unmatched request")

	if strings.Contains(text.String(), "resolved") {
		t.Errorf("text handler should drop debug records: %q", text.String())
	}
	if !strings.Contains(text.String(), "unmatched request") || !strings.Contains(text.String(), "component=spy") {
		t.Errorf("text handler missing warn record: %q", text.String())
	}
	if got := strings.Count(js.String(), "\n"); got != 2 {
		t.Errorf("json handler got %d records, want 2", got)
	}
}
