package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewSlog_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlog(Config{Level: "debug", Format: "json", Output: &buf})

	tests := []struct {
		level   string
		logFunc func(string, ...any)
	}{
		{"DEBUG", l.Debug},
		{"INFO", l.Info},
		{"WARN", l.Warn},
		{"ERROR", l.Error},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.logFunc("test message", "component", "keyring")

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("log output is not JSON: %v", err)
			}

			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %v", entry["level"], tt.level)
			}
			if entry["msg"] != "test message" {
				t.Errorf("msg = %v, want %q", entry["msg"], "test message")
			}
			if entry["component"] != "keyring" {
				t.Errorf("component = %v, want %q", entry["component"], "keyring")
			}
		})
	}
}

func TestNewSlog_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlog(Config{Level: "warn", Format: "json", Output: &buf})

	l.Debug("debug message")
	l.Info("info message")
	if buf.Len() > 0 {
		t.Error("debug and info should be filtered at warn level")
	}

	l.Warn("warn message")
	if buf.Len() == 0 {
		t.Error("warn message should be logged")
	}
}

func TestNewSlog_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlog(Config{Level: "info", Format: "text", Output: &buf})

	l.Info("keyring store opened", "dir", "/tmp/keys")

	out := buf.String()
	if !strings.Contains(out, "keyring store opened") {
		t.Errorf("text output missing message, got: %s", out)
	}
	if !strings.Contains(out, "dir=/tmp/keys") {
		t.Errorf("text output missing dir=/tmp/keys, got: %s", out)
	}
}

func TestNewSlog_Redaction(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlog(Config{Level: "debug", Format: "json", Output: &buf})

	// A full token value must come out masked while lookup metadata
	// stays readable.
	l.Info("api key issued",
		"short_token", "BRTRKFsL",
		"token", "my_company_BRTRKFsL_51FwqftsmMDHHbJAMEXXHCgG")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}

	if entry["short_token"] != "BRTRKFsL" {
		t.Errorf("short_token = %v, want BRTRKFsL", entry["short_token"])
	}
	if entry["token"] != "my_company_BRTRKFsL_51F...CgG" {
		t.Errorf("token = %v, want the masked form", entry["token"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("DefaultConfig().Level = %q, want %q", cfg.Level, "info")
	}
	if cfg.Format != "json" {
		t.Errorf("DefaultConfig().Format = %q, want %q", cfg.Format, "json")
	}
	if cfg.Output == nil {
		t.Error("DefaultConfig().Output should not be nil")
	}
}
