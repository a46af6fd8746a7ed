package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Level != "info" {
		t.Errorf("expected level info, got %s", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected format json, got %s", cfg.Format)
	}
	if cfg.Output != "stdout" {
		t.Errorf("expected output stdout, got %s", cfg.Output)
	}
}

func TestNew_InvalidLevelFallsBack(t *testing.T) {
	l := New(Config{Level: "nonsense"})
	if l == nil {
		t.Fatal("expected logger")
	}
	if l.GetLogger().GetLevel() != zerolog.InfoLevel {
		t.Errorf("expected info level fallback, got %v", l.GetLogger().GetLevel())
	}
}

func TestLogger_FieldsAndComponent(t *testing.T) {
	var buf bytes.Buffer
	l := FromZerolog(zerolog.New(&buf)).WithComponent("apiclient")

	l.Info("request", map[string]any{FieldMethod: "GET", FieldAttempt: 1})

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if event[FieldComponent] != "apiclient" {
		t.Errorf("expected component apiclient, got %v", event[FieldComponent])
	}
	if event[FieldMethod] != "GET" {
		t.Errorf("expected method GET, got %v", event[FieldMethod])
	}
	if event["message"] != "request" {
		t.Errorf("expected message request, got %v", event["message"])
	}
}

func TestLogger_WithFieldsChain(t *testing.T) {
	var buf bytes.Buffer
	l := FromZerolog(zerolog.New(&buf)).WithFields(map[string]any{FieldPath: "/samples"})

	l.Warn("unexpected status", map[string]any{FieldStatus: 503})

	out := buf.String()
	if !strings.Contains(out, "/samples") || !strings.Contains(out, "503") {
		t.Errorf("expected chained fields in output, got %s", out)
	}
}

func TestDefault_Singleton(t *testing.T) {
	a := Default()
	b := Default()
	if a != b {
		t.Error("Default should return the same instance")
	}
}
