package apiclient

import (
	"testing"
	"time"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.Retries != 2 {
		t.Errorf("retries = %d, want 2", cfg.Retries)
	}
	if cfg.Backoff != 200*time.Millisecond {
		t.Errorf("backoff = %v, want 200ms", cfg.Backoff)
	}
	if cfg.MaxBackoff != 500*time.Millisecond {
		t.Errorf("max backoff = %v, want 500ms", cfg.MaxBackoff)
	}
}

func TestConfig_ApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Timeout:    time.Second,
		Retries:    7,
		Backoff:    time.Millisecond,
		MaxBackoff: 2 * time.Millisecond,
	}
	cfg.ApplyDefaults()

	if cfg.Timeout != time.Second || cfg.Retries != 7 {
		t.Errorf("explicit values must survive: %+v", cfg)
	}
}

func TestConfig_NoRetries(t *testing.T) {
	cfg := Config{Retries: NoRetries}
	cfg.ApplyDefaults()
	if cfg.Retries != 0 {
		t.Errorf("retries = %d, want 0 for NoRetries", cfg.Retries)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{BaseURL: "https://api.example.com"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	var missing Config
	missing.ApplyDefaults()
	if err := missing.Validate(); err == nil {
		t.Error("expected error for missing base URL")
	}

	bad := Config{BaseURL: "https://api.example.com", Timeout: -time.Second}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for negative timeout")
	}
}
