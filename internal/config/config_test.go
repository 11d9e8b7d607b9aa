package config

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Port != 8001 {
		t.Errorf("Port = %d, want 8001", cfg.Port)
	}
	if cfg.FlushIntervalSec != 30 {
		t.Errorf("FlushIntervalSec = %d, want 30", cfg.FlushIntervalSec)
	}
	if !strings.HasSuffix(cfg.DataFile, "people.json") {
		t.Errorf("DataFile = %q", cfg.DataFile)
	}
	if cfg.DeepSeek.Model != "deepseek-chat" {
		t.Errorf("Model = %q", cfg.DeepSeek.Model)
	}
	if cfg.DeepSeek.Temperature != 0.2 {
		t.Errorf("Temperature = %v", cfg.DeepSeek.Temperature)
	}
	if !cfg.Geocode.Enabled || cfg.Geocode.MaxCalls != 10 {
		t.Errorf("Geocode = %+v", cfg.Geocode)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("LIFELINE_TEST_KEY", "sk-secret")
	if got := expandEnv("$LIFELINE_TEST_KEY"); got != "sk-secret" {
		t.Errorf("expandEnv = %q", got)
	}
	// Unset variables are left as-is so validation can catch them.
	if got := expandEnv("$LIFELINE_TEST_UNSET_VAR"); got != "$LIFELINE_TEST_UNSET_VAR" {
		t.Errorf("expandEnv = %q", got)
	}
	if got := expandEnv("no variables here"); got != "no variables here" {
		t.Errorf("expandEnv = %q", got)
	}
}

func TestValidate(t *testing.T) {
	t.Run("defaults pass", func(t *testing.T) {
		if err := DefaultConfig().Validate(); err != nil {
			t.Errorf("Validate: %v", err)
		}
	})

	t.Run("port out of range", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Port = 0
		if err := cfg.Validate(); err == nil {
			t.Error("expected error")
		}
		cfg.Port = 70000
		if err := cfg.Validate(); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("missing data file", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DataFile = ""
		if err := cfg.Validate(); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("flush interval floors to default", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.FlushIntervalSec = 0
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if cfg.FlushIntervalSec != 30 {
			t.Errorf("FlushIntervalSec = %d, want 30", cfg.FlushIntervalSec)
		}
	})

	t.Run("geocode base url required when enabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Geocode.BaseURL = ""
		if err := cfg.Validate(); err == nil {
			t.Error("expected error")
		}
		cfg.Geocode.Enabled = false
		if err := cfg.Validate(); err != nil {
			t.Errorf("disabled geocoding should not require a url: %v", err)
		}
	})
}
