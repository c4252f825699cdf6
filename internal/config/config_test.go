package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.TokenDuration != 24*time.Hour {
		t.Errorf("expected 24h token duration, got %v", cfg.TokenDuration)
	}
	if cfg.WordcloudTerms != 200 || cfg.BarplotTopics != 10 {
		t.Errorf("unexpected dashboard sizes %d/%d", cfg.WordcloudTerms, cfg.BarplotTopics)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("expected 2 default origins, got %v", cfg.CORSOrigins)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.Addr())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_DURATION", "90m")
	t.Setenv("WORDCLOUD_TERMS", "50")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example,https://c.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.TokenDuration != 90*time.Minute {
		t.Errorf("expected 90m, got %v", cfg.TokenDuration)
	}
	if cfg.WordcloudTerms != 50 {
		t.Errorf("expected 50 terms, got %d", cfg.WordcloudTerms)
	}
	if len(cfg.CORSOrigins) != 3 || cfg.CORSOrigins[2] != "https://c.example" {
		t.Errorf("unexpected origins %v", cfg.CORSOrigins)
	}
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("PORT", "not-an-int")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "PORT", "70000"},
		{"zero token duration", "TOKEN_DURATION", "0s"},
		{"negative terms", "WORDCLOUD_TERMS", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
