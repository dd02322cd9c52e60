package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("STORY_PROVIDER", "openai")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("OpenAIModel = %q, want %q", cfg.OpenAIModel, "gpt-4o-mini")
	}
	if cfg.ModelConfigured() {
		t.Fatal("ModelConfigured() = true without a key")
	}
	if cfg.StrictValidation {
		t.Fatal("StrictValidation should default to false")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("CORSAllowedOrigins mismatch: %#v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfigModelConfigured(t *testing.T) {
	t.Setenv("STORY_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StoryProvider != "gemini" {
		t.Fatalf("StoryProvider = %q, want %q", cfg.StoryProvider, "gemini")
	}
	if !cfg.ModelConfigured() {
		t.Fatal("ModelConfigured() = false with a gemini key")
	}
}

func TestLoadConfigStaticProviderIgnoresKeys(t *testing.T) {
	t.Setenv("STORY_PROVIDER", "static")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ModelConfigured() {
		t.Fatal("static provider must never report a configured model")
	}
}

func TestLoadConfigRejectsUnknownProvider(t *testing.T) {
	t.Setenv("STORY_PROVIDER", "llama")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestLoadConfigWriteTimeoutOutlivesModelCall(t *testing.T) {
	t.Setenv("STORY_PROVIDER", "openai")
	t.Setenv("MODEL_TIMEOUT_SECONDS", "90")
	t.Setenv("HTTP_WRITE_TIMEOUT_SECONDS", "30")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ModelTimeout != 90*time.Second {
		t.Fatalf("ModelTimeout = %s, want 90s", cfg.ModelTimeout)
	}
	if cfg.HTTPWriteTimeout != 105*time.Second {
		t.Fatalf("HTTPWriteTimeout = %s, want 105s", cfg.HTTPWriteTimeout)
	}
}

func TestLoadConfigSplitsOrigins(t *testing.T) {
	t.Setenv("STORY_PROVIDER", "openai")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://studio.example.com, http://localhost:3000 ,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	expected := []string{"https://studio.example.com", "http://localhost:3000"}
	if len(cfg.CORSAllowedOrigins) != len(expected) {
		t.Fatalf("CORSAllowedOrigins mismatch: got %#v want %#v", cfg.CORSAllowedOrigins, expected)
	}
	for i, origin := range expected {
		if cfg.CORSAllowedOrigins[i] != origin {
			t.Fatalf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], origin)
		}
	}
}
