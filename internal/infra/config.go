package infra

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv              string   `env:"APP_ENV" envDefault:"development"`
	Port                string   `env:"PORT" envDefault:"8080"`
	DatabaseURL         string   `env:"DATABASE_URL"`
	GeoIPDBPath         string   `env:"GEOIP_DB_PATH"`
	CORSAllowedOrigins  []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	StoryProvider       string   `env:"STORY_PROVIDER" envDefault:"openai"`
	StrictValidation    bool     `env:"STRICT_VALIDATION" envDefault:"false"`
	OpenAIAPIKey        string   `env:"OPENAI_API_KEY"`
	OpenAIModel         string   `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL       string   `env:"OPENAI_BASE_URL"`
	OpenAIOrg           string   `env:"OPENAI_ORG"`
	GeminiAPIKey        string   `env:"GEMINI_API_KEY"`
	GeminiModel         string   `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	GeminiBaseURL       string   `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	ModelTimeoutSec     int      `env:"MODEL_TIMEOUT_SECONDS" envDefault:"45"`
	HTTPReadTimeoutSec  int      `env:"HTTP_READ_TIMEOUT_SECONDS" envDefault:"15"`
	HTTPWriteTimeoutSec int      `env:"HTTP_WRITE_TIMEOUT_SECONDS" envDefault:"60"`
	HTTPIdleTimeoutSec  int      `env:"HTTP_IDLE_TIMEOUT_SECONDS" envDefault:"60"`

	ModelTimeout     time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	cfg.StoryProvider = strings.ToLower(strings.TrimSpace(cfg.StoryProvider))
	switch cfg.StoryProvider {
	case "", "openai", "gemini", "static":
	default:
		return nil, fmt.Errorf("STORY_PROVIDER must be one of openai, gemini, static (got %q)", cfg.StoryProvider)
	}
	cfg.CORSAllowedOrigins = trimList(cfg.CORSAllowedOrigins)
	cfg.ModelTimeout = seconds(cfg.ModelTimeoutSec, 45)
	cfg.HTTPReadTimeout = seconds(cfg.HTTPReadTimeoutSec, 15)
	cfg.HTTPIdleTimeout = seconds(cfg.HTTPIdleTimeoutSec, 60)
	cfg.HTTPWriteTimeout = seconds(cfg.HTTPWriteTimeoutSec, 60)
	// The write deadline has to outlive one model call.
	if cfg.HTTPWriteTimeout <= cfg.ModelTimeout {
		cfg.HTTPWriteTimeout = cfg.ModelTimeout + 15*time.Second
	}
	return cfg, nil
}

// ModelConfigured reports whether the selected provider has a credential.
func (c *Config) ModelConfigured() bool {
	switch c.StoryProvider {
	case "gemini":
		return strings.TrimSpace(c.GeminiAPIKey) != ""
	case "static":
		return false
	default:
		return strings.TrimSpace(c.OpenAIAPIKey) != ""
	}
}

func seconds(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Second
}

func trimList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
