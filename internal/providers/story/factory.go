package story

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Settings selects and configures the generator chain.
type Settings struct {
	Provider      string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	OpenAIOrg     string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	Timeout       time.Duration
	OnFallback    FallbackHook
}

// New builds the generator for settings. Without a credential for the selected
// provider it returns the static generator, so no network call is ever made.
func New(s Settings, logger zerolog.Logger) (Generator, error) {
	static := NewStaticGenerator()
	keyless := &StaticGenerator{reason: ReasonMissingAPIKey}
	provider := strings.ToLower(strings.TrimSpace(s.Provider))
	if provider == "" {
		provider = openAIProviderName
	}
	switch provider {
	case staticProviderName:
		logger.Info().Msg("story generator: static templates only")
		return &StaticGenerator{reason: ReasonStaticOnly}, nil
	case openAIProviderName:
		if strings.TrimSpace(s.OpenAIAPIKey) == "" {
			logger.Info().Msg("story generator: OPENAI_API_KEY not set, using static templates")
			return keyless, nil
		}
		gen, err := NewOpenAIGenerator(OpenAIOptions{
			APIKey:       s.OpenAIAPIKey,
			Model:        s.OpenAIModel,
			BaseURL:      s.OpenAIBaseURL,
			Organization: s.OpenAIOrg,
			Timeout:      s.Timeout,
			Fallback:     static,
			OnFallback:   s.OnFallback,
			OnWarning: func(reason, detail string) {
				logger.Warn().Str("reason", reason).Str("detail", detail).Msg("openai model normalized")
			},
		})
		if err != nil {
			return nil, fmt.Errorf("story generator: %w", err)
		}
		logger.Info().Str("model", gen.Model()).Msg("story generator: openai")
		return gen, nil
	case geminiProviderName:
		if strings.TrimSpace(s.GeminiAPIKey) == "" {
			logger.Info().Msg("story generator: GEMINI_API_KEY not set, using static templates")
			return keyless, nil
		}
		gen, err := NewGeminiGenerator(GeminiOptions{
			APIKey:     s.GeminiAPIKey,
			Model:      s.GeminiModel,
			BaseURL:    s.GeminiBaseURL,
			Timeout:    s.Timeout,
			Fallback:   static,
			OnFallback: s.OnFallback,
		})
		if err != nil {
			return nil, fmt.Errorf("story generator: %w", err)
		}
		logger.Info().Str("model", gen.Model()).Msg("story generator: gemini")
		return gen, nil
	default:
		return nil, fmt.Errorf("story generator: unsupported provider %q", s.Provider)
	}
}
