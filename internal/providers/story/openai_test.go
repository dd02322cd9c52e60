package story

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"artisanstudio/internal/domain"
)

func modelBundle() domain.ContentBundle {
	b := TemplateBundle(sampleSubmission())
	b.Storytelling.ProductStory = "A model-written story about peacock terracotta."
	b.Pricing.SuggestedPrice = 240
	return b
}

func chatCompletionBody(t *testing.T, content string, finish string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": finish,
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 10, "total_tokens": 20},
	})
	require.NoError(t, err)
	return body
}

func newOpenAITestGenerator(t *testing.T, handler http.HandlerFunc, hook FallbackHook) *OpenAIGenerator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	gen, err := NewOpenAIGenerator(OpenAIOptions{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		OnFallback: hook,
	})
	require.NoError(t, err)
	return gen
}

func TestOpenAIGeneratorReturnsModelBundle(t *testing.T) {
	var captured map[string]any
	gen := newOpenAITestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		content, err := json.Marshal(modelBundle())
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(chatCompletionBody(t, string(content), "stop"))
	}, func(reason string, err error) {
		t.Fatalf("unexpected fallback: %s %v", reason, err)
	})

	res, err := gen.Generate(context.Background(), sampleSubmission())
	require.NoError(t, err)
	require.Equal(t, SourceGenerated, res.Source)
	require.Equal(t, openAIProviderName, res.Provider)
	require.Equal(t, "gpt-4o-mini", res.Metadata[MetaModel])
	require.Equal(t, modelBundle(), res.Bundle)

	require.Equal(t, 0.7, captured["temperature"])
	require.Equal(t, float64(MaxOutputTokens), captured["max_tokens"])
	format, ok := captured["response_format"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "json_schema", format["type"])
}

func TestOpenAIGeneratorQuotaFallsBack(t *testing.T) {
	var (
		reason string
		cause  error
	)
	gen := newOpenAITestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`))
	}, func(r string, err error) {
		reason = r
		cause = err
	})

	res, err := gen.Generate(context.Background(), sampleSubmission())
	require.NoError(t, err)
	require.Equal(t, SourceFallback, res.Source)
	require.Equal(t, staticProviderName, res.Provider)
	require.Equal(t, ReasonQuotaExceeded, res.FallbackReason())
	require.Equal(t, ReasonQuotaExceeded, reason)
	require.True(t, errors.Is(cause, domain.ErrQuotaExceeded))
	require.Equal(t, TemplateBundle(sampleSubmission()), res.Bundle)
}

func TestOpenAIGeneratorServerErrorFallsBack(t *testing.T) {
	gen := newOpenAITestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"The server had an error","type":"server_error"}}`))
	}, nil)

	res, err := gen.Generate(context.Background(), sampleSubmission())
	require.NoError(t, err)
	require.Equal(t, SourceFallback, res.Source)
	require.Equal(t, "http_500", res.FallbackReason())
}

func TestOpenAIGeneratorRejectsWrongCardinality(t *testing.T) {
	gen := newOpenAITestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		b := modelBundle()
		b.Marketing.Captions = b.Marketing.Captions[:2]
		content, err := json.Marshal(b)
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(chatCompletionBody(t, string(content), "stop"))
	}, nil)

	res, err := gen.Generate(context.Background(), sampleSubmission())
	require.NoError(t, err)
	require.Equal(t, SourceFallback, res.Source)
	require.Equal(t, ReasonInvalidShape, res.FallbackReason())
	require.Len(t, res.Bundle.Marketing.Captions, domain.CaptionCount)
}

func TestOpenAIGeneratorRejectsPriceBelowFloorAndNullLists(t *testing.T) {
	gen := newOpenAITestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		b := modelBundle()
		b.Pricing.SuggestedPrice = -5
		b.Marketing.EnhancementTips = nil
		content, err := json.Marshal(b)
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(chatCompletionBody(t, string(content), "stop"))
	}, nil)

	res, err := gen.Generate(context.Background(), sampleSubmission())
	require.NoError(t, err)
	require.Equal(t, SourceFallback, res.Source)
	require.Equal(t, ReasonInvalidShape, res.FallbackReason())
	require.GreaterOrEqual(t, res.Bundle.Pricing.SuggestedPrice, domain.MinSuggestedPrice)
	require.NotNil(t, res.Bundle.Marketing.EnhancementTips)
}

func TestOpenAIGeneratorTruncatedOutputFallsBack(t *testing.T) {
	gen := newOpenAITestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(chatCompletionBody(t, `{"storytelling":{"productStory":"cut`, "length"))
	}, nil)

	res, err := gen.Generate(context.Background(), sampleSubmission())
	require.NoError(t, err)
	require.Equal(t, ReasonTruncated, res.FallbackReason())
}

func TestOpenAIGeneratorUsesChainedFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	chained := fakeGenerator{generate: func(ctx context.Context, sub domain.CraftSubmission) (*Result, error) {
		return &Result{Bundle: modelBundle(), Source: SourceGenerated, Provider: geminiProviderName}, nil
	}}
	gen, err := NewOpenAIGenerator(OpenAIOptions{APIKey: "k", BaseURL: srv.URL, Fallback: chained})
	require.NoError(t, err)

	res, err := gen.Generate(context.Background(), sampleSubmission())
	require.NoError(t, err)
	require.Equal(t, geminiProviderName, res.Provider)
	require.Equal(t, "http_502", res.FallbackReason())
}

func TestNewOpenAIGeneratorRequiresKey(t *testing.T) {
	_, err := NewOpenAIGenerator(OpenAIOptions{APIKey: "  "})
	require.Error(t, err)
}

func TestNormalizeOpenAIModel(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		input  string
		model  string
		reason string
	}{
		{name: "exact_default", input: "gpt-4o-mini", model: "gpt-4o-mini", reason: ""},
		{name: "exact_other", input: "gpt-4o", model: "gpt-4o", reason: ""},
		{name: "alias_dated", input: "gpt-4o-mini-2024-07-18", model: "gpt-4o-mini", reason: "alias"},
		{name: "alias_spaces", input: "GPT4o mini", model: "gpt-4o-mini", reason: "alias"},
		{name: "unsupported", input: "davinci", model: "gpt-4o-mini", reason: "defaulted"},
		{name: "empty", input: "", model: "gpt-4o-mini", reason: ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			gotModel, gotReason := normalizeOpenAIModel(tc.input)
			if gotModel != tc.model {
				t.Fatalf("model = %q, want %q", gotModel, tc.model)
			}
			if gotReason != tc.reason {
				t.Fatalf("reason = %q, want %q", gotReason, tc.reason)
			}
		})
	}
}

func TestNewOpenAIGeneratorWarnsOnUnsupportedModel(t *testing.T) {
	var capturedReason, capturedDetail string
	gen, err := NewOpenAIGenerator(OpenAIOptions{
		APIKey: "dummy",
		Model:  "davinci",
		OnWarning: func(reason, detail string) {
			capturedReason = reason
			capturedDetail = detail
		},
	})
	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", gen.Model())
	require.Equal(t, "model_defaulted", capturedReason)
	require.NotEmpty(t, capturedDetail)
}
