package story

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"artisanstudio/internal/domain"
)

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Fallback   Generator
	OnFallback FallbackHook
}

type GeminiGenerator struct {
	apiKey   string
	model    string
	baseURL  string
	client   *http.Client
	fallback fallbackChain
}

const (
	geminiDefaultTimeout = 45 * time.Second
	geminiDefaultModel   = "gemini-1.5-flash"
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature      float64        `json:"temperature"`
	MaxOutputTokens  int            `json:"maxOutputTokens,omitempty"`
	CandidateCount   int            `json:"candidateCount,omitempty"`
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason,omitempty"`
	} `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Status  string `json:"status,omitempty"`
	} `json:"error"`
}

func NewGeminiGenerator(opts GeminiOptions) (*GeminiGenerator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = geminiDefaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = geminiDefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &GeminiGenerator{
		apiKey:   strings.TrimSpace(opts.APIKey),
		model:    model,
		baseURL:  baseURL,
		client:   client,
		fallback: fallbackChain{next: opts.Fallback, onFallback: opts.OnFallback},
	}, nil
}

// Model returns the configured model identifier.
func (g *GeminiGenerator) Model() string { return g.model }

func (g *GeminiGenerator) Generate(ctx context.Context, sub domain.CraftSubmission) (*Result, error) {
	if g.apiKey == "" {
		return g.fallback.run(ctx, sub, ReasonMissingAPIKey, domain.ErrMissingCredential)
	}
	payload := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}},
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: BuildPrompt(sub)}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      Temperature,
			MaxOutputTokens:  MaxOutputTokens,
			CandidateCount:   1,
			ResponseMimeType: "application/json",
			ResponseSchema:   BundleSchema(DialectGemini),
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return g.fallback.run(ctx, sub, "encode_request", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), &buf)
	if err != nil {
		return g.fallback.run(ctx, sub, "build_request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return g.fallback.run(ctx, sub, failureReason("http_request", 0, err), fmt.Errorf("%w: gemini: %w", domain.ErrProviderFailure, err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		apiErr := readGeminiError(resp)
		return g.fallback.run(ctx, sub, failureReason(fmt.Sprintf("http_%d", resp.StatusCode), resp.StatusCode, apiErr), apiErr)
	}
	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return g.fallback.run(ctx, sub, "decode_response", err)
	}
	text, finish := g.extractText(out)
	if finish == "MAX_TOKENS" {
		return g.fallback.run(ctx, sub, ReasonTruncated, errors.New("gemini: output hit the token cap"))
	}
	if text == "" {
		return g.fallback.run(ctx, sub, "empty_response", errors.New("gemini: empty response"))
	}
	bundle, err := decodeBundle(text)
	if err != nil {
		return g.fallback.run(ctx, sub, "parse_payload", err)
	}
	if err := bundle.Validate(); err != nil {
		return g.fallback.run(ctx, sub, ReasonInvalidShape, err)
	}
	return &Result{
		Bundle:   bundle,
		Source:   SourceGenerated,
		Provider: geminiProviderName,
		Metadata: map[string]string{MetaModel: g.model},
	}, nil
}

func (g *GeminiGenerator) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
}

func (g *GeminiGenerator) extractText(resp geminiResponse) (string, string) {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text, cand.FinishReason
			}
		}
		if cand.FinishReason != "" {
			return "", cand.FinishReason
		}
	}
	return "", ""
}

func readGeminiError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var apiErr geminiErrorResponse
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("%w: gemini status %d: %s", domain.ErrProviderFailure, resp.StatusCode, apiErr.Error.Message)
	}
	if body := strings.TrimSpace(string(data)); body != "" {
		return fmt.Errorf("%w: gemini status %d: %s", domain.ErrProviderFailure, resp.StatusCode, body)
	}
	return fmt.Errorf("%w: gemini status %d", domain.ErrProviderFailure, resp.StatusCode)
}

var _ Generator = (*GeminiGenerator)(nil)
