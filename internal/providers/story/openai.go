package story

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"artisanstudio/internal/domain"
)

// Generation parameters shared by the model generators.
const (
	MaxOutputTokens = 3000
	Temperature     = 0.7
)

const openAIDefaultTimeout = 45 * time.Second

const defaultOpenAIModel = "gpt-4o-mini"

var openAIModelCanonical = map[string]string{
	"gpt-4o-mini":  "gpt-4o-mini",
	"gpt-4o":       "gpt-4o",
	"gpt-4.1-mini": "gpt-4.1-mini",
}

var openAIModelAliases = map[string]string{
	"gpt4o-mini":             "gpt-4o-mini",
	"gpt4omini":              "gpt-4o-mini",
	"gpt-4o-mini-2024-07-18": "gpt-4o-mini",
	"gpt4o":                  "gpt-4o",
	"gpt-4o-2024-08-06":      "gpt-4o",
	"gpt4.1-mini":            "gpt-4.1-mini",
}

type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
	Timeout      time.Duration
	Fallback     Generator
	OnFallback   FallbackHook
	OnWarning    func(reason, detail string)
}

// OpenAIGenerator asks an OpenAI chat model for a bundle using a strict JSON
// schema response format.
type OpenAIGenerator struct {
	client   openai.Client
	apiKey   string
	model    string
	fallback fallbackChain
}

func NewOpenAIGenerator(opts OpenAIOptions) (*OpenAIGenerator, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	modelInput := strings.TrimSpace(opts.Model)
	model, normalizationReason := normalizeOpenAIModel(modelInput)
	if normalizationReason != "" && opts.OnWarning != nil {
		detail := fmt.Sprintf("requested=%s resolved=%s", coalesce(modelInput, defaultOpenAIModel), model)
		opts.OnWarning("model_"+normalizationReason, detail)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = openAIDefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(strings.TrimRight(base, "/")+"/"))
	}
	if org := strings.TrimSpace(opts.Organization); org != "" {
		reqOpts = append(reqOpts, option.WithOrganization(org))
	}
	return &OpenAIGenerator{
		client:   openai.NewClient(reqOpts...),
		apiKey:   apiKey,
		model:    model,
		fallback: fallbackChain{next: opts.Fallback, onFallback: opts.OnFallback},
	}, nil
}

// Model returns the resolved model identifier.
func (o *OpenAIGenerator) Model() string { return o.model }

func (o *OpenAIGenerator) Generate(ctx context.Context, sub domain.CraftSubmission) (*Result, error) {
	if o.apiKey == "" {
		return o.fallback.run(ctx, sub, ReasonMissingAPIKey, domain.ErrMissingCredential)
	}
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(BuildPrompt(sub)),
		},
		MaxTokens:   openai.Int(MaxOutputTokens),
		Temperature: openai.Float(Temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        schemaName,
					Description: openai.String("Marketing, branding, pricing and translation content for an artisan's craft"),
					Schema:      BundleSchema(DialectOpenAI),
					Strict:      openai.Bool(true),
				},
			},
		},
	}
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		status := 0
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		cause := fmt.Errorf("%w: openai: %w", domain.ErrProviderFailure, err)
		if status > 0 {
			return o.fallback.run(ctx, sub, failureReason(fmt.Sprintf("http_%d", status), status, err), cause)
		}
		return o.fallback.run(ctx, sub, failureReason("http_request", 0, err), cause)
	}
	if len(resp.Choices) == 0 {
		return o.fallback.run(ctx, sub, "empty_choices", errors.New("openai: no choices"))
	}
	choice := resp.Choices[0]
	if choice.FinishReason == "length" {
		return o.fallback.run(ctx, sub, ReasonTruncated, errors.New("openai: output hit the token cap"))
	}
	text := strings.TrimSpace(choice.Message.Content)
	if text == "" {
		return o.fallback.run(ctx, sub, "empty_response", errors.New("openai: empty response"))
	}
	bundle, err := decodeBundle(text)
	if err != nil {
		return o.fallback.run(ctx, sub, "parse_payload", err)
	}
	if err := bundle.Validate(); err != nil {
		return o.fallback.run(ctx, sub, ReasonInvalidShape, err)
	}
	return &Result{
		Bundle:   bundle,
		Source:   SourceGenerated,
		Provider: openAIProviderName,
		Metadata: map[string]string{MetaModel: o.model},
	}, nil
}

var _ Generator = (*OpenAIGenerator)(nil)

func normalizeOpenAIModel(name string) (string, string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return defaultOpenAIModel, ""
	}
	normalized := strings.ToLower(trimmed)
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	if canonical, ok := openAIModelCanonical[normalized]; ok {
		return canonical, ""
	}
	if alias, ok := openAIModelAliases[normalized]; ok {
		return alias, "alias"
	}
	return defaultOpenAIModel, "defaulted"
}
