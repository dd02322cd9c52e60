package story

import (
	"context"

	"artisanstudio/internal/domain"
)

const (
	staticProviderName = "static"
	openAIProviderName = "openai"
	geminiProviderName = "gemini"
)

// Source tells whether a bundle came from a model or from the templates.
type Source string

const (
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
)

// Metadata keys stamped on a Result.
const (
	MetaFallbackReason = "fallback_reason"
	MetaModel          = "model"
)

// Result is a bundle tagged with how it was produced. Callers outside this
// package only expose the bundle; the tag feeds logs, metrics and usage events.
type Result struct {
	Bundle   domain.ContentBundle `json:"bundle"`
	Source   Source               `json:"-"`
	Provider string               `json:"-"`
	Metadata map[string]string    `json:"-"`
}

// FallbackReason returns the recorded fallback reason, if any.
func (r *Result) FallbackReason() string {
	if r == nil || r.Metadata == nil {
		return ""
	}
	return r.Metadata[MetaFallbackReason]
}

// Generator produces a content bundle for a submission.
type Generator interface {
	Generate(ctx context.Context, sub domain.CraftSubmission) (*Result, error)
}

// FallbackHook is notified whenever a model generator gives up and delegates.
type FallbackHook func(reason string, err error)
