package story

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"artisanstudio/internal/domain"
)

// Fallback reasons. Step-specific reasons such as "http_request" or
// "decode_response" are also used by the model generators.
const (
	ReasonMissingAPIKey = "missing_api_key"
	ReasonStaticOnly    = "static_provider"
	ReasonQuotaExceeded = "quota_exceeded"
	ReasonInvalidShape  = "invalid_shape"
	ReasonTruncated     = "truncated"
	ReasonTimeout       = "timeout"
)

// isQuotaSignal reports a rate-limit or quota condition from a provider.
func isQuotaSignal(status int, message string) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(message)
	return strings.Contains(msg, "quota") || strings.Contains(msg, "exceeded")
}

// failureReason picks quota_exceeded over the step reason when the provider
// signalled a quota condition.
func failureReason(step string, status int, err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return ReasonTimeout
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if isQuotaSignal(status, msg) {
		return ReasonQuotaExceeded
	}
	return step
}

// fallbackChain runs the configured fallback generator, or the static one,
// and stamps the result with the reason. Quota causes are wrapped with
// domain.ErrQuotaExceeded before they reach the hook.
type fallbackChain struct {
	next       Generator
	onFallback FallbackHook
}

func (f fallbackChain) run(ctx context.Context, sub domain.CraftSubmission, reason string, cause error) (*Result, error) {
	if reason == ReasonQuotaExceeded && !errors.Is(cause, domain.ErrQuotaExceeded) {
		cause = fmt.Errorf("%w: %w", domain.ErrQuotaExceeded, cause)
	}
	if f.onFallback != nil {
		f.onFallback(reason, cause)
	}
	next := f.next
	if next == nil {
		next = NewStaticGenerator()
	}
	res, err := next.Generate(ctx, sub)
	if res != nil {
		if res.Provider == "" {
			res.Provider = staticProviderName
		}
		if res.Metadata == nil {
			res.Metadata = map[string]string{}
		}
		if reason != "" {
			res.Metadata[MetaFallbackReason] = reason
		}
	}
	return res, err
}

// decodeBundle parses model text, fenced or not, into a bundle.
func decodeBundle(raw string) (domain.ContentBundle, error) {
	var zero domain.ContentBundle
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var bundle domain.ContentBundle
	if err := json.Unmarshal([]byte(cleaned), &bundle); err != nil {
		return zero, err
	}
	return bundle, nil
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}
