package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"artisanstudio/internal/domain"
	"artisanstudio/internal/export"
	"artisanstudio/internal/middleware"
	"artisanstudio/internal/providers/story"
	"artisanstudio/internal/usage"
)

const usageRecordTimeout = 3 * time.Second

// GenerateStory turns a craft submission into a content bundle. Every
// generation path, model or template, answers 200 with the same envelope.
func (a *App) GenerateStory(w http.ResponseWriter, r *http.Request) {
	_, res, ok := a.generate(w, r)
	if !ok {
		return
	}
	a.ok(w, res.Bundle)
}

// ExportStory generates a bundle and returns it as a Markdown or HTML document
// or a zip of every rendition.
func (a *App) ExportStory(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		a.fail(w, http.StatusBadRequest, "Unsupported export format")
		return
	}
	sub, res, ok := a.generate(w, r)
	if !ok {
		return
	}
	body, err := export.Render(format, sub, res.Bundle)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("format", string(format)).Msg("export failed")
		WriteInternalError(w)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// generate runs the shared request pipeline. When ok is false the response
// has already been written.
func (a *App) generate(w http.ResponseWriter, r *http.Request) (domain.CraftSubmission, *story.Result, bool) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var sub domain.CraftSubmission
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := decodeSubmission(r.Body, &sub); err != nil {
		logger.Warn().Err(err).Msg("decode craft submission")
		WriteInternalError(w)
		return sub, nil, false
	}
	sub.Normalize()

	if err := sub.Validate(); err != nil {
		var verr *domain.ValidationError
		if a.StrictValidation {
			a.fail(w, http.StatusBadRequest, err.Error())
			return sub, nil, false
		}
		if errors.As(err, &verr) {
			logger.Warn().Strs("problems", verr.Problems).Msg("incomplete submission, generating anyway")
		}
	}
	if !domain.IsSupportedLanguage(sub.PreferredLanguage) {
		logger.Debug().Str("language", sub.PreferredLanguage).Msg("language outside the form list")
	}

	start := time.Now()
	res, err := a.Generator.Generate(ctx, sub)
	if err != nil || res == nil {
		logger.Error().Err(err).Msg("generate story")
		WriteInternalError(w)
		return sub, nil, false
	}
	elapsed := time.Since(start)

	reason := res.FallbackReason()
	a.Metrics.ObserveGeneration(ctx, string(res.Source), res.Provider, reason)
	logger.Info().
		Str("source", string(res.Source)).
		Str("provider", res.Provider).
		Str("fallback_reason", reason).
		Str("craft_type", sub.CraftType).
		Str("language", sub.PreferredLanguage).
		Dur("elapsed", elapsed).
		Msg("story generated")

	a.recordUsage(ctx, usage.Event{
		RequestID:      middleware.RequestIDFromContext(ctx),
		Source:         string(res.Source),
		Provider:       res.Provider,
		FallbackReason: reason,
		CraftType:      sub.CraftType,
		Region:         sub.Region,
		Language:       sub.PreferredLanguage,
		Country:        middleware.CountryFromContext(ctx),
		Latency:        elapsed,
	})
	return sub, res, true
}

// recordUsage writes the event in the background so a slow store never
// delays the response. Wait blocks until pending writes finish.
func (a *App) recordUsage(ctx context.Context, ev usage.Event) {
	if a.Usage == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), usageRecordTimeout)
	a.pending.Add(1)
	go func() {
		defer a.pending.Done()
		defer cancel()
		if err := a.Usage.Record(ctx, ev); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("record usage event")
		}
	}()
}

// Wait blocks until every background usage write has returned.
func (a *App) Wait() {
	a.pending.Wait()
}

// decodeSubmission accepts exactly one JSON object; anything after it is an
// error.
func decodeSubmission(body io.Reader, sub *domain.CraftSubmission) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(sub); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after submission")
		}
		return fmt.Errorf("trailing data: %w", err)
	}
	return nil
}
