package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"artisanstudio/internal/domain"
	"artisanstudio/internal/http/handlers"
	"artisanstudio/internal/metrics"
	"artisanstudio/internal/providers/story"
	"artisanstudio/internal/usage"
)

type panicGenerator struct{}

func (panicGenerator) Generate(context.Context, domain.CraftSubmission) (*story.Result, error) {
	panic("template index out of range")
}

func newTestRouter(t *testing.T, gen story.Generator) (http.Handler, *metrics.Registry) {
	t.Helper()
	reg := metrics.NewRegistry()
	app := handlers.NewApp(gen, usage.NopRecorder{}, reg, zerolog.Nop())
	return NewRouter(app, Options{
		Logger:         zerolog.Nop(),
		Metrics:        reg,
		AllowedOrigins: []string{"http://localhost:3000"},
	}), reg
}

func staticGenerator(t *testing.T) story.Generator {
	t.Helper()
	gen, err := story.New(story.Settings{Provider: "static"}, zerolog.Nop())
	require.NoError(t, err)
	return gen
}

func TestRouterGenerateStory(t *testing.T) {
	router, reg := newTestRouter(t, staticGenerator(t))

	req := httptest.NewRequest(http.MethodPost, "/api/generate-story", strings.NewReader(`{"craftType":"Madhubani painting","region":"Bihar","motif":"fish","artisanJourney":"x","materialCost":"15","hoursWorked":"6"}`))
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	var body struct {
		Success bool                 `json:"success"`
		Data    domain.ContentBundle `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, 142.5, body.Data.Pricing.SuggestedPrice)

	require.Equal(t, int64(1), reg.Value(metrics.GenerationTotal, map[string]string{"source": "fallback", "provider": "static"}))
	require.Equal(t, int64(1), reg.Value(metrics.HTTPRequestsTotal, map[string]string{"method": "POST", "path": "/api/generate-story", "status": "2xx"}))
}

func TestRouterRecoversPanicsWithEnvelope(t *testing.T) {
	router, _ := newTestRouter(t, panicGenerator{})

	req := httptest.NewRequest(http.MethodPost, "/api/generate-story", strings.NewReader(`{"craftType":"x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"success":false,"error":"Failed to generate story"}`, rec.Body.String())
}

func TestRouterServesOperationalEndpoints(t *testing.T) {
	router, _ := newTestRouter(t, staticGenerator(t))

	for path, want := range map[string]int{
		"/v1/healthz":      http.StatusOK,
		"/v1/metrics":      http.StatusOK,
		"/v1/openapi.json": http.StatusOK,
		"/v1/docs":         http.StatusOK,
		"/v1/stats":        http.StatusServiceUnavailable,
		"/v1/unknown":      http.StatusNotFound,
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, want, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/generate-story", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouterAnswersPreflight(t *testing.T) {
	router, _ := newTestRouter(t, staticGenerator(t))
	req := httptest.NewRequest(http.MethodOptions, "/api/generate-story", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}
