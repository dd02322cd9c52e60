package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeySortsLabels(t *testing.T) {
	require.Equal(t, "generation_total", Key(GenerationTotal, nil))
	require.Equal(t, "generation_total{provider=openai,source=generated}",
		Key(GenerationTotal, map[string]string{"source": "generated", "provider": "openai"}))
}

func TestRegistryIncConcurrent(t *testing.T) {
	reg := NewRegistry()
	labels := map[string]string{"reason": "quota_exceeded"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Inc(context.Background(), GenerationFallbackTotal, labels, 1)
		}()
	}
	wg.Wait()
	require.Equal(t, int64(50), reg.Value(GenerationFallbackTotal, labels))
}

func TestObserveGeneration(t *testing.T) {
	reg := NewRegistry()
	ctx := context.Background()
	reg.ObserveGeneration(ctx, "generated", "openai", "")
	reg.ObserveGeneration(ctx, "fallback", "static", "missing_api_key")
	reg.ObserveGeneration(ctx, "fallback", "static", "missing_api_key")

	snap := reg.Snapshot()
	require.Equal(t, int64(1), snap["generation_total{provider=openai,source=generated}"])
	require.Equal(t, int64(2), snap["generation_total{provider=static,source=fallback}"])
	require.Equal(t, int64(2), snap["generation_fallback_total{reason=missing_api_key}"])
	require.Len(t, snap, 3)
}

func TestNilRegistryIsSafe(t *testing.T) {
	var reg *Registry
	reg.Inc(context.Background(), HTTPRequestsTotal, nil, 1)
	reg.ObserveGeneration(context.Background(), "generated", "gemini", "")
	require.Zero(t, reg.Value(HTTPRequestsTotal, nil))
	require.Empty(t, reg.Snapshot())
}

func TestHandlerFormats(t *testing.T) {
	reg := NewRegistry()
	reg.Inc(context.Background(), HTTPRequestsTotal, map[string]string{"status": "2xx"}, 3)

	rec := httptest.NewRecorder()
	reg.Handler()(rec, httptest.NewRequest(http.MethodGet, "/v1/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, int64(3), payload["http_requests_total{status=2xx}"])

	rec = httptest.NewRecorder()
	reg.Handler()(rec, httptest.NewRequest(http.MethodGet, "/v1/metrics?format=text", nil))
	require.Equal(t, "http_requests_total{status=2xx} 3\n", rec.Body.String())
}

func TestStatusClass(t *testing.T) {
	require.Equal(t, "2xx", StatusClass(200))
	require.Equal(t, "4xx", StatusClass(429))
	require.Equal(t, "5xx", StatusClass(500))
	require.Equal(t, "0", StatusClass(0))
}
