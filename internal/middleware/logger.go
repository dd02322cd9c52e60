package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"artisanstudio/internal/metrics"
)

type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.wroteHeader = true
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Logger attaches a request-scoped logger to the context, writes one access
// line per request and counts it in reg. reg may be nil.
func Logger(l zerolog.Logger, reg *metrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := l.With().
				Str("request_id", RequestIDFromContext(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()
			r = r.WithContext(reqLogger.WithContext(r.Context()))

			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			labels := map[string]string{
				"method": r.Method,
				"path":   routePattern(r),
				"status": metrics.StatusClass(rw.status),
			}
			reg.Inc(r.Context(), metrics.HTTPRequestsTotal, labels, 1)

			if rw.status >= http.StatusInternalServerError {
				reg.Inc(r.Context(), metrics.HTTPRequestErrorsTotal, labels, 1)
				reqLogger.Error().Int("status", rw.status).Dur("duration", duration).Msg("http request failed")
				return
			}
			reqLogger.Info().Int("status", rw.status).Dur("duration", duration).Msg("http request served")
		})
	}
}

// routePattern keeps metric labels bounded by using the chi route instead of
// the raw path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
